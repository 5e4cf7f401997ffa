package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusValid(t *testing.T) {
	for _, s := range []AppointmentStatus{
		AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, AppointmentStatus("pending").Valid())
	assert.False(t, AppointmentStatus("").Valid())
}

func TestAppointmentStatusTerminal(t *testing.T) {
	assert.False(t, AppointmentStatusScheduled.Terminal())
	assert.False(t, AppointmentStatusConfirmed.Terminal())
	assert.False(t, AppointmentStatusInProgress.Terminal())
	assert.True(t, AppointmentStatusCompleted.Terminal())
	assert.True(t, AppointmentStatusCancelled.Terminal())
	assert.True(t, AppointmentStatusNoShow.Terminal())
}

func TestCanTransitionTo(t *testing.T) {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		AppointmentStatusScheduled: {
			AppointmentStatusConfirmed, AppointmentStatusInProgress,
			AppointmentStatusNoShow, AppointmentStatusCancelled,
		},
		AppointmentStatusConfirmed: {
			AppointmentStatusInProgress, AppointmentStatusNoShow, AppointmentStatusCancelled,
		},
		AppointmentStatusInProgress: {
			AppointmentStatusCompleted, AppointmentStatusCancelled,
		},
		AppointmentStatusCompleted: {},
		AppointmentStatusCancelled: {},
		AppointmentStatusNoShow:    {},
	}

	all := []AppointmentStatus{
		AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow,
	}

	for from, targets := range allowed {
		legal := make(map[AppointmentStatus]bool, len(targets))
		for _, to := range targets {
			legal[to] = true
		}
		for _, to := range all {
			assert.Equalf(t, legal[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestSpecialDayTypeZeroesAvailability(t *testing.T) {
	assert.True(t, SpecialDayHoliday.ZeroesAvailability())
	assert.True(t, SpecialDayVacation.ZeroesAvailability())
	assert.True(t, SpecialDaySickLeave.ZeroesAvailability())
	assert.False(t, SpecialDayWorkingDay.ZeroesAvailability())
}
