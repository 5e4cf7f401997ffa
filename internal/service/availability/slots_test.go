package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/booking-api/internal/model"
)

// monday is 2025-03-10, a Monday.
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func mondayAt(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func window(startHour, startMin, endHour, endMin int) *model.TimeWindow {
	return &model.TimeWindow{
		Start: mondayAt(startHour, startMin),
		End:   mondayAt(endHour, endMin),
	}
}

func apt(status model.AppointmentStatus, start, end time.Time) *model.Appointment {
	return &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
}

func TestGenerateSlotsFullDay(t *testing.T) {
	booked := []*model.Appointment{
		apt(model.AppointmentStatusScheduled, mondayAt(10, 0), mondayAt(10, 30)),
	}

	slots := GenerateSlots(window(9, 0, 18, 0), 30*time.Minute, booked)

	// 09:00-18:00 at 30 minutes is exactly 18 slots; no 18:00-18:30
	// slot past the window end.
	require.Len(t, slots, 18)
	assert.Equal(t, mondayAt(9, 0), slots[0].Start)
	assert.Equal(t, mondayAt(9, 30), slots[0].End)
	assert.Equal(t, mondayAt(17, 30), slots[17].Start)
	assert.Equal(t, mondayAt(18, 0), slots[17].End)

	for i, s := range slots {
		if i > 0 {
			assert.Equal(t, slots[i-1].End, s.Start, "slots must be contiguous")
		}
		if s.Start.Equal(mondayAt(10, 0)) {
			assert.False(t, s.Available, "booked slot must be unavailable")
		} else {
			assert.Truef(t, s.Available, "slot at %s should be free", s.Start)
		}
	}
}

func TestGenerateSlotsDropsRemainder(t *testing.T) {
	// 75 minutes of window at 30-minute slots: the trailing 15 minutes
	// never become a slot.
	slots := GenerateSlots(window(9, 0, 10, 15), 30*time.Minute, nil)

	require.Len(t, slots, 2)
	assert.Equal(t, mondayAt(10, 0), slots[1].End)
}

func TestGenerateSlotsDegenerateInputs(t *testing.T) {
	tests := []struct {
		name     string
		window   *model.TimeWindow
		duration time.Duration
	}{
		{name: "nil window", window: nil, duration: 30 * time.Minute},
		{name: "zero-length window", window: window(9, 0, 9, 0), duration: 30 * time.Minute},
		{name: "inverted window", window: window(18, 0, 9, 0), duration: 30 * time.Minute},
		{name: "zero duration", window: window(9, 0, 18, 0), duration: 0},
		{name: "negative duration", window: window(9, 0, 18, 0), duration: -time.Minute},
		{name: "duration longer than window", window: window(9, 0, 9, 20), duration: 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := GenerateSlots(tt.window, tt.duration, nil)
			assert.NotNil(t, slots)
			assert.Empty(t, slots)
		})
	}
}

func TestGenerateSlotsIgnoresCancelled(t *testing.T) {
	appointments := []*model.Appointment{
		apt(model.AppointmentStatusCancelled, mondayAt(10, 0), mondayAt(10, 30)),
		apt(model.AppointmentStatusConfirmed, mondayAt(11, 0), mondayAt(11, 30)),
	}

	slots := GenerateSlots(window(9, 0, 12, 0), 30*time.Minute, appointments)

	require.Len(t, slots, 6)
	for _, s := range slots {
		switch {
		case s.Start.Equal(mondayAt(10, 0)):
			assert.True(t, s.Available, "cancelled appointment must not block the slot")
		case s.Start.Equal(mondayAt(11, 0)):
			assert.False(t, s.Available)
		default:
			assert.True(t, s.Available)
		}
	}
}

func TestGenerateSlotsTouchingAppointmentDoesNotBlock(t *testing.T) {
	// An appointment ending exactly at a slot's start shares only the
	// boundary instant, which the half-open test excludes.
	appointments := []*model.Appointment{
		apt(model.AppointmentStatusScheduled, mondayAt(9, 30), mondayAt(10, 0)),
	}

	slots := GenerateSlots(window(10, 0, 11, 0), 30*time.Minute, appointments)

	require.Len(t, slots, 2)
	assert.True(t, slots[0].Available)
	assert.True(t, slots[1].Available)
}

func TestGenerateSlotsPartialOverlapBlocksBothSlots(t *testing.T) {
	appointments := []*model.Appointment{
		apt(model.AppointmentStatusScheduled, mondayAt(10, 15), mondayAt(10, 45)),
	}

	slots := GenerateSlots(window(10, 0, 11, 0), 30*time.Minute, appointments)

	require.Len(t, slots, 2)
	assert.False(t, slots[0].Available, "10:00-10:30 overlaps 10:15-10:45")
	assert.False(t, slots[1].Available, "10:30-11:00 overlaps 10:15-10:45")
}
