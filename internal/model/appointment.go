package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo is the single authority on the appointment status
// graph. Completion is only reachable from in_progress; any non-terminal
// status may be cancelled.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if next == AppointmentStatusCancelled {
		return !s.Terminal()
	}
	switch s {
	case AppointmentStatusScheduled:
		return next == AppointmentStatusConfirmed ||
			next == AppointmentStatusInProgress ||
			next == AppointmentStatusNoShow
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusInProgress ||
			next == AppointmentStatusNoShow
	case AppointmentStatusInProgress:
		return next == AppointmentStatusCompleted
	}
	return false
}

type Appointment struct {
	Base
	ProviderID   uuid.UUID         `db:"provider_id" json:"provider_id"`
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	ServiceID    *uuid.UUID        `db:"service_id" json:"service_id,omitempty"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	EndTime      time.Time         `db:"end_time" json:"end_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type CreateAppointmentRequest struct {
	ProviderID uuid.UUID `json:"provider_id" binding:"required"`
	PatientID  uuid.UUID `json:"patient_id" binding:"required"`
	ServiceID  *uuid.UUID `json:"service_id"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
	Notes      string    `json:"notes" binding:"max=1000"`
}

type TransitionRequest struct {
	Status AppointmentStatus `json:"status" binding:"required"`
	Reason string            `json:"reason" binding:"max=500"`
}

type AppointmentFilters struct {
	ProviderID uuid.UUID
	PatientID  uuid.UUID
	Status     AppointmentStatus
	StartDate  time.Time
	EndDate    time.Time
}
