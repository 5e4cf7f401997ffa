package model

import (
	"github.com/google/uuid"
)

// Specialization groups providers by category. Slot duration is a
// property of the category, not of an individual appointment.
type Specialization struct {
	Base
	Name            string `db:"name" json:"name"`
	SlotDurationMin int    `db:"slot_duration_min" json:"slot_duration_min"`
}

type Provider struct {
	Base
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	SpecializationID uuid.UUID `db:"specialization_id" json:"specialization_id"`
	Status           string    `db:"status" json:"status"`
}
