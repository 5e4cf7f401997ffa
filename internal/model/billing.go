package model

import (
	"github.com/google/uuid"
)

// BillableService is a catalog entry that can be attached to an
// appointment. Cost is summed at completion time; price changes after
// completion do not retroactively change the payment.
type BillableService struct {
	Base
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Cost        float64 `db:"cost" json:"cost"`
	Status      string  `db:"status" json:"status"`
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is created exactly once per completed appointment. The
// appointment_id column carries a UNIQUE constraint as the storage-level
// backstop for the application-level idempotency check.
type Payment struct {
	Base
	AppointmentID uuid.UUID     `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	ProviderID    uuid.UUID     `db:"provider_id" json:"provider_id"`
	Amount        float64       `db:"amount" json:"amount"`
	Description   string        `db:"description" json:"description"`
	Status        PaymentStatus `db:"status" json:"status"`
}

// BillingCreatedEvent is the payload published to the billing
// collaborator when an appointment completes.
type BillingCreatedEvent struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description"`
}
