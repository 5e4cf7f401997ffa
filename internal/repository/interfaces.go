package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	// TxManager runs a function inside a single database transaction.
	// Side effects written through the tx-aware repository methods below
	// commit or roll back together.
	TxManager interface {
		WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	}

	ProviderRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Provider, error)
		GetSlotDuration(ctx context.Context, providerID uuid.UUID) (time.Duration, error)
	}

	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	}

	ScheduleRepository interface {
		UpsertWeeklyEntry(ctx context.Context, entry *model.WeeklyScheduleEntry) error
		ListWeeklyEntries(ctx context.Context, providerID uuid.UUID) ([]*model.WeeklyScheduleEntry, error)
		GetWeeklyEntry(ctx context.Context, providerID uuid.UUID, dayOfWeek int) (*model.WeeklyScheduleEntry, error)
		CreateSpecialDay(ctx context.Context, day *model.SpecialDay) error
		GetSpecialDay(ctx context.Context, providerID uuid.UUID, date time.Time) (*model.SpecialDay, error)
		ListSpecialDays(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*model.SpecialDay, error)
		DeleteSpecialDay(ctx context.Context, providerID uuid.UUID, date time.Time) error
	}

	AppointmentRepository interface {
		// Book runs the conflict check and the insert as one atomic unit
		// under a per-provider exclusion lock. It is the only path that
		// may insert a non-cancelled appointment.
		Book(ctx context.Context, apt *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListForProviderDate returns the provider's non-cancelled
		// appointments whose interval falls on the given calendar date.
		ListForProviderDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*model.Appointment, error)
		// UpdateStatus is a compare-and-swap: the write only lands if the
		// row still holds the status the caller validated against. A row
		// whose status moved since the read is left untouched and the
		// caller gets ErrInvalidTransition.
		UpdateStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to model.AppointmentStatus, cancelReason *string) error
	}

	BillingRepository interface {
		GetService(ctx context.Context, id uuid.UUID) (*model.BillableService, error)
		ListServicesForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.BillableService, error)
		PaymentExists(ctx context.Context, appointmentID uuid.UUID) (bool, error)
		CreatePayment(ctx context.Context, tx *sqlx.Tx, payment *model.Payment) error
	}

	OutboxRepository interface {
		CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error
		// WithPendingEvents runs fn over a locked batch of due pending
		// events inside one transaction, so SKIP LOCKED keeps concurrent
		// pollers off the batch until fn returns.
		WithPendingEvents(ctx context.Context, limit int, fn func(tx *sqlx.Tx, events []*model.OutboxEvent) error) error
		UpdateStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
