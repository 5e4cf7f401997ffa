package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/clinicore/booking-api/internal/model"
	apperrors "github.com/clinicore/booking-api/pkg/errors"
)

func (r *billingRepository) GetService(ctx context.Context, id uuid.UUID) (*model.BillableService, error) {
	query := `
		SELECT id, name, description, cost, status, created_at, updated_at
		FROM billable_services
		WHERE id = $1
	`
	var svc model.BillableService
	err := r.db.GetContext(ctx, &svc, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("billable service", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get billable service: %w", err)
	}
	return &svc, nil
}

func (r *billingRepository) ListServicesForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.BillableService, error) {
	query := `
		SELECT s.id, s.name, s.description, s.cost, s.status, s.created_at, s.updated_at
		FROM billable_services s
		JOIN appointment_services aps ON aps.service_id = s.id
		WHERE aps.appointment_id = $1
		ORDER BY s.name ASC
	`
	var services []*model.BillableService
	err := r.db.SelectContext(ctx, &services, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment services: %w", err)
	}
	return services, nil
}

func (r *billingRepository) PaymentExists(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE appointment_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, appointmentID); err != nil {
		return false, fmt.Errorf("failed to check payment existence: %w", err)
	}
	return exists, nil
}

func (r *billingRepository) CreatePayment(ctx context.Context, tx *sqlx.Tx, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, appointment_id, patient_id, provider_id,
			amount, description, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()
	if payment.Status == "" {
		payment.Status = model.PaymentStatusPending
	}

	_, err := tx.ExecContext(ctx, query,
		payment.ID,
		payment.AppointmentID,
		payment.PatientID,
		payment.ProviderID,
		payment.Amount,
		payment.Description,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return apperrors.DuplicatePayment(payment.AppointmentID.String())
	}
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}
