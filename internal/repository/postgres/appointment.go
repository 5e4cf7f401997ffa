package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/booking-api/internal/model"
	apperrors "github.com/clinicore/booking-api/pkg/errors"
)

// Book inserts a new scheduled appointment after re-checking for
// overlaps inside one transaction. A per-provider advisory lock
// serializes concurrent attempts across service instances: the lock is
// released at commit or rollback, so two overlapping bookings can never
// both pass the conflict check. Overlap uses the half-open test
// (start_time < end AND end_time > start), matching model.Overlaps.
func (r *appointmentRepository) Book(ctx context.Context, apt *model.Appointment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		lockQuery := `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`
		if _, err := tx.ExecContext(ctx, lockQuery, apt.ProviderID.String()); err != nil {
			return fmt.Errorf("failed to acquire provider lock: %w", err)
		}

		conflictQuery := `
			SELECT EXISTS (
				SELECT 1 FROM appointments
				WHERE provider_id = $1
				AND status <> 'cancelled'
				AND start_time < $3
				AND end_time > $2
			)
		`
		var conflict bool
		if err := tx.GetContext(ctx, &conflict, conflictQuery, apt.ProviderID, apt.StartTime, apt.EndTime); err != nil {
			return fmt.Errorf("failed to check conflicts: %w", err)
		}
		if conflict {
			return apperrors.SlotConflict()
		}

		insertQuery := `
			INSERT INTO appointments (
				id, provider_id, patient_id, service_id,
				start_time, end_time, status, notes,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.ExecContext(ctx, insertQuery,
			apt.ID,
			apt.ProviderID,
			apt.PatientID,
			apt.ServiceID,
			apt.StartTime,
			apt.EndTime,
			apt.Status,
			apt.Notes,
			apt.CreatedAt,
			apt.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert appointment: %w", err)
		}
		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, provider_id, patient_id, service_id,
			   start_time, end_time, status, notes, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, provider_id, patient_id, service_id,
			   start_time, end_time, status, notes, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.ProviderID != uuid.Nil {
		query += fmt.Sprintf(" AND provider_id = $%d", argCount)
		args = append(args, filters.ProviderID)
		argCount++
	}
	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}
	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND end_time <= $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForProviderDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT id, provider_id, patient_id, service_id,
			   start_time, end_time, status, notes, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE provider_id = $1
		AND status <> 'cancelled'
		AND start_time >= $2
		AND start_time < $3
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for date: %w", err)
	}
	return appointments, nil
}

// UpdateStatus writes the new status only if the row still holds the
// status the caller read. The status predicate makes the write a
// compare-and-swap, so a transition validated against a stale read
// cannot overwrite a state committed by another instance in between.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to model.AppointmentStatus, cancelReason *string) error {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = COALESCE($2, cancel_reason), updated_at = $3
		WHERE id = $4 AND status = $5
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.ExecContext(ctx, query, to, cancelReason, time.Now(), id, from)
	} else {
		result, err = r.db.ExecContext(ctx, query, to, cancelReason, time.Now(), id, from)
	}
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		current, getErr := r.Get(ctx, id)
		if getErr != nil {
			return getErr
		}
		return apperrors.InvalidTransition(string(current.Status), string(to))
	}
	return nil
}
