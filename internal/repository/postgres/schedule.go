package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/clinicore/booking-api/internal/model"
	apperrors "github.com/clinicore/booking-api/pkg/errors"
)

func (r *scheduleRepository) UpsertWeeklyEntry(ctx context.Context, entry *model.WeeklyScheduleEntry) error {
	query := `
		INSERT INTO weekly_schedule (
			id, provider_id, day_of_week, start_time, end_time, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (provider_id, day_of_week) DO UPDATE
		SET start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ProviderID,
		entry.DayOfWeek,
		entry.StartTime,
		entry.EndTime,
		entry.IsActive,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly schedule entry: %w", err)
	}
	return nil
}

func (r *scheduleRepository) ListWeeklyEntries(ctx context.Context, providerID uuid.UUID) ([]*model.WeeklyScheduleEntry, error) {
	query := `
		SELECT id, provider_id, day_of_week, start_time, end_time, is_active,
			   created_at, updated_at
		FROM weekly_schedule
		WHERE provider_id = $1
		ORDER BY day_of_week ASC
	`
	var entries []*model.WeeklyScheduleEntry
	err := r.db.SelectContext(ctx, &entries, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly schedule: %w", err)
	}
	return entries, nil
}

func (r *scheduleRepository) GetWeeklyEntry(ctx context.Context, providerID uuid.UUID, dayOfWeek int) (*model.WeeklyScheduleEntry, error) {
	query := `
		SELECT id, provider_id, day_of_week, start_time, end_time, is_active,
			   created_at, updated_at
		FROM weekly_schedule
		WHERE provider_id = $1 AND day_of_week = $2
	`
	var entry model.WeeklyScheduleEntry
	err := r.db.GetContext(ctx, &entry, query, providerID, dayOfWeek)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly schedule entry: %w", err)
	}
	return &entry, nil
}

func (r *scheduleRepository) CreateSpecialDay(ctx context.Context, day *model.SpecialDay) error {
	query := `
		INSERT INTO special_days (
			id, provider_id, date, type, start_time, end_time, description,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	day.ID = uuid.New()
	day.CreatedAt = time.Now()
	day.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		day.ID,
		day.ProviderID,
		day.Date,
		day.Type,
		day.StartTime,
		day.EndTime,
		day.Description,
		day.CreatedAt,
		day.UpdatedAt,
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return apperrors.DuplicateSpecialDay(day.Date.Format("2006-01-02"))
	}
	if err != nil {
		return fmt.Errorf("failed to create special day: %w", err)
	}
	return nil
}

func (r *scheduleRepository) GetSpecialDay(ctx context.Context, providerID uuid.UUID, date time.Time) (*model.SpecialDay, error) {
	query := `
		SELECT id, provider_id, date, type, start_time, end_time, description,
			   created_at, updated_at
		FROM special_days
		WHERE provider_id = $1 AND date = $2::date
	`
	var day model.SpecialDay
	err := r.db.GetContext(ctx, &day, query, providerID, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get special day: %w", err)
	}
	return &day, nil
}

func (r *scheduleRepository) ListSpecialDays(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*model.SpecialDay, error) {
	query := `
		SELECT id, provider_id, date, type, start_time, end_time, description,
			   created_at, updated_at
		FROM special_days
		WHERE provider_id = $1 AND date >= $2::date AND date <= $3::date
		ORDER BY date ASC
	`
	var days []*model.SpecialDay
	err := r.db.SelectContext(ctx, &days, query, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list special days: %w", err)
	}
	return days, nil
}

func (r *scheduleRepository) DeleteSpecialDay(ctx context.Context, providerID uuid.UUID, date time.Time) error {
	query := `
		DELETE FROM special_days
		WHERE provider_id = $1 AND date = $2::date
	`
	result, err := r.db.ExecContext(ctx, query, providerID, date)
	if err != nil {
		return fmt.Errorf("failed to delete special day: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("special day", nil)
	}
	return nil
}
