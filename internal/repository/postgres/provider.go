package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/booking-api/internal/model"
	apperrors "github.com/clinicore/booking-api/pkg/errors"
)

func (r *providerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	query := `
		SELECT id, name, email, specialization_id, status, created_at, updated_at
		FROM providers
		WHERE id = $1
	`
	var provider model.Provider
	err := r.db.GetContext(ctx, &provider, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("provider", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

func (r *providerRepository) GetSlotDuration(ctx context.Context, providerID uuid.UUID) (time.Duration, error) {
	query := `
		SELECT s.slot_duration_min
		FROM providers p
		JOIN specializations s ON s.id = p.specialization_id
		WHERE p.id = $1
	`
	var minutes int
	err := r.db.GetContext(ctx, &minutes, query, providerID)
	if err == sql.ErrNoRows {
		return 0, apperrors.NotFound("provider", err)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get slot duration: %w", err)
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("specialization has non-positive slot duration %d", minutes)
	}
	return time.Duration(minutes) * time.Minute, nil
}
