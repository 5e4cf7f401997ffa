package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/booking-api/internal/model"
	"github.com/clinicore/booking-api/internal/repository"
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}

// CreateTx writes the event inside the caller's transaction so the
// event commits or rolls back together with the state change it
// announces.
func (r *outboxRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, retry_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query,
			event.ID, event.EventType, event.Payload, event.Status,
			event.RetryCount, event.CreatedAt, event.UpdatedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query,
			event.ID, event.EventType, event.Payload, event.Status,
			event.RetryCount, event.CreatedAt, event.UpdatedAt)
	}
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// WithPendingEvents selects a batch of due pending events under FOR
// UPDATE SKIP LOCKED and holds the row locks for the duration of fn.
// Running the select and the status writes in one transaction is what
// keeps two concurrent pollers off the same batch; a statement-scoped
// lock would be released before the events were published.
func (r *outboxRepository) WithPendingEvents(ctx context.Context, limit int, fn func(tx *sqlx.Tx, events []*model.OutboxEvent) error) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			SELECT id, event_type, payload, status, error_message, retry_count,
				   retry_at, created_at, processed_at, updated_at
			FROM outbox_events
			WHERE status = 'pending'
			AND (retry_at IS NULL OR retry_at <= NOW())
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`
		var events []*model.OutboxEvent
		err := tx.SelectContext(ctx, &events, query, limit)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to get pending events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}
		return fn(tx, events)
	})
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error {
	query := `
		UPDATE outbox_events
		SET status = $1,
			error_message = $2,
			retry_at = $3,
			retry_count = CASE WHEN $3::timestamptz IS NOT NULL THEN retry_count + 1 ELSE retry_count END,
			processed_at = CASE WHEN $1 = 'processed' THEN NOW() ELSE processed_at END,
			updated_at = NOW()
		WHERE id = $4
	`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, errorMessage, retryAt, id)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, errorMessage, retryAt, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update outbox event status: %w", err)
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = 'processed' AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}
	return result.RowsAffected()
}
