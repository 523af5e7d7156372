package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sellerctl/internal/domain"
)

var _ domain.LifecycleEventRepository = (*LifecycleEventRepo)(nil)

// LifecycleEventRepo implements domain.LifecycleEventRepository using the
// SQLite journal.
type LifecycleEventRepo struct {
	db *sql.DB
}

// NewLifecycleEventRepo creates a new LifecycleEventRepo.
func NewLifecycleEventRepo(db *sql.DB) *LifecycleEventRepo {
	return &LifecycleEventRepo{db: db}
}

// Record inserts one event, assigning an ID when the event has none.
func (r *LifecycleEventRepo) Record(ctx context.Context, e *domain.LifecycleEvent) error {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lifecycle_events (id, action, data_dir, exit_code, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Action), e.DataDir, e.ExitCode, nullString(e.Error),
		e.StartedAt.UTC(), e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record lifecycle event: %w", mapDBError(err))
	}
	return nil
}

// List returns up to limit events, newest first. A limit <= 0 means 20.
func (r *LifecycleEventRepo) List(ctx context.Context, limit int) ([]domain.LifecycleEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, action, data_dir, exit_code, error, started_at, duration_ms
		 FROM lifecycle_events ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list lifecycle events: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var events []domain.LifecycleEvent
	for rows.Next() {
		var e domain.LifecycleEvent
		var action string
		var errText sql.NullString
		var durationMs int64
		if err := rows.Scan(&e.ID, &action, &e.DataDir, &e.ExitCode, &errText, &e.StartedAt, &durationMs); err != nil {
			return nil, fmt.Errorf("scan lifecycle event: %w", err)
		}
		e.Action = domain.LifecycleAction(action)
		e.Error = ptrString(errText)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		events = append(events, e)
	}
	return events, rows.Err()
}
