package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/Allenwdk/OxygenBlog/internal/logging"
	"github.com/Allenwdk/OxygenBlog/pkg/interfaces"
)

const defaultRecentLimit = 50

// BunRecorder stores events in a relational table through bun.
type BunRecorder struct {
	db     *bun.DB
	logger interfaces.Logger
}

var _ Recorder = (*BunRecorder)(nil)

// NewBunRecorder wraps the supplied database handle.
func NewBunRecorder(db *bun.DB, logger interfaces.Logger) *BunRecorder {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &BunRecorder{db: db, logger: logger}
}

// EnsureSchema creates the events table when it does not exist yet.
func (r *BunRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().Model((*Event)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("history: create schema: %w", err)
	}
	r.logger.Debug("history.schema_ready")
	return nil
}

func (r *BunRecorder) Record(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(&event).Exec(ctx); err != nil {
		return fmt.Errorf("history: record %s %s: %w", event.Operation, event.Filename, err)
	}
	r.logger.Debug("history.event_recorded",
		"operation", string(event.Operation),
		"filename", event.Filename,
		"success", event.Success,
	)
	return nil
}

func (r *BunRecorder) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	events := []Event{}
	if err := r.db.NewSelect().Model(&events).Order("created_at DESC").Limit(limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("history: list events: %w", err)
	}
	return events, nil
}
