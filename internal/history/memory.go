package history

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRecorder keeps events in memory; used in tests and when no database
// is configured but callers still want the recent-activity endpoint.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Recorder = (*MemoryRecorder)(nil)

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *MemoryRecorder) Recent(ctx context.Context, limit int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, 0, limit)
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}
