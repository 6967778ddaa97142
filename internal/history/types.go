// Package history records an audit trail of publish workflow operations.
// Recording is best-effort: the workflow treats recorder failures as
// warnings, never as publish failures.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Operation labels what the workflow did to a file.
type Operation string

const (
	OperationPublish Operation = "publish"
	OperationDraft   Operation = "draft"
	OperationUpdate  Operation = "update"
	OperationDelete  Operation = "delete"
	OperationPromote Operation = "promote"
)

// Event is one recorded workflow operation.
type Event struct {
	bun.BaseModel `bun:"table:publish_events,alias:pe"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Operation Operation `bun:"operation,notnull" json:"operation"`
	Filename  string    `bun:"filename,notnull" json:"filename"`
	Slug      string    `bun:"slug" json:"slug,omitempty"`
	Title     string    `bun:"title" json:"title,omitempty"`
	Backend   string    `bun:"backend" json:"backend,omitempty"`
	Success   bool      `bun:"success,notnull" json:"success"`
	Detail    string    `bun:"detail" json:"detail,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Recorder persists workflow events.
type Recorder interface {
	Record(ctx context.Context, event Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}
