package store

import "context"

// WorkflowStore persists generated workflows. Create assigns ID and
// CreatedAt; ids increase monotonically and are never reused.
type WorkflowStore interface {
	Create(ctx context.Context, w *WorkflowRecord) error
	Get(ctx context.Context, id int64) (*WorkflowRecord, error)
	// List returns every record in id order.
	List(ctx context.Context) ([]WorkflowRecord, error)
	Close() error
}
