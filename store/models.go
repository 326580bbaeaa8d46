package store

import (
	"encoding/json"
	"time"
)

// WorkflowRecord is one persisted generation. Records are append-only.
type WorkflowRecord struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Prompt       string          `json:"prompt"`
	WorkflowJSON json.RawMessage `json:"workflowJson"`
	NodeCount    int             `json:"nodeCount"`
	CreatedAt    time.Time       `json:"createdAt"`
}
