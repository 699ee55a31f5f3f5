package stores

import (
	"context"
	"time"
)

// Execution is one recorded run of an intent through the executor.
type Execution struct {
	ID        string        `json:"id"`
	Action    string        `json:"action"`
	Target    string        `json:"target,omitempty"`
	TierUsed  string        `json:"tier_used"`
	Success   bool          `json:"success"`
	DryRun    bool          `json:"dry_run"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store is the persistence interface for execution history.
type Store interface {
	// Init opens the underlying database.
	Init(ctx context.Context) error

	// Migrate applies pending schema migrations.
	Migrate(ctx context.Context) error

	// Close releases the database.
	Close() error

	// HealthCheck verifies the database is reachable.
	HealthCheck(ctx context.Context) error

	// RecordExecution persists one execution record.
	RecordExecution(ctx context.Context, exec *Execution) error

	// ListExecutions returns records newest-first.
	ListExecutions(ctx context.Context, limit, offset int) ([]*Execution, error)

	// GetExecution fetches one record by ID.
	GetExecution(ctx context.Context, id string) (*Execution, error)
}
