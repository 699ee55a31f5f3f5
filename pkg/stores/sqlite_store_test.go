package stores

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

// setupTestStore creates an in-memory SQLite store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	return store
}

func testExecution(success bool, createdAt time.Time) *Execution {
	return &Execution{
		ID:        uuid.New().String(),
		Action:    "install",
		Target:    "firefox",
		TierUsed:  "modern_cli",
		Success:   success,
		Duration:  1200 * time.Millisecond,
		CreatedAt: createdAt,
	}
}

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

// TestStoreMigrations tests database migrations
func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	var count int
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM executions").Scan(&count); err != nil {
		t.Errorf("executions table does not exist or is not accessible: %v", err)
	}
}

func TestRecordAndGetExecution(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	want := testExecution(true, time.Now().UTC().Truncate(time.Second))
	want.Error = ""

	if err := store.RecordExecution(ctx, want); err != nil {
		t.Fatalf("failed to record execution: %v", err)
	}

	got, err := store.GetExecution(ctx, want.ID)
	if err != nil {
		t.Fatalf("failed to get execution: %v", err)
	}

	if got.Action != want.Action || got.Target != want.Target || got.TierUsed != want.TierUsed {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.Success {
		t.Error("success flag lost")
	}
	if got.Duration != want.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, want.Duration)
	}
}

func TestRecordFailedExecution(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	exec := testExecution(false, time.Now().UTC())
	exec.Error = "nix profile install failed"
	exec.DryRun = true

	if err := store.RecordExecution(ctx, exec); err != nil {
		t.Fatalf("failed to record execution: %v", err)
	}

	got, err := store.GetExecution(ctx, exec.ID)
	if err != nil {
		t.Fatalf("failed to get execution: %v", err)
	}
	if got.Success {
		t.Error("failure recorded as success")
	}
	if !got.DryRun {
		t.Error("dry-run flag lost")
	}
	if got.Error != exec.Error {
		t.Errorf("Error = %q, want %q", got.Error, exec.Error)
	}
}

func TestListExecutionsNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	var ids []string
	for i := 0; i < 3; i++ {
		exec := testExecution(true, base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, exec.ID)
		if err := store.RecordExecution(ctx, exec); err != nil {
			t.Fatalf("failed to record execution: %v", err)
		}
	}

	got, err := store.ListExecutions(ctx, 10, 0)
	if err != nil {
		t.Fatalf("failed to list executions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("listed %d executions, want 3", len(got))
	}
	if got[0].ID != ids[2] || got[2].ID != ids[0] {
		t.Error("executions not ordered newest-first")
	}
}

func TestListExecutionsLimit(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := store.RecordExecution(ctx, testExecution(true, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("failed to record execution: %v", err)
		}
	}

	got, err := store.ListExecutions(ctx, 2, 0)
	if err != nil {
		t.Fatalf("failed to list executions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("listed %d executions, want 2", len(got))
	}

	rest, err := store.ListExecutions(ctx, 10, 2)
	if err != nil {
		t.Fatalf("failed to list executions with offset: %v", err)
	}
	if len(rest) != 3 {
		t.Errorf("listed %d executions after offset, want 3", len(rest))
	}
}

func TestGetExecutionNotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	if _, err := store.GetExecution(context.Background(), uuid.New().String()); err == nil {
		t.Error("expected an error for an unknown execution ID")
	}
}
