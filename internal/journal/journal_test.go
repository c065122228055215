package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.BeginSession(ctx, "corr-123", "sub-01", "ses-02", "/data/sub-01_ses-02_task-rest_physio.mat")
	if err != nil {
		t.Fatalf("BeginSession() error = %v", err)
	}
	if id == 0 {
		t.Fatal("BeginSession() returned zero id")
	}

	if err := store.RecordRun(ctx, id, Run{
		RunID:      "run-01",
		Task:       "rest",
		Status:     RunConverted,
		StartIndex: 0,
		EndIndex:   80000,
		NumVolumes: 160,
	}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if err := store.RecordRun(ctx, id, Run{
		RunID:   "run-02",
		Task:    "rest",
		Status:  RunSkipped,
		Message: "metadata incomplete",
	}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	if err := store.FinishSession(ctx, id, SessionCompleted, ""); err != nil {
		t.Fatalf("FinishSession() error = %v", err)
	}

	sessions, err := store.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSessions() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("RecentSessions() returned %d sessions, want 1", len(sessions))
	}
	got := sessions[0]
	if got.Subject != "sub-01" || got.Session != "ses-02" {
		t.Fatalf("session identity = %s/%s, want sub-01/ses-02", got.Subject, got.Session)
	}
	if got.Status != SessionCompleted {
		t.Fatalf("session status = %q, want %q", got.Status, SessionCompleted)
	}
	if got.CorrelationID != "corr-123" {
		t.Fatalf("correlation id = %q, want corr-123", got.CorrelationID)
	}
	if got.FinishedAt.IsZero() {
		t.Fatal("finished session has zero FinishedAt")
	}
	if !got.StartedAt.Before(got.FinishedAt) && !got.StartedAt.Equal(got.FinishedAt) {
		t.Fatalf("StartedAt %v after FinishedAt %v", got.StartedAt, got.FinishedAt)
	}

	runs, err := store.RunsForSession(ctx, id)
	if err != nil {
		t.Fatalf("RunsForSession() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RunsForSession() returned %d runs, want 2", len(runs))
	}
	if runs[0].RunID != "run-01" || runs[0].Status != RunConverted {
		t.Fatalf("first run = %s/%s, want run-01/converted", runs[0].RunID, runs[0].Status)
	}
	if runs[0].NumVolumes != 160 || runs[0].EndIndex != 80000 {
		t.Fatalf("first run geometry = %d volumes [0:%d], want 160 [0:80000]",
			runs[0].NumVolumes, runs[0].EndIndex)
	}
	if runs[1].Status != RunSkipped || runs[1].Message != "metadata incomplete" {
		t.Fatalf("second run = %s %q, want skipped with message", runs[1].Status, runs[1].Message)
	}
}

func TestAbortedSessionKeepsMessage(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.BeginSession(ctx, "corr-456", "sub-02", "ses-01", "/data/rec.edf")
	if err != nil {
		t.Fatalf("BeginSession() error = %v", err)
	}
	if err := store.FinishSession(ctx, id, SessionAborted, "trigger channel not found"); err != nil {
		t.Fatalf("FinishSession() error = %v", err)
	}

	sessions, err := store.RecentSessions(ctx, 1)
	if err != nil {
		t.Fatalf("RecentSessions() error = %v", err)
	}
	if sessions[0].Status != SessionAborted {
		t.Fatalf("status = %q, want %q", sessions[0].Status, SessionAborted)
	}
	if sessions[0].Message != "trigger channel not found" {
		t.Fatalf("message = %q, want abort reason", sessions[0].Message)
	}
}

func TestRecentSessionsLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.BeginSession(ctx, "corr", "sub-01", "ses-01", "/data/rec.mat"); err != nil {
			t.Fatalf("BeginSession() error = %v", err)
		}
	}

	sessions, err := store.RecentSessions(ctx, 3)
	if err != nil {
		t.Fatalf("RecentSessions() error = %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("RecentSessions(3) returned %d sessions", len(sessions))
	}
	// Newest first.
	if sessions[0].ID <= sessions[1].ID {
		t.Fatalf("sessions not newest-first: ids %d, %d", sessions[0].ID, sessions[1].ID)
	}
}

func TestSchemaMismatchRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump schema version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err = Open(path)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("reopen error = %v, want ErrSchemaMismatch", err)
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.BeginSession(context.Background(), "corr", "sub-01", "ses-01", "/data/rec.mat"); err != nil {
		t.Fatalf("BeginSession() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	sessions, err := reopened.RecentSessions(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentSessions() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("reopened store has %d sessions, want 1", len(sessions))
	}
}
