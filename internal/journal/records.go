package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SessionStatus is the lifecycle state of a recorded conversion session.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionAborted   SessionStatus = "aborted"
)

// RunStatus is the recorded outcome of one run within a session.
type RunStatus string

const (
	RunConverted RunStatus = "converted"
	RunSkipped   RunStatus = "skipped"
	RunAborted   RunStatus = "aborted"
)

// Session is one conversion invocation for one recording.
type Session struct {
	ID            int64
	CorrelationID string
	Subject       string
	Session       string
	RecordingPath string
	Status        SessionStatus
	Message       string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Run is the recorded outcome for one run of a session.
type Run struct {
	ID         int64
	SessionID  int64
	RunID      string
	Task       string
	Status     RunStatus
	Message    string
	StartIndex int
	EndIndex   int
	NumVolumes int
	RecordedAt time.Time
}

// BeginSession inserts a running session record and returns its id.
func (s *Store) BeginSession(ctx context.Context, correlationID, subject, session, recordingPath string) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO sessions (
            correlation_id, subject, session, recording_path, status, started_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		correlationID,
		subject,
		session,
		recordingPath,
		SessionRunning,
		timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// FinishSession records the final status and timestamp for a session.
func (s *Store) FinishSession(ctx context.Context, id int64, status SessionStatus, message string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		"UPDATE sessions SET status = ?, message = ?, finished_at = ? WHERE id = ?",
		status,
		nullableString(message),
		timestamp,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish session %d: %w", id, err)
	}
	return nil
}

// RecordRun appends a run outcome to a session.
func (s *Store) RecordRun(ctx context.Context, sessionID int64, run Run) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (
            session_id, run_id, task, status, message,
            start_index, end_index, num_volumes, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		run.RunID,
		run.Task,
		run.Status,
		nullableString(run.Message),
		run.StartIndex,
		run.EndIndex,
		run.NumVolumes,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}
	return nil
}

// RecentSessions returns the most recently started sessions, newest first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]Session, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, correlation_id, subject, session, recording_path,
            status, message, started_at, finished_at
        FROM sessions ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			rec        Session
			message    sql.NullString
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.CorrelationID, &rec.Subject, &rec.Session, &rec.RecordingPath,
			&rec.Status, &message, &startedAt, &finishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.Message = message.String
		rec.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			rec.FinishedAt = parseTimestamp(finishedAt.String)
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// RunsForSession returns a session's run records in insertion order.
func (s *Store) RunsForSession(ctx context.Context, sessionID int64) ([]Run, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, session_id, run_id, task, status, message,
            start_index, end_index, num_volumes, recorded_at
        FROM runs WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			rec        Run
			message    sql.NullString
			recordedAt string
		)
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.RunID, &rec.Task, &rec.Status, &message,
			&rec.StartIndex, &rec.EndIndex, &rec.NumVolumes, &recordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Message = message.String
		rec.RecordedAt = parseTimestamp(recordedAt)
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
