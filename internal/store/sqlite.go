package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/writebot/internal/domain"
	"github.com/ashureev/writebot/internal/shared"
	_ "modernc.org/sqlite"
)

const (
	writeAttempts   = 3
	writeRetryDelay = 100 * time.Millisecond
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex // serializes writers to avoid SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS flow_calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		flow TEXT NOT NULL,
		status TEXT NOT NULL,
		error_kind TEXT,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_flow_calls_session ON flow_calls(session_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_flow_calls_created ON flow_calls(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordFlowCall appends a call to the log. Lock conflicts are retried
// with exponential backoff.
func (s *SQLiteStore) RecordFlowCall(ctx context.Context, call *domain.FlowCall) error {
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO flow_calls (session_id, flow, status, error_kind, error, duration_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	err := shared.RetryOnConflict(ctx, writeAttempts, writeRetryDelay, func() error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		result, err := s.db.ExecContext(ctx, query,
			call.SessionID, call.Flow, call.Status,
			nullString(call.ErrorKind), nullString(call.Error),
			call.DurationMs, call.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("get last insert id: %w", err)
		}
		call.ID = id
		return nil
	})
	if err != nil {
		return fmt.Errorf("record flow call for %s: %w", call.SessionID, err)
	}
	return nil
}

// ListFlowCalls returns the calls of a session, oldest first.
func (s *SQLiteStore) ListFlowCalls(ctx context.Context, sessionID string, limit int) ([]domain.FlowCall, error) {
	query := `
		SELECT id, session_id, flow, status, error_kind, error, duration_ms, created_at
		FROM flow_calls WHERE session_id = ?
		ORDER BY created_at, id`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query flow calls: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close flow call rows", "error", closeErr)
		}
	}()

	calls := []domain.FlowCall{}
	for rows.Next() {
		var call domain.FlowCall
		var errorKind, errMsg sql.NullString
		var createdAt int64

		if err := rows.Scan(
			&call.ID, &call.SessionID, &call.Flow, &call.Status,
			&errorKind, &errMsg, &call.DurationMs, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan flow call row: %w", err)
		}

		call.ErrorKind = errorKind.String
		call.Error = errMsg.String
		call.CreatedAt = time.UnixMilli(createdAt).UTC()
		calls = append(calls, call)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flow calls: %w", err)
	}

	return calls, nil
}

// DeleteFlowCallsBefore removes calls created before cutoff.
func (s *SQLiteStore) DeleteFlowCallsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := shared.RetryOnConflict(ctx, writeAttempts, writeRetryDelay, func() error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		result, err := s.db.ExecContext(ctx, `DELETE FROM flow_calls WHERE created_at < ?`, cutoff.UnixMilli())
		if err != nil {
			return err
		}
		deleted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("cleanup flow calls: %w", err)
	}
	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
