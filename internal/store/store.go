// Package store persists the flow-call log.
package store

import (
	"context"
	"time"

	"github.com/ashureev/writebot/internal/domain"
)

// Repository defines the interface for persisting flow calls.
type Repository interface {
	// RecordFlowCall appends a call to the log and sets its ID.
	RecordFlowCall(ctx context.Context, call *domain.FlowCall) error

	// ListFlowCalls returns up to limit calls of a session, oldest first.
	// A limit <= 0 returns every call.
	ListFlowCalls(ctx context.Context, sessionID string, limit int) ([]domain.FlowCall, error)

	// DeleteFlowCallsBefore removes calls created before cutoff.
	DeleteFlowCallsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// Noop is a Repository that keeps nothing. It is used when the call log
// is disabled.
type Noop struct{}

// RecordFlowCall discards the call.
func (Noop) RecordFlowCall(context.Context, *domain.FlowCall) error { return nil }

// ListFlowCalls always returns an empty log.
func (Noop) ListFlowCalls(context.Context, string, int) ([]domain.FlowCall, error) {
	return []domain.FlowCall{}, nil
}

// DeleteFlowCallsBefore removes nothing.
func (Noop) DeleteFlowCallsBefore(context.Context, time.Time) (int64, error) { return 0, nil }

// Ping always succeeds.
func (Noop) Ping(context.Context) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }

var (
	_ Repository = Noop{}
	_ Repository = (*SQLiteStore)(nil)
)
