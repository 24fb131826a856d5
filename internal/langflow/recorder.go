package langflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/writebot/internal/domain"
)

// recordTimeout bounds how long a call log write may take.
const recordTimeout = 5 * time.Second

// CallRecorder persists flow call records.
type CallRecorder interface {
	RecordFlowCall(ctx context.Context, call *domain.FlowCall) error
}

// RecordingInvoker records every call made through the wrapped Invoker.
type RecordingInvoker struct {
	next   Invoker
	rec    CallRecorder
	logger *slog.Logger
	now    func() time.Time
}

// NewRecordingInvoker wraps next so each call is written to rec.
func NewRecordingInvoker(next Invoker, rec CallRecorder, logger *slog.Logger) *RecordingInvoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordingInvoker{next: next, rec: rec, logger: logger, now: time.Now}
}

// Invoke calls the wrapped Invoker and records the outcome. Recording
// failures are logged and never change the result.
func (r *RecordingInvoker) Invoke(ctx context.Context, flow FlowName, input any, sessionID string, tweaks Tweaks) (any, error) {
	start := r.now()
	raw, err := r.next.Invoke(ctx, flow, input, sessionID, tweaks)

	call := &domain.FlowCall{
		SessionID:  sessionID,
		Flow:       string(flow),
		Status:     domain.FlowCallOK,
		DurationMs: r.now().Sub(start).Milliseconds(),
		CreatedAt:  start.UTC(),
	}
	if err != nil {
		call.Status = domain.FlowCallError
		call.ErrorKind = ErrorKind(err)
		call.Error = err.Error()
	}
	if call.Failed() {
		r.logger.Warn("Langflow call failed",
			"flow", flow,
			"session_id", sessionID,
			"kind", call.ErrorKind,
			"duration_ms", call.DurationMs,
			"error", err)
	}

	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if recErr := r.rec.RecordFlowCall(recCtx, call); recErr != nil {
		r.logger.Warn("failed to record flow call", "flow", flow, "session_id", sessionID, "error", recErr)
	}

	return raw, err
}
