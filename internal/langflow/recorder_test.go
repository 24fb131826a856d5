package langflow

import (
	"context"
	"errors"
	"testing"

	"github.com/ashureev/writebot/internal/domain"
)

type memRecorder struct {
	calls []*domain.FlowCall
	err   error
}

func (m *memRecorder) RecordFlowCall(_ context.Context, call *domain.FlowCall) error {
	m.calls = append(m.calls, call)
	return m.err
}

func TestRecordingInvokerSuccess(t *testing.T) {
	inner := &fakeInvoker{resp: map[string]any{"text": "ok"}}
	rec := &memRecorder{}
	r := NewRecordingInvoker(inner, rec, testLogger())

	raw, err := r.Invoke(context.Background(), FlowScenarioGeneration, "x", "sess", nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if raw == nil {
		t.Error("expected response to pass through")
	}
	if len(rec.calls) != 1 {
		t.Fatalf("recorded %d calls, want 1", len(rec.calls))
	}
	call := rec.calls[0]
	if call.SessionID != "sess" || call.Flow != string(FlowScenarioGeneration) || call.Status != domain.FlowCallOK {
		t.Errorf("unexpected record: %+v", call)
	}
	if call.Failed() {
		t.Error("call should not be marked failed")
	}
}

func TestRecordingInvokerFailure(t *testing.T) {
	inner := &fakeInvoker{err: ErrTimeout}
	rec := &memRecorder{}
	r := NewRecordingInvoker(inner, rec, testLogger())

	_, err := r.Invoke(context.Background(), FlowExerciseGeneration, "x", "sess", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	call := rec.calls[0]
	if !call.Failed() || call.ErrorKind != KindTimeout || call.Error == "" {
		t.Errorf("unexpected record: %+v", call)
	}
}

func TestRecordingInvokerIgnoresRecorderError(t *testing.T) {
	inner := &fakeInvoker{resp: "ok"}
	rec := &memRecorder{err: errors.New("disk full")}
	r := NewRecordingInvoker(inner, rec, testLogger())

	raw, err := r.Invoke(context.Background(), FlowScenarioGeneration, "x", "sess", nil)
	if err != nil {
		t.Fatalf("recorder error leaked: %v", err)
	}
	if raw != "ok" {
		t.Errorf("raw = %v", raw)
	}
}
