package langflow

import (
	"context"
	"testing"

	"github.com/ashureev/writebot/internal/config"
)

type invocation struct {
	flow      FlowName
	input     any
	sessionID string
	tweaks    Tweaks
}

type fakeInvoker struct {
	calls []invocation
	resp  any
	err   error
}

func (f *fakeInvoker) Invoke(_ context.Context, flow FlowName, input any, sessionID string, tweaks Tweaks) (any, error) {
	f.calls = append(f.calls, invocation{flow: flow, input: input, sessionID: sessionID, tweaks: tweaks})
	return f.resp, f.err
}

func (f *fakeInvoker) last(t *testing.T) invocation {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatal("expected an invocation")
	}
	return f.calls[len(f.calls)-1]
}

var testForm = map[string]any{
	"full_name":     "Ada",
	"age_group":     "14-16",
	"interests":     "robots",
	"cultural_refs": "anime",
	"hardest":       "Producing",
	"audience":      "peers",
}

func TestGenerateScenarioTweaks(t *testing.T) {
	inv := &fakeInvoker{}
	svc := NewService(inv, config.DefaultFlows())

	if _, err := svc.GenerateScenario(context.Background(), "sess", testForm); err != nil {
		t.Fatalf("GenerateScenario failed: %v", err)
	}

	call := inv.last(t)
	if call.flow != FlowScenarioGeneration || call.input != scenarioTrigger {
		t.Errorf("unexpected call: %+v", call)
	}
	intake := call.tweaks["IntakeFormLearnerProfile-lSOHp"]
	if intake == nil {
		t.Fatalf("missing intake tweak: %+v", call.tweaks)
	}
	if intake["writing_challenge"] != "Producing" {
		t.Errorf("writing_challenge = %v", intake["writing_challenge"])
	}
	if intake["full_name"] != "Ada" || intake["audience"] != "peers" {
		t.Errorf("unexpected intake tweak: %+v", intake)
	}
	if _, ok := intake["hardest"]; ok {
		t.Error("hardest should be renamed to writing_challenge")
	}
}

func TestStartExerciseTopicTweak(t *testing.T) {
	inv := &fakeInvoker{}
	svc := NewService(inv, config.DefaultFlows())

	if _, err := svc.StartExercise(context.Background(), "sess", testForm, "Letter: write one"); err != nil {
		t.Fatalf("StartExercise failed: %v", err)
	}

	call := inv.last(t)
	if call.flow != FlowExerciseGeneration || call.sessionID != "sess" {
		t.Errorf("unexpected call: %+v", call)
	}
	if call.tweaks["TextInput-1AsYl"]["input_value"] != "Letter: write one" {
		t.Errorf("topic tweak missing: %+v", call.tweaks)
	}
	if call.tweaks["IntakeFormLearnerProfile-OnNnU"]["full_name"] != "Ada" {
		t.Errorf("intake tweak missing: %+v", call.tweaks)
	}
}

func TestContinueExerciseSendsMessage(t *testing.T) {
	inv := &fakeInvoker{}
	svc := NewService(inv, config.DefaultFlows())

	if _, err := svc.ContinueExercise(context.Background(), "sess", map[string]any{"age_group": 14}, "my draft"); err != nil {
		t.Fatalf("ContinueExercise failed: %v", err)
	}

	call := inv.last(t)
	if call.input != "my draft" {
		t.Errorf("input = %v", call.input)
	}
	intake := call.tweaks["IntakeFormLearnerProfile-OnNnU"]
	if intake["age_group"] != "14" || intake["full_name"] != "" {
		t.Errorf("unexpected intake coercion: %+v", intake)
	}
}

func TestSessionFeedbackInput(t *testing.T) {
	inv := &fakeInvoker{}
	svc := NewService(inv, config.DefaultFlows())

	conv := []ChatTurn{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	if _, err := svc.SessionFeedback(context.Background(), "sess", conv); err != nil {
		t.Fatalf("SessionFeedback failed: %v", err)
	}

	call := inv.last(t)
	input, ok := call.input.(map[string]any)
	if !ok {
		t.Fatalf("input = %#v", call.input)
	}
	if input["student_id"] != "sess" {
		t.Errorf("student_id = %v", input["student_id"])
	}
	if got, _ := input["conversation"].([]ChatTurn); len(got) != 2 {
		t.Errorf("conversation = %#v", input["conversation"])
	}
	if call.tweaks != nil {
		t.Errorf("expected no tweaks, got %+v", call.tweaks)
	}
}

func TestNoIntakeComponentSendsNoTweak(t *testing.T) {
	inv := &fakeInvoker{}
	svc := NewService(inv, config.FlowsConfig{})

	if _, err := svc.GenerateScenario(context.Background(), "sess", testForm); err != nil {
		t.Fatalf("GenerateScenario failed: %v", err)
	}
	if len(inv.last(t).tweaks) != 0 {
		t.Errorf("expected empty tweaks, got %+v", inv.last(t).tweaks)
	}
}
