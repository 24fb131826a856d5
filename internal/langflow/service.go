package langflow

import (
	"context"
	"fmt"

	"github.com/ashureev/writebot/internal/config"
)

// scenarioTrigger is the chat input that starts scenario generation. The
// learner profile itself travels in the intake tweak.
const scenarioTrigger = "lets start"

// intakeFields maps form data keys to the intake component's field names.
var intakeFields = []struct{ form, component string }{
	{"full_name", "full_name"},
	{"age_group", "age_group"},
	{"interests", "interests"},
	{"cultural_refs", "cultural_refs"},
	{"hardest", "writing_challenge"},
	{"audience", "audience"},
}

// ChatTurn is one message of an exercise conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Service exposes the WriteBot flows on top of an Invoker.
type Service struct {
	inv   Invoker
	flows config.FlowsConfig
}

// NewService creates a flow service.
func NewService(inv Invoker, flows config.FlowsConfig) *Service {
	return &Service{inv: inv, flows: flows}
}

// GenerateScenario asks the scenario flow for a scenario and its exercises.
func (s *Service) GenerateScenario(ctx context.Context, sessionID string, form map[string]any) (any, error) {
	tweaks := s.intakeTweaks(s.flows.ScenarioGeneration.IntakeComponent, form)
	return s.inv.Invoke(ctx, FlowScenarioGeneration, scenarioTrigger, sessionID, tweaks)
}

// StartExercise opens an exercise conversation on topic.
func (s *Service) StartExercise(ctx context.Context, sessionID string, form map[string]any, topic string) (any, error) {
	flow := s.flows.ExerciseGeneration
	tweaks := s.intakeTweaks(flow.IntakeComponent, form)
	if flow.TopicComponent != "" {
		tweaks[flow.TopicComponent] = ComponentTweak{"input_value": topic}
	}
	return s.inv.Invoke(ctx, FlowExerciseGeneration, topic, sessionID, tweaks)
}

// ContinueExercise sends the learner's next message to the exercise flow.
func (s *Service) ContinueExercise(ctx context.Context, sessionID string, form map[string]any, message string) (any, error) {
	tweaks := s.intakeTweaks(s.flows.ExerciseGeneration.IntakeComponent, form)
	return s.inv.Invoke(ctx, FlowExerciseGeneration, message, sessionID, tweaks)
}

// AssessAndPlan sends assessment responses to the planning flow.
func (s *Service) AssessAndPlan(ctx context.Context, sessionID string, responses map[string]any) (any, error) {
	return s.inv.Invoke(ctx, FlowAssessmentPlan, responses, sessionID, nil)
}

// SessionFeedback asks for feedback on a finished exercise conversation.
func (s *Service) SessionFeedback(ctx context.Context, sessionID string, conversation []ChatTurn) (any, error) {
	input := map[string]any{
		"conversation": conversation,
		"student_id":   sessionID,
	}
	return s.inv.Invoke(ctx, FlowSessionFeedback, input, sessionID, nil)
}

func (s *Service) intakeTweaks(component string, form map[string]any) Tweaks {
	tweaks := Tweaks{}
	if component == "" {
		return tweaks
	}
	fields := make(ComponentTweak, len(intakeFields))
	for _, f := range intakeFields {
		fields[f.component] = formString(form, f.form)
	}
	tweaks[component] = fields
	return tweaks
}

func formString(form map[string]any, key string) string {
	switch v := form[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
