// Package langflow invokes flows on the Langflow generation backend.
package langflow

import (
	"context"
)

// FlowName identifies an independently invokable flow.
type FlowName string

// Known flows.
const (
	FlowScenarioGeneration FlowName = "scenario_generation"
	FlowAssessmentPlan     FlowName = "assessment_plan"
	FlowExerciseGeneration FlowName = "exercise_generation"
	FlowSessionFeedback    FlowName = "session_feedback"
)

// ComponentTweak overrides fields of one flow component.
type ComponentTweak map[string]any

// Tweaks maps component ids to their overrides.
type Tweaks map[string]ComponentTweak

// Invoker runs a flow and returns its decoded JSON response.
type Invoker interface {
	// Invoke runs flow with the given input. input is sent as is when it is
	// a string and JSON encoded otherwise. An empty sessionID gets a fresh
	// one.
	Invoke(ctx context.Context, flow FlowName, input any, sessionID string, tweaks Tweaks) (any, error)
}

// runRequest is the body of POST /api/v1/run/{flow_id}.
type runRequest struct {
	OutputType string `json:"output_type"`
	InputType  string `json:"input_type"`
	InputValue string `json:"input_value"`
	SessionID  string `json:"session_id"`
	Tweaks     Tweaks `json:"tweaks,omitempty"`
}

// Ensure implementations satisfy Invoker.
var (
	_ Invoker = (*Client)(nil)
	_ Invoker = (*RecordingInvoker)(nil)
)
