package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Component ids of the published WriteBot flows. The YAML flow file can
// override them when the flows are re-exported.
const (
	defaultScenarioIntakeComponent = "IntakeFormLearnerProfile-lSOHp"
	defaultExerciseIntakeComponent = "IntakeFormLearnerProfile-OnNnU"
	defaultExerciseTopicComponent  = "TextInput-1AsYl"
)

// FlowConfig identifies one flow and the components its tweaks target.
type FlowConfig struct {
	ID              string `yaml:"id"`
	IntakeComponent string `yaml:"intake_component"`
	TopicComponent  string `yaml:"topic_component"`
}

// FlowsConfig lists every flow the service knows how to call.
type FlowsConfig struct {
	ScenarioGeneration FlowConfig `yaml:"scenario_generation"`
	AssessmentPlan     FlowConfig `yaml:"assessment_plan"`
	ExerciseGeneration FlowConfig `yaml:"exercise_generation"`
	SessionFeedback    FlowConfig `yaml:"session_feedback"`
}

// FlowsFile is the on-disk layout of LANGFLOW_FLOWS_FILE.
type FlowsFile struct {
	BaseURL string      `yaml:"base_url"`
	Flows   FlowsConfig `yaml:"flows"`
}

// DefaultFlows returns the flow layout with known component ids and no
// flow ids.
func DefaultFlows() FlowsConfig {
	return FlowsConfig{
		ScenarioGeneration: FlowConfig{IntakeComponent: defaultScenarioIntakeComponent},
		ExerciseGeneration: FlowConfig{
			IntakeComponent: defaultExerciseIntakeComponent,
			TopicComponent:  defaultExerciseTopicComponent,
		},
	}
}

// Merge returns f with every non-empty value from other applied on top.
func (f FlowsConfig) Merge(other FlowsConfig) FlowsConfig {
	f.ScenarioGeneration = f.ScenarioGeneration.merge(other.ScenarioGeneration)
	f.AssessmentPlan = f.AssessmentPlan.merge(other.AssessmentPlan)
	f.ExerciseGeneration = f.ExerciseGeneration.merge(other.ExerciseGeneration)
	f.SessionFeedback = f.SessionFeedback.merge(other.SessionFeedback)
	return f
}

func (c FlowConfig) merge(other FlowConfig) FlowConfig {
	if other.ID != "" {
		c.ID = other.ID
	}
	if other.IntakeComponent != "" {
		c.IntakeComponent = other.IntakeComponent
	}
	if other.TopicComponent != "" {
		c.TopicComponent = other.TopicComponent
	}
	return c
}

// LoadFlowsFile reads and parses a YAML flow file.
func LoadFlowsFile(path string) (*FlowsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flows file: %w", err)
	}

	var file FlowsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse flows file %s: %w", path, err)
	}
	return &file, nil
}
