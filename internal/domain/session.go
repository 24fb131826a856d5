// Package domain contains core domain types for the WriteBot onboarding API.
package domain

import (
	"slices"
	"time"
)

// Session threads learner state across the submit-form, generate-scenario
// and start-exercise requests.
type Session struct {
	SessionID  string           `json:"session_id"`
	CreatedAt  time.Time        `json:"created_at"`
	FormData   map[string]any   `json:"form_data"`
	Scenario   *string          `json:"scenario"`
	Exercises  []ExerciseRecord `json:"exercises"`
	Assessment map[string]any   `json:"assessment"`
	FocusAreas []string         `json:"focus_areas"`
}

// HasFormData reports whether an intake form has been stored on the session.
func (s *Session) HasFormData() bool {
	return len(s.FormData) > 0
}

// ScenarioText returns the stored scenario or an empty string.
func (s *Session) ScenarioText() string {
	if s.Scenario == nil {
		return ""
	}
	return *s.Scenario
}

// Clone returns a deep copy, nested maps and slices included, so callers
// can read it without holding a lock.
func (s *Session) Clone() Session {
	out := *s
	if s.FormData != nil {
		out.FormData = CloneMap(s.FormData)
	}
	if s.Scenario != nil {
		scenario := *s.Scenario
		out.Scenario = &scenario
	}
	if s.Exercises != nil {
		out.Exercises = make([]ExerciseRecord, len(s.Exercises))
		for i, ex := range s.Exercises {
			out.Exercises[i] = ex.Clone()
		}
	}
	if s.Assessment != nil {
		out.Assessment = CloneMap(s.Assessment)
	}
	out.FocusAreas = slices.Clone(s.FocusAreas)
	return out
}

// CloneMap copies m along with every map and slice nested in it. Other
// values are decoded JSON scalars and are shared as is.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
