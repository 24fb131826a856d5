package domain

import "slices"

// UntitledExercise is the title given to exercises whose marker carried none.
const UntitledExercise = "Untitled Exercise"

// ExerciseRecord is one structured exercise card extracted from generated text.
type ExerciseRecord struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Focus       string   `json:"focus"`
	Description string   `json:"description"`
	Prompt      string   `json:"prompt"`
	Guidelines  []string `json:"guidelines"`
}

// Clone returns a copy that shares no slices with the receiver.
func (e ExerciseRecord) Clone() ExerciseRecord {
	e.Guidelines = slices.Clone(e.Guidelines)
	if e.Guidelines == nil {
		e.Guidelines = []string{}
	}
	return e
}
