package parser

import (
	"github.com/ashureev/writebot/internal/domain"
)

// Result is the outcome of parsing one backend response.
type Result struct {
	// Text is the normalized response text everything else was cut from.
	Text string
	// Scenario is the preamble before the first exercise marker, or the
	// whole text when no marker was found.
	Scenario string
	// Exercises holds the records that passed validation, in source order.
	Exercises []domain.ExerciseRecord
	// MarkerFound reports whether Split located an exercise boundary.
	MarkerFound bool
	// Skipped lists the chunks Validate dropped and why.
	Skipped []error
}

// ParseScenarioAndExercises runs the full pipeline over a raw response.
func ParseScenarioAndExercises(raw any) Result {
	return ParseText(Normalize(raw))
}

// ParseText runs the pipeline over already normalized text.
//
// When no marker separates scenario from exercises, the whole text is kept
// as scenario and is also searched for embedded exercises, so exercise text
// may appear in both.
func ParseText(text string) Result {
	scenario, block, found := Split(text)
	if !found {
		block = text
	}

	records, skipped := validate(ParseBlock(block))
	return Result{
		Text:        text,
		Scenario:    scenario,
		Exercises:   records,
		MarkerFound: found,
		Skipped:     skipped,
	}
}
