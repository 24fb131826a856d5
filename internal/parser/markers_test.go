package parser

import (
	"strings"
	"testing"
)

func TestSplitHeadingMarkers(t *testing.T) {
	t.Parallel()

	text := "Intro line\n\n### Exercise 2: **Alpha**\nbody a\n### Exercise 5: **Beta**\nbody b\n### Exercise 1: **Gamma**\nbody c"

	scenario, block, found := Split(text)
	if !found {
		t.Fatal("expected a marker to be found")
	}
	if scenario != "Intro line" {
		t.Errorf("scenario = %q", scenario)
	}
	if !strings.HasPrefix(block, "### Exercise 2") {
		t.Errorf("block does not start at first marker: %q", block)
	}

	chunks := ParseBlock(block)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	wantIDs := []int{2, 5, 1}
	wantTitles := []string{"Alpha", "Beta", "Gamma"}
	for i, chunk := range chunks {
		if chunk[KeyID] != wantIDs[i] {
			t.Errorf("chunk %d id = %v, want %d", i, chunk[KeyID], wantIDs[i])
		}
		if chunk[KeyTitle] != wantTitles[i] {
			t.Errorf("chunk %d title = %v, want %s", i, chunk[KeyTitle], wantTitles[i])
		}
	}
}

func TestSplitScenarioHasNoMarkers(t *testing.T) {
	t.Parallel()

	texts := []string{
		"Welcome!\n### Exercise 1: **One**\nx\n### Exercise 2: **Two**\ny",
		"Hello\n**Exercise 1: Bold**\nbody",
		"Hi there\nExercise 1: Plain\nbody\nExercise 2: Again\nmore",
	}
	for _, text := range texts {
		scenario, _, found := Split(text)
		if !found {
			t.Fatalf("expected marker in %q", text)
		}
		if _, _, again := Split(scenario); again {
			t.Errorf("scenario %q still contains a marker", scenario)
		}
	}
}

func TestSplitConventions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		wantScenario string
		wantTitles   []string
	}{
		{
			name:         "bold inline",
			text:         "Hi\n**Exercise 1: Poem**\nWrite it\n**Exercise 2: Story**\nTell it",
			wantScenario: "Hi",
			wantTitles:   []string{"Poem", "Story"},
		},
		{
			name:         "bare line",
			text:         "Hello there\nExercise 1: Story time\nDo it\nExercise 2: Haiku\nDo that",
			wantScenario: "Hello there",
			wantTitles:   []string{"Story time", "Haiku"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			scenario, block, found := Split(tt.text)
			if !found {
				t.Fatal("expected a marker")
			}
			if scenario != tt.wantScenario {
				t.Errorf("scenario = %q, want %q", scenario, tt.wantScenario)
			}
			chunks := ParseBlock(block)
			if len(chunks) != len(tt.wantTitles) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tt.wantTitles))
			}
			for i, chunk := range chunks {
				if chunk[KeyTitle] != tt.wantTitles[i] {
					t.Errorf("chunk %d title = %v, want %s", i, chunk[KeyTitle], tt.wantTitles[i])
				}
			}
		})
	}
}

func TestSplitPriorityStopsAtFirstMatchingPattern(t *testing.T) {
	t.Parallel()

	text := "Opening\n**Exercise 9: Early**\nnotes\n### Exercise 1: **Heading**\nbody"
	scenario, block, found := Split(text)
	if !found {
		t.Fatal("expected a marker")
	}
	if scenario != "Opening\n**Exercise 9: Early**\nnotes" {
		t.Errorf("scenario = %q", scenario)
	}
	if block != "### Exercise 1: **Heading**\nbody" {
		t.Errorf("block = %q", block)
	}
}

func TestSplitNoMarker(t *testing.T) {
	t.Parallel()

	text := "  Just a friendly greeting.  "
	scenario, block, found := Split(text)
	if found {
		t.Fatal("did not expect a marker")
	}
	if scenario != text {
		t.Errorf("scenario = %q, want full text", scenario)
	}
	if block != "" {
		t.Errorf("block = %q, want empty", block)
	}
}
