package parser

import (
	"regexp"
	"strings"
)

// marker is one textual convention for announcing an exercise. Every pattern
// captures the exercise number and its title.
type marker struct {
	name string
	re   *regexp.Regexp
}

// markers are tried in priority order; the first one with a match wins.
var markers = []marker{
	{name: "heading", re: regexp.MustCompile(`###\s*Exercise\s+(\d+):\s*\*\*([^*]+)\*\*`)},
	{name: "bold_inline", re: regexp.MustCompile(`\*\*Exercise\s+(\d+):\s*([^*]+)\*\*`)},
	{name: "bare_line", re: regexp.MustCompile(`(?:^|\n)\s*Exercise\s+(\d+):\s*([^\n*]+)`)},
}

// Split separates the scenario preamble from the exercise blocks. found is
// false when no marker matches anywhere; scenario is then the full text and
// exercises is empty.
func Split(text string) (scenario, exercises string, found bool) {
	for _, m := range markers {
		loc := m.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		return strings.TrimSpace(text[:loc[0]]), strings.TrimSpace(text[loc[0]:]), true
	}
	return text, "", false
}

