package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// RawExercise keys.
const (
	KeyID          = "id"
	KeyTitle       = "title"
	KeyFocus       = "focus"
	KeyDescription = "description"
	KeyPrompt      = "prompt"
	KeyGuidelines  = "guidelines"
)

// RawExercise is one exercise chunk as extracted from text, before
// validation. Values are loosely typed; Validate coerces them.
type RawExercise map[string]any

// maxFocusBullets caps how many bullets after the focus line become a prompt.
const maxFocusBullets = 5

const bulletGlyph = "•"

// A bullet is a line starting with -, • or * followed by whitespace. The
// whitespace requirement keeps bold labels such as **What to include:** and
// separator rules out of bullet lists.
const bulletLine = `[ \t]*[-•*][ \t]+[^\n]+`

var (
	focusPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\*\*Focus:\*\*\s*([^\n]+)`),
		regexp.MustCompile(`\*\*Type:\*\*\s*([^\n]+)`),
		regexp.MustCompile(`Type:\s*([^\n]+)`),
	}

	bulletItemRe        = regexp.MustCompile(`(?m)^[ \t]*[-•*][ \t]+([^\n]+)`)
	promptsSectionRe    = regexp.MustCompile(`(?i)\*\*Prompts?:\*\*\s*\n((?:` + bulletLine + `\n?)+)`)
	promptsHeadingRe    = regexp.MustCompile(`(?i)\*\*Prompts?:\*\*`)
	singlePromptRe      = regexp.MustCompile(`\*\*(?:Your )?Prompt:\*\*\s*`)
	anyPromptLabelRe    = regexp.MustCompile(`(?i)\*\*(?:Your )?Prompts?:\*\*`)
	whatToIncludeRe     = regexp.MustCompile(`\*\*What to include:\*\*`)
	guidelinesSectionRe = regexp.MustCompile(`\*\*What to include:\*\*\s*\n((?:` + bulletLine + `\n?)+)`)
	boldBulletRe        = regexp.MustCompile(`(?m)^[ \t]*[-•][ \t]*\*\*`)

	blankRunRe    = regexp.MustCompile(`\n\s*\n+`)
	leadingRuleRe = regexp.MustCompile(`^---+\s*`)
	lineBulletRe  = regexp.MustCompile(`(?m)^[ \t]*[-•*][ \t]+`)
)

// ParseBlock splits exercise text into chunks and extracts the fields of
// each. Text before the first marker is dropped. It never fails; fields
// that cannot be found are left empty.
func ParseBlock(text string) []RawExercise {
	for _, m := range markers {
		matches := m.re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		chunks := make([]RawExercise, 0, len(matches))
		for i, loc := range matches {
			end := len(text)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			chunks = append(chunks, parseChunk(
				text[loc[2]:loc[3]],
				strings.TrimSpace(text[loc[4]:loc[5]]),
				strings.TrimSpace(text[loc[1]:end]),
			))
		}
		return chunks
	}
	return nil
}

func parseChunk(rawID, title, body string) RawExercise {
	var id any = rawID
	if n, err := strconv.Atoi(rawID); err == nil {
		id = n
	}

	focus, focusEnd := extractFocus(body)

	return RawExercise{
		KeyID:          id,
		KeyTitle:       title,
		KeyFocus:       focus,
		KeyDescription: extractDescription(body, focusEnd),
		KeyPrompt:      extractPrompt(body, focusEnd),
		KeyGuidelines:  extractGuidelines(body),
	}
}

// extractFocus returns the focus text and the offset just past its label
// line, or -1 when no focus label exists.
func extractFocus(body string) (string, int) {
	for _, re := range focusPatterns {
		if loc := re.FindStringSubmatchIndex(body); loc != nil {
			return strings.TrimSpace(body[loc[2]:loc[3]]), loc[1]
		}
	}
	return "", -1
}

func extractPrompt(body string, focusEnd int) string {
	if m := promptsSectionRe.FindStringSubmatch(body); m != nil {
		if items := bulletItems(m[1], -1); len(items) > 0 {
			return joinBullets(items)
		}
	}

	if prompt := singlePrompt(body); prompt != "" {
		return prompt
	}

	if focusEnd >= 0 {
		if items := bulletItems(body[focusEnd:], maxFocusBullets); len(items) > 0 {
			return joinBullets(items)
		}
	}

	var paragraphs []string
	for _, p := range strings.Split(body, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) >= 2 {
		return paragraphs[len(paragraphs)-1]
	}
	return ""
}

// singlePrompt captures the text after a **Prompt:** or **Your Prompt:**
// label up to the next blank line, bold-labelled line or end of chunk.
func singlePrompt(body string) string {
	loc := singlePromptRe.FindStringIndex(body)
	if loc == nil {
		return ""
	}

	lines := strings.Split(body[loc[1]:], "\n")
	if lines[0] == "" {
		return ""
	}
	kept := lines[:1]
	for _, line := range lines[1:] {
		if line == "" || strings.HasPrefix(line, "**") {
			break
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func extractDescription(body string, focusEnd int) string {
	start := max(focusEnd, 0)
	end := len(body)
	if loc := anyPromptLabelRe.FindStringIndex(body); loc != nil && loc[0] < end {
		end = loc[0]
	}
	if loc := whatToIncludeRe.FindStringIndex(body); loc != nil && loc[0] < end {
		end = loc[0]
	}

	var description string
	if start < end {
		description = strings.TrimSpace(body[start:end])
		description = blankRunRe.ReplaceAllString(description, " ")
		description = leadingRuleRe.ReplaceAllString(description, "")
		description = lineBulletRe.ReplaceAllString(description, "")
		description = strings.TrimSpace(description)
	}

	if description == "" && body != "" {
		if loc := boldBulletRe.FindStringIndex(body); loc != nil {
			description = strings.TrimSpace(body[:loc[0]])
		} else if loc := promptsHeadingRe.FindStringIndex(body); loc != nil {
			description = strings.TrimSpace(body[:loc[0]])
		}
	}
	return description
}

func extractGuidelines(body string) []string {
	m := guidelinesSectionRe.FindStringSubmatch(body)
	if m == nil {
		return []string{}
	}
	return bulletItems(m[1], -1)
}

// bulletItems returns the trimmed, non-empty bullet texts in s, at most
// limit of them when limit is positive.
func bulletItems(s string, limit int) []string {
	items := []string{}
	for _, m := range bulletItemRe.FindAllStringSubmatch(s, -1) {
		item := strings.TrimSpace(m[1])
		if item == "" {
			continue
		}
		items = append(items, item)
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items
}

func joinBullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = bulletGlyph + " " + item
	}
	return strings.Join(lines, "\n")
}
