package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ashureev/writebot/internal/domain"
)

// ErrMalformedExercise marks a chunk that could not become a record.
var ErrMalformedExercise = errors.New("malformed exercise")

// Validate coerces raw chunks into exercise records. Missing fields take
// defaults; a chunk whose id is not an integer is skipped without affecting
// the others.
func Validate(raw []RawExercise) []domain.ExerciseRecord {
	records, _ := validate(raw)
	return records
}

func validate(raw []RawExercise) ([]domain.ExerciseRecord, []error) {
	records := make([]domain.ExerciseRecord, 0, len(raw))
	var skipped []error
	for i, chunk := range raw {
		rec, err := toRecord(chunk)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("exercise %d: %w", i, err))
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

func toRecord(chunk RawExercise) (domain.ExerciseRecord, error) {
	id, err := coerceID(chunk[KeyID])
	if err != nil {
		return domain.ExerciseRecord{}, err
	}

	title, _ := chunk[KeyTitle].(string)
	if strings.TrimSpace(title) == "" {
		title = domain.UntitledExercise
	}

	return domain.ExerciseRecord{
		ID:          id,
		Title:       title,
		Focus:       stringField(chunk, KeyFocus),
		Description: stringField(chunk, KeyDescription),
		Prompt:      stringField(chunk, KeyPrompt),
		Guidelines:  guidelinesField(chunk[KeyGuidelines]),
	}, nil
}

func coerceID(v any) (int, error) {
	switch id := v.(type) {
	case nil:
		return 0, nil
	case int:
		return id, nil
	case int64:
		if id > math.MaxInt || id < math.MinInt {
			return 0, fmt.Errorf("%w: id %d out of range", ErrMalformedExercise, id)
		}
		return int(id), nil
	case float64:
		if id != math.Trunc(id) || id > math.MaxInt32 || id < math.MinInt32 {
			return 0, fmt.Errorf("%w: id %v is not an integer", ErrMalformedExercise, id)
		}
		return int(id), nil
	case json.Number:
		n, err := strconv.Atoi(id.String())
		if err != nil {
			return 0, fmt.Errorf("%w: id %q is not an integer", ErrMalformedExercise, id)
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return 0, fmt.Errorf("%w: id %q is not an integer", ErrMalformedExercise, id)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: id has type %T", ErrMalformedExercise, v)
	}
}

func stringField(chunk RawExercise, key string) string {
	s, _ := chunk[key].(string)
	return s
}

func guidelinesField(v any) []string {
	out := []string{}
	switch items := v.(type) {
	case []string:
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	case []any:
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
