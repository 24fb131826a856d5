package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/containerd/errdefs"
)

// Accepted intake values.
var (
	AgeGroups = []string{"10-13", "14-16", "17-18"}
	Audiences = []string{"peers", "younger students"}
)

// ErrInvalidIntake is returned when an intake form fails validation.
var ErrInvalidIntake = fmt.Errorf("invalid intake form: %w", errdefs.ErrInvalidArgument)

// IntakeForm is the learner profile submitted before scenario generation.
type IntakeForm struct {
	FullName     string `json:"full_name"`
	AgeGroup     string `json:"age_group"`
	Interests    string `json:"interests"`
	CulturalRefs string `json:"cultural_refs"`
	Hardest      string `json:"hardest"`
	Audience     string `json:"audience"`

	// Extra holds any additional keys the client sent; they travel with the
	// form data but never override the named fields.
	Extra map[string]any `json:"-"`
}

// UnmarshalJSON decodes the named fields and keeps unknown keys in Extra.
func (f *IntakeForm) UnmarshalJSON(data []byte) error {
	type plain IntakeForm
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range intakeKeys {
		delete(all, key)
	}

	*f = IntakeForm(p)
	if len(all) > 0 {
		f.Extra = all
	}
	return nil
}

var intakeKeys = []string{"full_name", "age_group", "interests", "cultural_refs", "hardest", "audience"}

// Validate checks the form and normalizes Hardest in place.
func (f *IntakeForm) Validate() error {
	var errs []error

	if strings.TrimSpace(f.FullName) == "" {
		errs = append(errs, errors.New("full_name is required"))
	}
	if !slices.Contains(AgeGroups, f.AgeGroup) {
		errs = append(errs, fmt.Errorf("age_group must be one of %v, got %q", AgeGroups, f.AgeGroup))
	}

	hardest, err := normalizeHardest(f.Hardest)
	if err != nil {
		errs = append(errs, err)
	} else {
		f.Hardest = hardest
	}

	if f.Audience != "" && !slices.Contains(Audiences, f.Audience) {
		errs = append(errs, fmt.Errorf("audience must be 'peers' or 'younger students', got %q", f.Audience))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidIntake, errors.Join(errs...))
	}
	return nil
}

func normalizeHardest(v string) (string, error) {
	switch v {
	case "", "Analyzing", "Producing", "Analyzing Text", "Producing Text":
		return v, nil
	}
	switch {
	case strings.Contains(v, "Analyzing"):
		return "Analyzing", nil
	case strings.Contains(v, "Producing"):
		return "Producing", nil
	}
	return "", fmt.Errorf("hardest must be 'Analyzing' or 'Producing', got %q", v)
}

// ToMap flattens the form into the opaque mapping stored on a Session.
func (f *IntakeForm) ToMap() map[string]any {
	out := make(map[string]any, len(intakeKeys)+len(f.Extra))
	maps.Copy(out, f.Extra)
	out["full_name"] = f.FullName
	out["age_group"] = f.AgeGroup
	out["interests"] = f.Interests
	out["cultural_refs"] = f.CulturalRefs
	out["hardest"] = f.Hardest
	out["audience"] = f.Audience
	return out
}
