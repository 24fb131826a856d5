// Package session provides the process-scoped store that threads learner
// state across otherwise stateless requests.
package session

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ashureev/writebot/internal/domain"
	"github.com/containerd/errdefs"
	"github.com/google/uuid"
)

// Updatable field names.
const (
	FieldFormData   = "form_data"
	FieldScenario   = "scenario"
	FieldExercises  = "exercises"
	FieldAssessment = "assessment"
	FieldFocusAreas = "focus_areas"
)

var (
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = fmt.Errorf("session %w", errdefs.ErrNotFound)
	// ErrInvalidField is returned when a known field receives a value of the
	// wrong type.
	ErrInvalidField = fmt.Errorf("invalid session field: %w", errdefs.ErrInvalidArgument)
)

// Fields maps field names to new values for Update.
type Fields map[string]any

type setter func(s *domain.Session, v any) error

// setters is the allow-list of fields Update may change.
var setters = map[string]setter{
	FieldFormData: func(s *domain.Session, v any) error {
		m, ok := v.(map[string]any)
		if !ok && v != nil {
			return typeError(FieldFormData, v)
		}
		s.FormData = domain.CloneMap(m)
		return nil
	},
	FieldScenario: func(s *domain.Session, v any) error {
		switch t := v.(type) {
		case nil:
			s.Scenario = nil
		case string:
			s.Scenario = &t
		case *string:
			if t == nil {
				s.Scenario = nil
				return nil
			}
			scenario := *t
			s.Scenario = &scenario
		default:
			return typeError(FieldScenario, v)
		}
		return nil
	},
	FieldExercises: func(s *domain.Session, v any) error {
		records, ok := v.([]domain.ExerciseRecord)
		if !ok && v != nil {
			return typeError(FieldExercises, v)
		}
		if records == nil {
			s.Exercises = nil
			return nil
		}
		s.Exercises = make([]domain.ExerciseRecord, len(records))
		for i, r := range records {
			s.Exercises[i] = r.Clone()
		}
		return nil
	},
	FieldAssessment: func(s *domain.Session, v any) error {
		m, ok := v.(map[string]any)
		if !ok && v != nil {
			return typeError(FieldAssessment, v)
		}
		s.Assessment = domain.CloneMap(m)
		return nil
	},
	FieldFocusAreas: func(s *domain.Session, v any) error {
		areas, ok := v.([]string)
		if !ok && v != nil {
			return typeError(FieldFocusAreas, v)
		}
		if areas != nil {
			areas = append([]string(nil), areas...)
		}
		s.FocusAreas = areas
		return nil
	},
}

func typeError(field string, v any) error {
	return fmt.Errorf("%w: %s cannot hold %T", ErrInvalidField, field, v)
}

// UpdatableFields lists the field names Update applies, sorted.
func UpdatableFields() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Store keeps sessions in memory for the life of the process. Sessions are
// never evicted. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	now      func() time.Time
	newID    func() string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create allocates a session with a fresh identity and returns a snapshot.
func (s *Store) Create() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, taken := s.sessions[id]; !taken {
			break
		}
		id = s.newID()
	}

	sess := &domain.Session{
		SessionID: id,
		CreatedAt: s.now(),
	}
	s.sessions[id] = sess
	return sess.Clone()
}

// Get returns a snapshot of the session or ErrNotFound.
func (s *Store) Get(id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess.Clone(), nil
}

// Update applies the allow-listed fields and returns the new snapshot.
// Unknown field names are ignored. If any known field has a value of the
// wrong type nothing is applied and ErrInvalidField is returned.
func (s *Store) Update(id string, fields Fields) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := sess.Clone()
	for name, value := range fields {
		set, known := setters[name]
		if !known {
			slog.Debug("Ignoring unknown session field",
				"session_id", id,
				"field", name,
				"allowed", UpdatableFields())
			continue
		}
		if err := set(&next, value); err != nil {
			return domain.Session{}, err
		}
	}

	*sess = next
	return next.Clone(), nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
