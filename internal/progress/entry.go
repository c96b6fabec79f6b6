package progress

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	fieldExerciseName = "exercise_name"
	fieldStartedAt    = "started_at"
	fieldCompletedAt  = "completed_at"
	fieldStatus       = "status"
)

// ErrMissingIdentity is returned for an entry without exercise_name or started_at
var ErrMissingIdentity = errors.New("entry is missing exercise_name or started_at")

// Key identifies one attempt
type Key struct {
	ExerciseName string
	StartedAt    Timestamp
}

// Compare orders keys by exercise name, then by started_at
func (k Key) Compare(o Key) int {
	switch {
	case k.ExerciseName < o.ExerciseName:
		return -1
	case k.ExerciseName > o.ExerciseName:
		return 1
	}
	return k.StartedAt.Compare(o.StartedAt)
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.ExerciseName, k.StartedAt)
}

// Entry is one recorded attempt of an exercise.
// Fields other than the identity pair live in Extra, untouched.
type Entry struct {
	ExerciseName string
	StartedAt    Timestamp
	Extra        map[string]json.RawMessage
}

// Key returns the identity of the entry
func (e Entry) Key() Key {
	return Key{ExerciseName: e.ExerciseName, StartedAt: e.StartedAt}
}

// Validate checks that both identity fields are present
func (e Entry) Validate() error {
	if e.ExerciseName == "" || e.StartedAt.IsZero() {
		return ErrMissingIdentity
	}
	return nil
}

// Status returns the status field, or "" when absent
func (e Entry) Status() string {
	var s string
	if raw, ok := e.Extra[fieldStatus]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// CompletedAt returns the completed_at field as a timestamp.
// A missing or null value yields a zero timestamp.
func (e Entry) CompletedAt() Timestamp {
	var ts Timestamp
	if raw, ok := e.Extra[fieldCompletedAt]; ok {
		_ = ts.UnmarshalJSON(raw)
	}
	return ts
}

// MarshalJSON writes the entry as a flat object with keys in sorted order
func (e Entry) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(e.Extra)+2)
	for k, v := range e.Extra {
		fields[k] = v
	}
	name, err := json.Marshal(e.ExerciseName)
	if err != nil {
		return nil, err
	}
	started, err := e.StartedAt.MarshalJSON()
	if err != nil {
		return nil, err
	}
	fields[fieldExerciseName] = name
	fields[fieldStartedAt] = started
	return json.Marshal(fields)
}

// UnmarshalJSON reads a flat object. Both identity fields are required.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return ErrMissingIdentity
	}

	var entry Entry
	if raw, ok := fields[fieldExerciseName]; ok {
		if err := json.Unmarshal(raw, &entry.ExerciseName); err != nil {
			return fmt.Errorf("exercise_name: %w", err)
		}
	}
	if raw, ok := fields[fieldStartedAt]; ok {
		if err := entry.StartedAt.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("started_at: %w", err)
		}
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	delete(fields, fieldExerciseName)
	delete(fields, fieldStartedAt)
	if len(fields) > 0 {
		entry.Extra = fields
	}
	*e = entry
	return nil
}
