package store

import (
	"context"
	"encoding/json"

	"agenda/internal/schedule"
)

// State is the full persisted record: task definitions plus completion
// outcomes. Occurrences never appear here; they are derived.
type State struct {
	Tasks    []schedule.Task    `json:"tasks"`
	Outcomes []schedule.Outcome `json:"outcomes"`
}

// Clone copies the state one level deep. Elements are value types, so
// replacing (not mutating) entries in a clone leaves the original
// untouched.
func (s State) Clone() State {
	cp := State{}
	if s.Tasks != nil {
		cp.Tasks = make([]schedule.Task, len(s.Tasks))
		copy(cp.Tasks, s.Tasks)
	}
	if s.Outcomes != nil {
		cp.Outcomes = make([]schedule.Outcome, len(s.Outcomes))
		copy(cp.Outcomes, s.Outcomes)
	}
	return cp
}

// LoadState reads and decodes the state blob under key.
//
// A missing blob yields an empty state and a nil error. A read failure
// or corrupt blob ALSO yields an empty, usable state; the returned
// *ReadError is informational so the caller can warn. A broken local
// record must never block startup.
func LoadState(ctx context.Context, kv KV, key string) (State, error) {
	if kv == nil {
		return State{}, nil
	}
	blob, ok, err := kv.Get(ctx, key)
	if err != nil {
		return State{}, &ReadError{Key: key, Err: err}
	}
	if !ok {
		return State{}, nil
	}
	var st State
	if err := json.Unmarshal(blob, &st); err != nil {
		return State{}, &ReadError{Key: key, Err: err}
	}
	return st, nil
}

// SaveState encodes and writes the full state blob under key.
// Failures propagate as *WriteError.
func SaveState(ctx context.Context, kv KV, key string, st State) error {
	if kv == nil {
		return nil
	}
	blob, err := json.Marshal(st)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	if err := kv.Put(ctx, key, blob); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}
