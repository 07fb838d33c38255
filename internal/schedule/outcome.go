package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Outcome is the persisted record that one occurrence was completed.
// Outcomes are created on completion and removed on un-completion;
// they are never mutated in place.
type Outcome struct {
	ID          string         `json:"id"`
	CompletedAt time.Time      `json:"completedAt"`
	Data        map[string]any `json:"data,omitempty"`
}

// OutcomeID derives the deterministic identity of an outcome from the
// task id and the occurrence it completes. Completing the same
// occurrence twice resolves to the same id, which is what makes
// completion idempotent.
//
// Task ids are opaque caller strings and may contain any character,
// including the separators used here, so the task-id component is
// length-prefixed. That keeps ownership checks exact: the id of task
// "a" can never be a prefix of an id derived from task "a#1".
func OutcomeID(taskID string, occ Occurrence) string {
	return ownerPrefix(taskID) + strconv.Itoa(occ.Index) + "@" + occ.ScheduledAt.UTC().Format(time.RFC3339)
}

// OutcomeOwnedBy reports whether an outcome id was derived from taskID.
// Used for cascade deletes when a task is removed.
func OutcomeOwnedBy(outcomeID, taskID string) bool {
	return strings.HasPrefix(outcomeID, ownerPrefix(taskID))
}

func ownerPrefix(taskID string) string {
	return strconv.Itoa(len(taskID)) + "#" + taskID + "#"
}

// Event is the read-only composition returned by queries: a task, one
// of its occurrences, and the recorded outcome if the occurrence has
// been completed. Events are assembled on every query, never stored.
type Event struct {
	Task       Task
	Occurrence Occurrence
	Outcome    *Outcome
}

func (e Event) Completed() bool { return e.Outcome != nil }

// OutcomeID is the identity an outcome for this event has (or would
// have, if the event is still pending).
func (e Event) OutcomeID() string { return OutcomeID(e.Task.ID, e.Occurrence) }
