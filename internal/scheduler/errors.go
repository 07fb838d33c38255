package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// ErrPolicyViolation marks a completion attempted outside its allowed
// window. Callers match it with errors.Is to show a specific "not yet
// available" message instead of a generic storage error.
var ErrPolicyViolation = errors.New("completion outside allowed window")

// PolicyViolationError carries the details of a rejected completion.
// It matches ErrPolicyViolation under errors.Is.
type PolicyViolationError struct {
	TaskID      string
	ScheduledAt time.Time
	Now         time.Time
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("task %s: completion at %s not allowed for occurrence scheduled %s",
		e.TaskID, e.Now.Format(time.RFC3339), e.ScheduledAt.Format(time.RFC3339))
}

func (e *PolicyViolationError) Is(target error) bool { return target == ErrPolicyViolation }
