package schedule

import (
	"fmt"
	"time"
)

// Policy is the closed union of completion policies. Concrete types are
// Anytime and Window.
type Policy interface {
	isPolicy()
	validate() error
	// Allows reports whether an occurrence scheduled at the given time
	// may be completed at now. Pure function of its inputs.
	Allows(scheduled, now time.Time) bool
}

// Anytime permits completion at any moment.
type Anytime struct{}

func (Anytime) isPolicy()                  {}
func (Anytime) validate() error            { return nil }
func (Anytime) Allows(_, _ time.Time) bool { return true }

// Window permits completion only while now falls inside
// [scheduled+StartOffsetMinutes, scheduled+EndOffsetMinutes], bounds
// inclusive. Offsets are signed, so a negative start opens the window
// before the scheduled time.
type Window struct {
	StartOffsetMinutes int
	EndOffsetMinutes   int
}

func (Window) isPolicy() {}

func (w Window) validate() error {
	if w.EndOffsetMinutes < w.StartOffsetMinutes {
		return fmt.Errorf("policy window ends before it starts (%d..%d)", w.StartOffsetMinutes, w.EndOffsetMinutes)
	}
	return nil
}

func (w Window) Allows(scheduled, now time.Time) bool {
	opens := scheduled.Add(time.Duration(w.StartOffsetMinutes) * time.Minute)
	closes := scheduled.Add(time.Duration(w.EndOffsetMinutes) * time.Minute)
	return !now.Before(opens) && !now.After(closes)
}
