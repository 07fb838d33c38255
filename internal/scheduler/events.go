package scheduler

import (
	"context"
	"sort"
	"time"

	"agenda/internal/schedule"
	"agenda/pkg/logx"
)

// QueryEvents materializes every task's occurrences inside [from, to]
// and joins them with recorded outcomes. The result is sorted ascending
// by scheduled time across all tasks; same-instant events keep stored
// task order (stable sort), so the output is deterministic for a fixed
// state. Pure read, no I/O.
func (s *Service) QueryEvents(from, to time.Time) []schedule.Event {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	outcomes := make(map[string]schedule.Outcome, len(st.Outcomes))
	for _, o := range st.Outcomes {
		outcomes[o.ID] = o
	}

	var events []schedule.Event
	for _, tk := range st.Tasks {
		for _, occ := range tk.Schedule.Occurrences(from, to) {
			ev := schedule.Event{Task: tk, Occurrence: occ}
			if o, ok := outcomes[schedule.OutcomeID(tk.ID, occ)]; ok {
				oc := o
				ev.Outcome = &oc
			}
			events = append(events, ev)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Occurrence.ScheduledAt.Before(events[j].Occurrence.ScheduledAt)
	})
	return events
}

// CompleteOptions tunes CompleteEvent.
type CompleteOptions struct {
	// Data is free-form completion payload (answers, measurements),
	// stored opaquely on the outcome.
	Data map[string]any
	// IgnorePolicy skips the completion-window check.
	IgnorePolicy bool
}

// CompleteEvent records a completion for the event's occurrence.
//
// Completion is idempotent: if an outcome already exists for the
// occurrence it is returned unchanged and nothing is written. Unless
// IgnorePolicy is set, the task's policy is evaluated against the
// current clock and a violation fails with a *PolicyViolationError
// before any mutation. Completing an event of a task that no longer
// exists is a no-op.
func (s *Service) CompleteEvent(ctx context.Context, ev schedule.Event, opt CompleteOptions) (schedule.Outcome, error) {
	id := ev.OutcomeID()

	s.mu.Lock()
	for _, o := range s.state.Outcomes {
		if o.ID == id {
			s.mu.Unlock()
			return o, nil
		}
	}

	known := false
	for _, tk := range s.state.Tasks {
		if tk.ID == ev.Task.ID {
			known = true
			break
		}
	}
	if !known {
		s.mu.Unlock()
		s.log.Debug("completion for unknown task ignored", logx.String("task", ev.Task.ID))
		return schedule.Outcome{}, nil
	}

	now := s.now()
	if !opt.IgnorePolicy {
		if pol := ev.Task.CompletionPolicy; pol != nil && !pol.Allows(ev.Occurrence.ScheduledAt, now) {
			s.mu.Unlock()
			return schedule.Outcome{}, &PolicyViolationError{
				TaskID:      ev.Task.ID,
				ScheduledAt: ev.Occurrence.ScheduledAt,
				Now:         now,
			}
		}
	}

	out := schedule.Outcome{ID: id, CompletedAt: now, Data: opt.Data}
	next := s.state.Clone()
	next.Outcomes = append(next.Outcomes, out)
	if err := s.saveLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return schedule.Outcome{}, err
	}
	s.state = next
	s.mu.Unlock()

	s.log.Debug("event completed", logx.String("outcome", id))
	s.publish(EventEventCompleted, Change{TaskID: ev.Task.ID, OutcomeID: id})
	return out, nil
}

// UncompleteEvent removes the outcome recorded for the event's
// occurrence. Absent outcome is a no-op, not an error; the policy
// never gates the back-transition.
func (s *Service) UncompleteEvent(ctx context.Context, ev schedule.Event) error {
	id := ev.OutcomeID()

	s.mu.Lock()
	next := s.state.Clone()
	n := 0
	found := false
	for _, o := range next.Outcomes {
		if o.ID == id {
			found = true
			continue
		}
		next.Outcomes[n] = o
		n++
	}
	if !found {
		s.mu.Unlock()
		return nil
	}
	next.Outcomes = next.Outcomes[:n]
	if err := s.saveLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.mu.Unlock()

	s.log.Debug("event uncompleted", logx.String("outcome", id))
	s.publish(EventEventUncompleted, Change{TaskID: ev.Task.ID, OutcomeID: id})
	return nil
}

// Stats summarizes completion over a window.
type Stats struct {
	Total          int
	Completed      int
	Pending        int
	CompletionRate float64 // percent; 0 when the window holds no events
}

// CompletionStats derives counts from QueryEvents over [from, to].
func (s *Service) CompletionStats(from, to time.Time) Stats {
	events := s.QueryEvents(from, to)
	st := Stats{Total: len(events)}
	for _, ev := range events {
		if ev.Completed() {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	if st.Total > 0 {
		st.CompletionRate = float64(st.Completed) / float64(st.Total) * 100
	}
	return st
}
