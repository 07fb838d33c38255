package scheduler

import (
	"context"

	"agenda/internal/schedule"
	"agenda/pkg/logx"
)

// CreateOrUpdateTask upserts a task definition by id.
//
// Re-submitting an existing id replaces the definition but preserves
// the original CreatedAt; a brand-new id is stamped with the current
// time (unless the caller supplied one). The write is persisted before
// the in-memory state is swapped and listeners run.
func (s *Service) CreateOrUpdateTask(ctx context.Context, t schedule.Task) (schedule.Task, error) {
	if err := t.Validate(); err != nil {
		return schedule.Task{}, err
	}

	s.mu.Lock()
	next := s.state.Clone()
	replaced := false
	for i := range next.Tasks {
		if next.Tasks[i].ID == t.ID {
			t.CreatedAt = next.Tasks[i].CreatedAt
			next.Tasks[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
		next.Tasks = append(next.Tasks, t)
	}
	if err := s.saveLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return schedule.Task{}, err
	}
	s.state = next
	s.mu.Unlock()

	s.log.Debug("task upserted", logx.String("task", t.ID), logx.Bool("replaced", replaced))
	s.publish(EventTaskUpserted, Change{TaskID: t.ID})
	return t, nil
}

// DeleteTask removes a task and every outcome derived from it.
// Deleting an unknown id is a no-op, not an error.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	next := s.state.Clone()

	n := 0
	removed := false
	for _, tk := range next.Tasks {
		if tk.ID == id {
			removed = true
			continue
		}
		next.Tasks[n] = tk
		n++
	}
	next.Tasks = next.Tasks[:n]

	m := 0
	dropped := 0
	for _, o := range next.Outcomes {
		if schedule.OutcomeOwnedBy(o.ID, id) {
			dropped++
			continue
		}
		next.Outcomes[m] = o
		m++
	}
	next.Outcomes = next.Outcomes[:m]

	if !removed && dropped == 0 {
		s.mu.Unlock()
		return nil
	}
	if err := s.saveLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.mu.Unlock()

	s.log.Debug("task deleted", logx.String("task", id), logx.Int("outcomes_dropped", dropped))
	s.publish(EventTaskDeleted, Change{TaskID: id})
	return nil
}

// Tasks returns all live task definitions. Pure read, no I/O.
func (s *Service) Tasks() []schedule.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schedule.Task, len(s.state.Tasks))
	copy(out, s.state.Tasks)
	return out
}

// TaskByID returns one task definition. Pure read, no I/O.
func (s *Service) TaskByID(id string) (schedule.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tk := range s.state.Tasks {
		if tk.ID == id {
			return tk, true
		}
	}
	return schedule.Task{}, false
}

