package schedule

import "time"

// Occurrence is one concrete, dated instance of a task's recurrence.
//
// Index is the zero-based ordinal within the task's own sequence,
// counted from the schedule's StartDate. Query windows only filter
// which occurrences are returned; they never shift the numbering, so
// the same calendar date always carries the same index across
// overlapping windows.
type Occurrence struct {
	ScheduledAt time.Time
	Index       int
}

// Occurrences expands the schedule into the ordered occurrences that
// fall inside [from, to] (both inclusive). EndDate, when set, is an
// exclusive upper bound on the sequence itself.
//
// Pure function: same inputs, same output, no clock access.
func (s Schedule) Occurrences(from, to time.Time) []Occurrence {
	if s.Recurrence == nil || to.Before(from) {
		return nil
	}

	switch r := s.Recurrence.(type) {
	case Once:
		if !r.Date.Before(from) && !r.Date.After(to) {
			return []Occurrence{{ScheduledAt: r.Date, Index: 0}}
		}
		return nil
	case Daily:
		return s.expandByDays(r.Hour, r.Minute, 1, from, to)
	case Weekly:
		return s.expandWeekly(r, from, to)
	case Monthly:
		return s.expandMonthly(r, from, to)
	}
	return nil
}

// expandByDays walks the sequence day by day from its first occurrence.
// stepDays is 1 for daily and 7 for weekly rules.
func (s Schedule) expandByDays(hour, minute, stepDays int, from, to time.Time) []Occurrence {
	start := s.StartDate
	y, m, d := start.Date()
	first := time.Date(y, m, d, hour, minute, 0, 0, start.Location())
	if first.Before(start) {
		// The time of day already passed on the start day.
		first = first.AddDate(0, 0, stepDays)
	}

	var out []Occurrence
	idx := 0
	for t := first; ; t = t.AddDate(0, 0, stepDays) {
		if s.EndDate != nil && !t.Before(*s.EndDate) {
			break
		}
		if t.After(to) {
			break
		}
		if !t.Before(from) {
			out = append(out, Occurrence{ScheduledAt: t, Index: idx})
		}
		idx++
	}
	return out
}

func (s Schedule) expandWeekly(r Weekly, from, to time.Time) []Occurrence {
	start := s.StartDate
	days := (int(r.Weekday) - int(start.Weekday()) + 7) % 7
	y, m, d := start.Date()
	first := time.Date(y, m, d+days, r.Hour, r.Minute, 0, 0, start.Location())
	if first.Before(start) {
		first = first.AddDate(0, 0, 7)
	}

	aligned := s
	aligned.StartDate = first
	return aligned.expandByDays(r.Hour, r.Minute, 7, from, to)
}

func (s Schedule) expandMonthly(r Monthly, from, to time.Time) []Occurrence {
	start := s.StartDate
	loc := start.Location()

	var out []Occurrence
	idx := 0
	y, m, _ := start.Date()
	for cur := time.Date(y, m, 1, 0, 0, 0, 0, loc); ; cur = cur.AddDate(0, 1, 0) {
		if cur.After(to) {
			break
		}
		if s.EndDate != nil && !cur.Before(*s.EndDate) {
			break
		}
		c := time.Date(cur.Year(), cur.Month(), r.DayOfMonth, r.Hour, r.Minute, 0, 0, loc)
		if c.Month() != cur.Month() {
			// time.Date normalized past the month: the day does not
			// exist in this month, so the month is skipped entirely.
			continue
		}
		if c.Before(start) {
			continue
		}
		if s.EndDate != nil && !c.Before(*s.EndDate) {
			break
		}
		if c.After(to) {
			break
		}
		if !c.Before(from) {
			out = append(out, Occurrence{ScheduledAt: c, Index: idx})
		}
		idx++
	}
	return out
}
