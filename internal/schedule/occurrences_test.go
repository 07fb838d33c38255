package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func TestDailyBoundary(t *testing.T) {
	t.Parallel()
	s := Schedule{
		StartDate:  at(2024, 1, 1, 0, 0),
		Recurrence: Daily{Hour: 9, Minute: 0},
	}
	occs := s.Occurrences(at(2024, 1, 1, 0, 0), at(2024, 1, 3, 23, 59))
	require.Len(t, occs, 3)
	for i, occ := range occs {
		assert.Equal(t, i, occ.Index)
		assert.Equal(t, at(2024, 1, 1+i, 9, 0), occ.ScheduledAt)
	}
}

func TestDailyStartTimeAlreadyPassed(t *testing.T) {
	t.Parallel()
	// Schedule starts at 10:00; the 09:00 slot on the start day is gone.
	s := Schedule{
		StartDate:  at(2024, 1, 1, 10, 0),
		Recurrence: Daily{Hour: 9, Minute: 0},
	}
	occs := s.Occurrences(at(2024, 1, 1, 0, 0), at(2024, 1, 2, 23, 59))
	require.Len(t, occs, 1)
	assert.Equal(t, at(2024, 1, 2, 9, 0), occs[0].ScheduledAt)
	assert.Equal(t, 0, occs[0].Index)
}

func TestDailyEndDateExclusive(t *testing.T) {
	t.Parallel()
	s := Schedule{
		StartDate:  at(2024, 1, 1, 0, 0),
		EndDate:    datePtr(at(2024, 1, 5, 0, 0)),
		Recurrence: Daily{Hour: 9, Minute: 0},
	}
	occs := s.Occurrences(at(2024, 1, 1, 0, 0), at(2024, 1, 31, 23, 59))
	require.Len(t, occs, 4)
	assert.Equal(t, at(2024, 1, 4, 9, 0), occs[len(occs)-1].ScheduledAt)
}

func TestDailyWindowEndInclusive(t *testing.T) {
	t.Parallel()
	s := Schedule{
		StartDate:  at(2024, 1, 1, 0, 0),
		Recurrence: Daily{Hour: 9, Minute: 0},
	}
	occs := s.Occurrences(at(2024, 1, 1, 0, 0), at(2024, 1, 2, 9, 0))
	require.Len(t, occs, 2)
	assert.Equal(t, at(2024, 1, 2, 9, 0), occs[1].ScheduledAt)
}

func TestIndexStableAcrossWindows(t *testing.T) {
	t.Parallel()
	s := Schedule{
		StartDate:  at(2024, 1, 1, 0, 0),
		Recurrence: Daily{Hour: 9, Minute: 0},
	}
	a := s.Occurrences(at(2024, 1, 3, 0, 0), at(2024, 1, 5, 23, 59))
	b := s.Occurrences(at(2024, 1, 4, 0, 0), at(2024, 1, 8, 23, 59))

	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	// The window filters; it does not renumber.
	assert.Equal(t, 2, a[0].Index) // Jan 3 is the third occurrence
	byDate := map[time.Time]int{}
	for _, occ := range a {
		byDate[occ.ScheduledAt] = occ.Index
	}
	for _, occ := range b {
		if idx, ok := byDate[occ.ScheduledAt]; ok {
			assert.Equal(t, idx, occ.Index, "index mismatch at %v", occ.ScheduledAt)
		}
	}
}

func TestWeeklyMondayFilter(t *testing.T) {
	t.Parallel()
	s := Schedule{
		StartDate:  at(2024, 1, 1, 0, 0), // Jan 1 2024 is a Monday
		Recurrence: Weekly{Weekday: time.Monday, Hour: 10, Minute: 30},
	}
	occs := s.Occurrences(at(2024, 1, 1, 0, 0), at(2024, 1, 31, 23, 59))
	require.Len(t, occs, 5)
	prev := time.Time{}
	for i, occ := range occs {
		assert.Equal(t, time.Monday, occ.ScheduledAt.Weekday())
		assert.Equal(t, 10, occ.ScheduledAt.Hour())
		assert.Equal(t, 30, occ.ScheduledAt.Minute())
		assert.Equal(t, i, occ.Index)
		assert.True(t, occ.ScheduledAt.After(prev))
		prev = occ.ScheduledAt
	}
}

func TestWeeklyAlignsForwardFromStart(t *testing.T) {
	t.Parallel()
	// Start Wednesday Jan 3; first Monday occurrence is Jan 8, index 0.
	s := Schedule{
		StartDate:  at(2024, 1, 3, 0, 0),
		Recurrence: Weekly{Weekday: time.Monday, Hour: 8, Minute: 0},
	}
	occs := s.Occurrences(at(2024, 1, 1, 0, 0), at(2024, 1, 14, 23, 59))
	require.Len(t, occs, 1)
	assert.Equal(t, at(2024, 1, 8, 8, 0), occs[0].ScheduledAt)
	assert.Equal(t, 0, occs[0].Index)
}

func TestWeeklySameDayTimePassedPushesWeek(t *testing.T) {
	t.Parallel()
	// Start Monday 12:00 with a 10:30 slot: that Monday is gone.
	s := Schedule{
		StartDate:  at(2024, 1, 1, 12, 0),
		Recurrence: Weekly{Weekday: time.Monday, Hour: 10, Minute: 30},
	}
	occs := s.Occurrences(at(2024, 1, 1, 0, 0), at(2024, 1, 10, 0, 0))
	require.Len(t, occs, 1)
	assert.Equal(t, at(2024, 1, 8, 10, 30), occs[0].ScheduledAt)
}

func TestMonthlySkipsShortMonths(t *testing.T) {
	t.Parallel()
	s := Schedule{
		StartDate:  at(2024, 1, 1, 0, 0),
		Recurrence: Monthly{DayOfMonth: 31, Hour: 12, Minute: 0},
	}
	occs := s.Occurrences(at(2024, 1, 1, 0, 0), at(2024, 5, 31, 23, 59))
	// Feb and Apr 2024 have no 31st; skipped months consume no index.
	require.Len(t, occs, 3)
	assert.Equal(t, at(2024, 1, 31, 12, 0), occs[0].ScheduledAt)
	assert.Equal(t, at(2024, 3, 31, 12, 0), occs[1].ScheduledAt)
	assert.Equal(t, at(2024, 5, 31, 12, 0), occs[2].ScheduledAt)
	assert.Equal(t, []int{0, 1, 2}, []int{occs[0].Index, occs[1].Index, occs[2].Index})
}

func TestMonthlyDayBeforeStartNotCounted(t *testing.T) {
	t.Parallel()
	// Start Jan 15 with a day-10 rule: Jan 10 precedes the schedule and
	// must not exist in the sequence at all.
	s := Schedule{
		StartDate:  at(2024, 1, 15, 0, 0),
		Recurrence: Monthly{DayOfMonth: 10, Hour: 9, Minute: 0},
	}
	occs := s.Occurrences(at(2024, 1, 1, 0, 0), at(2024, 3, 31, 23, 59))
	require.Len(t, occs, 2)
	assert.Equal(t, at(2024, 2, 10, 9, 0), occs[0].ScheduledAt)
	assert.Equal(t, 0, occs[0].Index)
}

func TestOnceInclusionBounds(t *testing.T) {
	t.Parallel()
	date := at(2024, 6, 15, 14, 0)
	s := Schedule{Recurrence: Once{Date: date}}

	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"inside", at(2024, 6, 1, 0, 0), at(2024, 6, 30, 0, 0), 1},
		{"exactly at window start", date, at(2024, 6, 30, 0, 0), 1},
		{"exactly at window end", at(2024, 6, 1, 0, 0), date, 1},
		{"before window", date.Add(time.Minute), at(2024, 6, 30, 0, 0), 0},
		{"after window", at(2024, 6, 1, 0, 0), date.Add(-time.Minute), 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			occs := s.Occurrences(tt.from, tt.to)
			require.Len(t, occs, tt.want)
			if tt.want == 1 {
				assert.Equal(t, 0, occs[0].Index)
				assert.Equal(t, date, occs[0].ScheduledAt)
			}
		})
	}
}

func TestOccurrencesDeterministic(t *testing.T) {
	t.Parallel()
	s := Schedule{
		StartDate:  at(2024, 1, 1, 0, 0),
		Recurrence: Weekly{Weekday: time.Friday, Hour: 18, Minute: 15},
	}
	from, to := at(2024, 1, 1, 0, 0), at(2024, 12, 31, 23, 59)
	first := s.Occurrences(from, to)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, s.Occurrences(from, to))
	}
}

func TestEmptyAndInvertedWindows(t *testing.T) {
	t.Parallel()
	s := Schedule{
		StartDate:  at(2024, 1, 1, 0, 0),
		Recurrence: Daily{Hour: 9, Minute: 0},
	}
	assert.Nil(t, s.Occurrences(at(2024, 1, 2, 0, 0), at(2024, 1, 1, 0, 0)))
	assert.Nil(t, s.Occurrences(at(2023, 1, 1, 0, 0), at(2023, 12, 31, 0, 0)))
	assert.Nil(t, Schedule{}.Occurrences(at(2024, 1, 1, 0, 0), at(2024, 1, 2, 0, 0)))
}
