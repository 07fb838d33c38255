package schedule

import (
	"fmt"
	"time"
)

// Rule is the closed union of recurrence rules. The concrete types are
// Daily, Weekly, Monthly and Once; nothing else implements it.
type Rule interface {
	isRule()
	validate() error
}

// Daily repeats every calendar day at a fixed local time.
type Daily struct {
	Hour   int
	Minute int
}

// Weekly repeats on one weekday (Sunday=0) at a fixed local time.
type Weekly struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// Monthly repeats on one day of the month at a fixed local time.
// Months that lack the day (e.g. day 31 in April) produce no occurrence
// and do not consume an occurrence index.
type Monthly struct {
	DayOfMonth int
	Hour       int
	Minute     int
}

// Once fires at a single absolute timestamp. The schedule's start/end
// bounds do not apply beyond that one date.
type Once struct {
	Date time.Time
}

func (Daily) isRule()   {}
func (Weekly) isRule()  {}
func (Monthly) isRule() {}
func (Once) isRule()    {}

func (r Daily) validate() error { return validHM(r.Hour, r.Minute) }

func (r Weekly) validate() error {
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return fmt.Errorf("weekday out of range: %d", int(r.Weekday))
	}
	return validHM(r.Hour, r.Minute)
}

func (r Monthly) validate() error {
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return fmt.Errorf("dayOfMonth out of range: %d", r.DayOfMonth)
	}
	return validHM(r.Hour, r.Minute)
}

func (r Once) validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("once rule needs a date")
	}
	return nil
}

func validHM(h, m int) error {
	if h < 0 || h > 23 {
		return fmt.Errorf("hour out of range: %d", h)
	}
	if m < 0 || m > 59 {
		return fmt.Errorf("minute out of range: %d", m)
	}
	return nil
}
