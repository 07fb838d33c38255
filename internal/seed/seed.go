// Package seed builds task definitions from the compact string specs in
// the config file and applies them through the engine's ordinary upsert
// path. Seeding is idempotent: re-applying an entry replaces the
// definition but keeps its identity and CreatedAt.
package seed

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"agenda/internal/config"
	"agenda/internal/schedule"
	"agenda/pkg/logx"
)

// Upserter is the slice of the engine facade seeding needs.
type Upserter interface {
	CreateOrUpdateTask(ctx context.Context, t schedule.Task) (schedule.Task, error)
}

var (
	reHHMM = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

	weekdays = map[string]time.Weekday{
		"sun": time.Sunday, "sunday": time.Sunday,
		"mon": time.Monday, "monday": time.Monday,
		"tue": time.Tuesday, "tuesday": time.Tuesday,
		"wed": time.Wednesday, "wednesday": time.Wednesday,
		"thu": time.Thursday, "thursday": time.Thursday,
		"fri": time.Friday, "friday": time.Friday,
		"sat": time.Saturday, "saturday": time.Saturday,
	}
)

func parseHHMM(raw string) (hour, minute int, err error) {
	m := reHHMM.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time %q (use HH:MM like 09:00)", raw)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// ParseRepeat parses a recurrence spec:
//
//	daily@HH:MM
//	weekly:<weekday>@HH:MM    (mon..sun, short or full name)
//	monthly:<day>@HH:MM       (1..31)
//	once@<timestamp>          (RFC 3339, or 2006-01-02T15:04 in local time)
func ParseRepeat(raw string) (schedule.Rule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("repeat required")
	}
	low := strings.ToLower(s)

	switch {
	case strings.HasPrefix(low, "daily@"):
		h, m, err := parseHHMM(s[len("daily@"):])
		if err != nil {
			return nil, err
		}
		return schedule.Daily{Hour: h, Minute: m}, nil

	case strings.HasPrefix(low, "weekly:"):
		rest := s[len("weekly:"):]
		day, at, ok := strings.Cut(rest, "@")
		if !ok {
			return nil, fmt.Errorf("invalid repeat %q (use weekly:<day>@HH:MM)", raw)
		}
		wd, ok := weekdays[strings.ToLower(strings.TrimSpace(day))]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", day)
		}
		h, m, err := parseHHMM(at)
		if err != nil {
			return nil, err
		}
		return schedule.Weekly{Weekday: wd, Hour: h, Minute: m}, nil

	case strings.HasPrefix(low, "monthly:"):
		rest := s[len("monthly:"):]
		day, at, ok := strings.Cut(rest, "@")
		if !ok {
			return nil, fmt.Errorf("invalid repeat %q (use monthly:<day>@HH:MM)", raw)
		}
		dom, err := strconv.Atoi(strings.TrimSpace(day))
		if err != nil || dom < 1 || dom > 31 {
			return nil, fmt.Errorf("invalid day of month %q", day)
		}
		h, m, err := parseHHMM(at)
		if err != nil {
			return nil, err
		}
		return schedule.Monthly{DayOfMonth: dom, Hour: h, Minute: m}, nil

	case strings.HasPrefix(low, "once@"):
		v := strings.TrimSpace(s[len("once@"):])
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return schedule.Once{Date: ts}, nil
		}
		ts, err := time.ParseInLocation("2006-01-02T15:04", v, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q (use RFC 3339 or 2006-01-02T15:04)", v)
		}
		return schedule.Once{Date: ts}, nil
	}

	return nil, fmt.Errorf(
		"invalid repeat %q (use daily@09:00, weekly:mon@10:30, monthly:15@08:00, or once@2024-06-01T14:00)",
		raw)
}

// ParsePolicy parses a completion-policy spec: "anytime" (or empty) or
// "window:<start>..<end>" with offsets in minutes relative to the
// scheduled time, e.g. "window:0..180" or "window:-60..60".
func ParsePolicy(raw string) (schedule.Policy, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "" || s == "anytime":
		return schedule.Anytime{}, nil
	case strings.HasPrefix(s, "window:"):
		lo, hi, ok := strings.Cut(s[len("window:"):], "..")
		if !ok {
			return nil, fmt.Errorf("invalid policy %q (use window:<start>..<end>)", raw)
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid window start %q", lo)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid window end %q", hi)
		}
		return schedule.Window{StartOffsetMinutes: start, EndOffsetMinutes: end}, nil
	}
	return nil, fmt.Errorf("invalid policy %q (use anytime or window:0..180)", raw)
}

func parseDate(field, raw string) (time.Time, error) {
	ts, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q (use YYYY-MM-DD)", field, raw)
	}
	return ts, nil
}

// Build converts one catalog entry into a validated task. A missing id
// gets a fresh UUID, which makes the entry non-idempotent across runs;
// catalogs meant to be reapplied should pin ids.
func Build(e config.SeedEntry) (schedule.Task, error) {
	rule, err := ParseRepeat(e.Repeat)
	if err != nil {
		return schedule.Task{}, fmt.Errorf("seed %q: %w", e.Title, err)
	}
	pol, err := ParsePolicy(e.Policy)
	if err != nil {
		return schedule.Task{}, fmt.Errorf("seed %q: %w", e.Title, err)
	}
	cat, err := schedule.ParseCategory(e.Category)
	if err != nil {
		return schedule.Task{}, fmt.Errorf("seed %q: %w", e.Title, err)
	}

	t := schedule.Task{
		ID:               strings.TrimSpace(e.ID),
		Title:            strings.TrimSpace(e.Title),
		Instructions:     e.Instructions,
		Category:         cat,
		LinkedResourceID: e.LinkedResource,
		CompletionPolicy: pol,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	t.Schedule.Recurrence = rule
	if e.Start != "" {
		start, err := parseDate("start", e.Start)
		if err != nil {
			return schedule.Task{}, fmt.Errorf("seed %q: %w", e.Title, err)
		}
		t.Schedule.StartDate = start
	}
	if e.End != "" {
		end, err := parseDate("end", e.End)
		if err != nil {
			return schedule.Task{}, fmt.Errorf("seed %q: %w", e.Title, err)
		}
		t.Schedule.EndDate = &end
	}

	if err := t.Validate(); err != nil {
		return schedule.Task{}, fmt.Errorf("seed %q: %w", e.Title, err)
	}
	return t, nil
}

// Apply upserts every entry, continuing past individual failures so one
// bad catalog line doesn't block the rest. It returns the number of
// tasks applied and the first error encountered.
func Apply(ctx context.Context, up Upserter, entries []config.SeedEntry, log logx.Logger) (int, error) {
	var firstErr error
	applied := 0
	for _, e := range entries {
		t, err := Build(e)
		if err == nil {
			_, err = up.CreateOrUpdateTask(ctx, t)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if !log.IsZero() {
				log.Warn("seed entry skipped", logx.String("title", e.Title), logx.Err(err))
			}
			continue
		}
		applied++
	}
	return applied, firstErr
}
