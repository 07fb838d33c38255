package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies what kind of work a task represents.
type Category string

const (
	CategoryQuestionnaire Category = "questionnaire"
	CategoryTask          Category = "task"
	CategoryReminder      Category = "reminder"
	CategoryMeasurement   Category = "measurement"
)

// ParseCategory maps a raw string onto the closed category set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryQuestionnaire, CategoryTask, CategoryReminder, CategoryMeasurement:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Task is a recurring or one-time unit of work.
//
// ID is opaque, caller-assigned, and never regenerated. CreatedAt is
// stamped on first registration and preserved across updates to the
// same id.
type Task struct {
	ID               string
	Title            string
	Instructions     string
	Category         Category
	Schedule         Schedule
	CompletionPolicy Policy
	LinkedResourceID string
	CreatedAt        time.Time
}

// Schedule bounds a recurrence rule to a validity interval.
//
// EndDate is exclusive: a daily schedule ending four days after its
// start yields exactly four occurrences. A nil EndDate means open-ended.
type Schedule struct {
	StartDate  time.Time
	EndDate    *time.Time
	Recurrence Rule
}

// Validate checks a task definition for registration.
//
// Malformed rules are rejected here, not at evaluation time: the
// evaluator assumes it only ever sees rules that passed validation.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id required")
	}
	if _, err := ParseCategory(string(t.Category)); err != nil {
		return err
	}
	if t.Schedule.Recurrence == nil {
		return fmt.Errorf("task %s: recurrence required", t.ID)
	}
	if err := t.Schedule.Recurrence.validate(); err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}
	if _, ok := t.Schedule.Recurrence.(Once); !ok {
		if t.Schedule.StartDate.IsZero() {
			return fmt.Errorf("task %s: startDate required", t.ID)
		}
		if t.Schedule.EndDate != nil && !t.Schedule.EndDate.After(t.Schedule.StartDate) {
			return fmt.Errorf("task %s: endDate must be after startDate", t.ID)
		}
	}
	if t.CompletionPolicy == nil {
		return fmt.Errorf("task %s: completion policy required", t.ID)
	}
	if err := t.CompletionPolicy.validate(); err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}
	return nil
}
