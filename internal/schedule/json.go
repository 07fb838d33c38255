package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire shapes for the persisted blob. The recurrence and policy unions
// keep a "type" discriminant; numeric fields are pointers so a zero
// hour/minute/offset survives the round trip.

const (
	ruleTypeDaily   = "daily"
	ruleTypeWeekly  = "weekly"
	ruleTypeMonthly = "monthly"
	ruleTypeOnce    = "once"

	policyTypeAnytime = "anytime"
	policyTypeWindow  = "window"
)

type ruleJSON struct {
	Type       string     `json:"type"`
	Hour       *int       `json:"hour,omitempty"`
	Minute     *int       `json:"minute,omitempty"`
	Weekday    *int       `json:"weekday,omitempty"`
	DayOfMonth *int       `json:"dayOfMonth,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
}

func encodeRule(r Rule) (ruleJSON, error) {
	switch v := r.(type) {
	case Daily:
		return ruleJSON{Type: ruleTypeDaily, Hour: intPtr(v.Hour), Minute: intPtr(v.Minute)}, nil
	case Weekly:
		wd := int(v.Weekday)
		return ruleJSON{Type: ruleTypeWeekly, Weekday: &wd, Hour: intPtr(v.Hour), Minute: intPtr(v.Minute)}, nil
	case Monthly:
		return ruleJSON{Type: ruleTypeMonthly, DayOfMonth: intPtr(v.DayOfMonth), Hour: intPtr(v.Hour), Minute: intPtr(v.Minute)}, nil
	case Once:
		d := v.Date
		return ruleJSON{Type: ruleTypeOnce, Date: &d}, nil
	case nil:
		return ruleJSON{}, fmt.Errorf("recurrence missing")
	}
	return ruleJSON{}, fmt.Errorf("unknown recurrence type %T", r)
}

func (j ruleJSON) decode() (Rule, error) {
	switch j.Type {
	case ruleTypeDaily:
		return Daily{Hour: intVal(j.Hour), Minute: intVal(j.Minute)}, nil
	case ruleTypeWeekly:
		return Weekly{Weekday: time.Weekday(intVal(j.Weekday)), Hour: intVal(j.Hour), Minute: intVal(j.Minute)}, nil
	case ruleTypeMonthly:
		return Monthly{DayOfMonth: intVal(j.DayOfMonth), Hour: intVal(j.Hour), Minute: intVal(j.Minute)}, nil
	case ruleTypeOnce:
		if j.Date == nil {
			return nil, fmt.Errorf("once recurrence without date")
		}
		return Once{Date: *j.Date}, nil
	}
	return nil, fmt.Errorf("unknown recurrence type %q", j.Type)
}

type policyJSON struct {
	Type               string `json:"type"`
	StartOffsetMinutes *int   `json:"startOffsetMinutes,omitempty"`
	EndOffsetMinutes   *int   `json:"endOffsetMinutes,omitempty"`
}

func encodePolicy(p Policy) (policyJSON, error) {
	switch v := p.(type) {
	case Anytime:
		return policyJSON{Type: policyTypeAnytime}, nil
	case Window:
		return policyJSON{
			Type:               policyTypeWindow,
			StartOffsetMinutes: intPtr(v.StartOffsetMinutes),
			EndOffsetMinutes:   intPtr(v.EndOffsetMinutes),
		}, nil
	case nil:
		return policyJSON{}, fmt.Errorf("completion policy missing")
	}
	return policyJSON{}, fmt.Errorf("unknown policy type %T", p)
}

func (j policyJSON) decode() (Policy, error) {
	switch j.Type {
	case policyTypeAnytime:
		return Anytime{}, nil
	case policyTypeWindow:
		return Window{
			StartOffsetMinutes: intVal(j.StartOffsetMinutes),
			EndOffsetMinutes:   intVal(j.EndOffsetMinutes),
		}, nil
	}
	return nil, fmt.Errorf("unknown policy type %q", j.Type)
}

type scheduleJSON struct {
	StartDate  time.Time  `json:"startDate"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Recurrence ruleJSON   `json:"recurrence"`
}

func (s Schedule) MarshalJSON() ([]byte, error) {
	rj, err := encodeRule(s.Recurrence)
	if err != nil {
		return nil, err
	}
	return json.Marshal(scheduleJSON{StartDate: s.StartDate, EndDate: s.EndDate, Recurrence: rj})
}

func (s *Schedule) UnmarshalJSON(b []byte) error {
	var j scheduleJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	r, err := j.Recurrence.decode()
	if err != nil {
		return err
	}
	s.StartDate = j.StartDate
	s.EndDate = j.EndDate
	s.Recurrence = r
	return nil
}

type taskJSON struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Instructions     string     `json:"instructions,omitempty"`
	Category         Category   `json:"category"`
	Schedule         Schedule   `json:"schedule"`
	CompletionPolicy policyJSON `json:"completionPolicy"`
	LinkedResourceID string     `json:"linkedResourceId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	pj, err := encodePolicy(t.CompletionPolicy)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taskJSON{
		ID:               t.ID,
		Title:            t.Title,
		Instructions:     t.Instructions,
		Category:         t.Category,
		Schedule:         t.Schedule,
		CompletionPolicy: pj,
		LinkedResourceID: t.LinkedResourceID,
		CreatedAt:        t.CreatedAt,
	})
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var j taskJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	p, err := j.CompletionPolicy.decode()
	if err != nil {
		return err
	}
	t.ID = j.ID
	t.Title = j.Title
	t.Instructions = j.Instructions
	t.Category = j.Category
	t.Schedule = j.Schedule
	t.CompletionPolicy = p
	t.LinkedResourceID = j.LinkedResourceID
	t.CreatedAt = j.CreatedAt
	return nil
}

func intPtr(v int) *int { return &v }

func intVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
