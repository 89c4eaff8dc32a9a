package models

import (
	"slices"
	"time"
)

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

// EventRecurrence describes how a base event repeats. At most one of
// EndDate/Occurrences is the effective termination condition; unset bounds
// default to 10 occurrences and one year after the base date.
type EventRecurrence struct {
	Type        RecurrenceType `json:"type"`
	Interval    int            `json:"interval"` // every N days/weeks/months/years
	EndDate     string         `json:"endDate,omitempty"`
	Occurrences int            `json:"occurrences,omitempty"`
}

// Active reports whether the rule actually generates instances.
func (r *EventRecurrence) Active() bool {
	return r != nil && r.Type != "" && r.Type != RecurrenceNone
}

type Event struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Date          string           `json:"date"`              // start, yyyy-MM-dd
	EndDate       string           `json:"endDate,omitempty"` // set iff IsMultiDay
	StartTime     string           `json:"startTime,omitempty"`
	EndTime       string           `json:"endTime,omitempty"`
	IsAllDay      bool             `json:"isAllDay,omitempty"`
	IsMultiDay    bool             `json:"isMultiDay,omitempty"`
	IsGraded      bool             `json:"isGraded"`
	Grade         string           `json:"grade,omitempty"`
	TagIDs        []string         `json:"tags"`
	Recurrence    *EventRecurrence `json:"recurrence,omitempty"`
	ParentEventID string           `json:"parentEventId,omitempty"` // set on generated instances
	Color         string           `json:"color,omitempty"`
}

// MultiDay reports whether the event spans more than one calendar day.
func (e Event) MultiDay() bool {
	return e.IsMultiDay && e.EndDate != ""
}

// Span returns the effective date range [start, end] of the event. For
// single-day events both bounds are the start date.
func (e Event) Span() (start, end time.Time, err error) {
	start, err = ParseDate(e.Date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !e.MultiDay() {
		return start, start, nil
	}
	end, err = ParseDate(e.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// DurationDays returns the span length in whole days (0 for single-day
// events or malformed dates).
func (e Event) DurationDays() int {
	start, end, err := e.Span()
	if err != nil {
		return 0
	}
	return DaysBetween(start, end)
}

// Clone returns a copy whose TagIDs and Recurrence do not share memory with
// the receiver.
func (e Event) Clone() Event {
	e.TagIDs = slices.Clone(e.TagIDs)
	if e.Recurrence != nil {
		r := *e.Recurrence
		e.Recurrence = &r
	}
	return e
}
