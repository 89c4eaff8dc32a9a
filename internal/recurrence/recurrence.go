// Package recurrence turns a base calendar event plus a recurrence rule
// into a bounded list of generated event instances.
package recurrence

import (
	"time"

	"github.com/google/uuid"

	"github.com/ldi/taskmaster/pkg/models"
)

const (
	// defaultMaxOccurrences bounds generation when the rule gives no
	// occurrence count.
	defaultMaxOccurrences = 10
	// defaultSpanYears bounds generation when the rule gives no end date.
	defaultSpanYears = 1
)

// Expand generates the recurring instances of base according to rule. The
// base date itself is not re-emitted; the returned instances cover
// iterations 1..N in ascending date order, each with a fresh id and
// ParentEventID pointing at base. Both bounds are always active: the
// occurrence count (default 10) and the inclusive end date (default one
// year after the base date), whichever is hit first.
func Expand(base models.Event, rule models.EventRecurrence) []models.Event {
	if !rule.Active() {
		return nil
	}

	start, err := models.ParseDate(base.Date)
	if err != nil {
		return nil
	}

	maxOccurrences := rule.Occurrences
	if maxOccurrences <= 0 {
		maxOccurrences = defaultMaxOccurrences
	}

	end := addMonthsClamped(start, 12*defaultSpanYears)
	if rule.EndDate != "" {
		if d, err := models.ParseDate(rule.EndDate); err == nil {
			end = d
		}
	}

	interval := rule.Interval
	if interval <= 0 {
		interval = 1
	}

	duration := 0
	if base.MultiDay() {
		duration = base.DurationDays()
	}

	var instances []models.Event
	current := start
	for count := 0; count < maxOccurrences && !current.After(end); count++ {
		// Iteration 0 is the base event the caller already holds.
		if count > 0 {
			inst := base.Clone()
			inst.ID = uuid.NewString()
			inst.Date = models.FormatDate(current)
			inst.EndDate = ""
			if base.IsMultiDay && duration > 0 {
				inst.EndDate = models.FormatDate(current.AddDate(0, 0, duration))
			}
			inst.ParentEventID = base.ID
			instances = append(instances, inst)
		}
		current = step(current, rule.Type, interval)
	}

	return instances
}

func step(t time.Time, typ models.RecurrenceType, interval int) time.Time {
	switch typ {
	case models.RecurrenceDaily:
		return t.AddDate(0, 0, interval)
	case models.RecurrenceWeekly:
		return t.AddDate(0, 0, 7*interval)
	case models.RecurrenceMonthly:
		return addMonthsClamped(t, interval)
	case models.RecurrenceYearly:
		return addMonthsClamped(t, 12*interval)
	}
	return t
}

// addMonthsClamped advances t by the given number of months, clamping the
// day to the last day of the target month (Jan 31 + 1 month = Feb 28/29)
// rather than normalizing into the following month.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}
