package store

import (
	"time"

	"github.com/ldi/taskmaster/pkg/models"
)

// EventsForDate returns the events whose effective span covers the given
// calendar day. Time-of-day is ignored; multi-day spans are inclusive on
// both ends. Events with malformed dates never match.
func (s *Store) EventsForDate(date time.Time) []models.Event {
	day := truncateToDay(date)
	var out []models.Event
	for _, e := range s.hist.present.Events {
		start, end, err := e.Span()
		if err != nil {
			continue
		}
		if !day.Before(start) && !day.After(end) {
			out = append(out, e)
		}
	}
	return out
}

// EventsForDateRange returns the events whose span intersects
// [start, end], boundaries inclusive on both sides.
func (s *Store) EventsForDateRange(start, end time.Time) []models.Event {
	lo := truncateToDay(start)
	hi := truncateToDay(end)
	var out []models.Event
	for _, e := range s.hist.present.Events {
		evStart, evEnd, err := e.Span()
		if err != nil {
			continue
		}
		if !evStart.After(hi) && !evEnd.Before(lo) {
			out = append(out, e)
		}
	}
	return out
}

// TasksByStatus returns the tasks in the given status, in collection order.
func (s *Store) TasksByStatus(status models.TaskStatus) []models.Task {
	var out []models.Task
	for _, t := range s.hist.present.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Summary aggregates collection counts and history flags for status
// displays.
type Summary struct {
	Tasks         int                       `json:"tasks"`
	TasksByStatus map[models.TaskStatus]int `json:"tasksByStatus"`
	Events        int                       `json:"events"`
	Tags          int                       `json:"tags"`
	CanUndo       bool                      `json:"canUndo"`
	CanRedo       bool                      `json:"canRedo"`
}

func (s *Store) Summarize() Summary {
	st := s.hist.present
	byStatus := make(map[models.TaskStatus]int)
	for _, t := range st.Tasks {
		byStatus[t.Status]++
	}
	return Summary{
		Tasks:         len(st.Tasks),
		TasksByStatus: byStatus,
		Events:        len(st.Events),
		Tags:          len(st.Tags),
		CanUndo:       s.CanUndo(),
		CanRedo:       s.CanRedo(),
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
