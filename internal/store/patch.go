package store

import (
	"slices"

	"github.com/ldi/taskmaster/pkg/models"
)

// Patch structs carry partial updates with an explicit merge rule: a
// non-nil field replaces the entity's value, a nil field retains it. Slice
// fields follow the same rule, so an empty non-nil slice clears the
// collection.

type TaskPatch struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *string
	Steps       []models.TaskStep
	TagIDs      []string
}

func (p TaskPatch) apply(t models.Task) models.Task {
	t = t.Clone()
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Steps != nil {
		t.Steps = slices.Clone(p.Steps)
	}
	if p.TagIDs != nil {
		t.TagIDs = slices.Clone(p.TagIDs)
	}
	return t
}

type EventPatch struct {
	Title       *string
	Description *string
	Date        *string
	EndDate     *string
	StartTime   *string
	EndTime     *string
	IsAllDay    *bool
	IsMultiDay  *bool
	IsGraded    *bool
	Grade       *string
	TagIDs      []string
	Recurrence  *models.EventRecurrence
	Color       *string
}

func (p EventPatch) apply(e models.Event) models.Event {
	e = e.Clone()
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.EndDate != nil {
		e.EndDate = *p.EndDate
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.IsAllDay != nil {
		e.IsAllDay = *p.IsAllDay
	}
	if p.IsMultiDay != nil {
		e.IsMultiDay = *p.IsMultiDay
	}
	if p.IsGraded != nil {
		e.IsGraded = *p.IsGraded
	}
	if p.Grade != nil {
		e.Grade = *p.Grade
	}
	if p.TagIDs != nil {
		e.TagIDs = slices.Clone(p.TagIDs)
	}
	if p.Recurrence != nil {
		r := *p.Recurrence
		e.Recurrence = &r
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	return e
}

type TagPatch struct {
	Name  *string
	Color *string
}

func (p TagPatch) apply(t models.Tag) models.Tag {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	return t
}

type StepPatch struct {
	Text      *string
	Completed *bool
}

func (p StepPatch) apply(s models.TaskStep) models.TaskStep {
	if p.Text != nil {
		s.Text = *p.Text
	}
	if p.Completed != nil {
		s.Completed = *p.Completed
	}
	return s
}
