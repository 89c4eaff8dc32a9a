package models

import (
	"slices"
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "inProgress"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// TaskStep is owned by its parent task and has no independent lifecycle.
type TaskStep struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     string       `json:"dueDate,omitempty"` // calendar date, yyyy-MM-dd
	Steps       []TaskStep   `json:"steps"`
	TagIDs      []string     `json:"tags"` // weak references to Tag.ID
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Clone returns a copy whose Steps and TagIDs do not share backing arrays
// with the receiver.
func (t Task) Clone() Task {
	t.Steps = slices.Clone(t.Steps)
	t.TagIDs = slices.Clone(t.TagIDs)
	return t
}
