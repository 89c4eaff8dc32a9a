// Package store owns the single application state snapshot and the linear
// undo/redo history over it. Every mutation builds a brand-new AppState,
// funnels it through one change-recording choke point that discards
// structural no-ops, and leaves the previous snapshot untouched.
package store

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ldi/taskmaster/internal/recurrence"
	"github.com/ldi/taskmaster/pkg/models"
)

// DefaultHistoryLimit caps the undo stack. The redo stack is implicitly
// bounded by it since redo entries only come from undone past entries.
const DefaultHistoryLimit = 100

// Store is the exclusive owner of the current AppState and its history.
// All mutations are total: invalid arguments (unknown ids, out-of-range
// indices) are silent no-ops rather than errors.
type Store struct {
	hist     history
	now      func() time.Time
	onChange func(models.AppState)
}

type Option func(*Store)

// WithHistoryLimit caps the number of undoable transitions kept. Zero
// means unbounded.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.hist.limit = n }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(initial models.AppState, opts ...Option) *Store {
	s := &Store{
		hist: history{present: initial, limit: DefaultHistoryLimit},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetOnChange registers a hook invoked after every installed state
// transition, including undo and redo. The hook is best-effort from the
// store's perspective; it cannot veto or roll back the transition.
func (s *Store) SetOnChange(fn func(models.AppState)) {
	s.onChange = fn
}

// State returns the current snapshot. Callers must treat it as read-only.
func (s *Store) State() models.AppState { return s.hist.present }

func (s *Store) Tasks() []models.Task   { return s.hist.present.Tasks }
func (s *Store) Events() []models.Event { return s.hist.present.Events }
func (s *Store) Tags() []models.Tag     { return s.hist.present.Tags }

func (s *Store) CanUndo() bool { return s.hist.canUndo() }
func (s *Store) CanRedo() bool { return s.hist.canRedo() }

// Undo reverts the most recent transition. Reports whether anything changed.
func (s *Store) Undo() bool {
	if !s.hist.undo() {
		return false
	}
	s.notify()
	return true
}

// Redo re-applies the most recently undone transition.
func (s *Store) Redo() bool {
	if !s.hist.redo() {
		return false
	}
	s.notify()
	return true
}

func (s *Store) record(next models.AppState) {
	if s.hist.record(next) {
		s.notify()
	}
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange(s.hist.present)
	}
}

// --- tasks ---

// AddTask inserts a new task, assigning a fresh id and timestamps, and
// returns the stored record.
func (s *Store) AddTask(t models.Task) models.Task {
	now := s.now()
	t = t.Clone()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = models.TaskStatusTodo
	}

	cur := s.hist.present
	cur.Tasks = append(slices.Clone(cur.Tasks), t)
	s.record(cur)
	return t
}

// UpdateTask applies a patch to the task with the given id and stamps
// UpdatedAt.
func (s *Store) UpdateTask(id string, patch TaskPatch) {
	cur := s.hist.present
	idx := taskIndex(cur.Tasks, id)
	if idx < 0 {
		return
	}
	t := patch.apply(cur.Tasks[idx])
	t.UpdatedAt = s.now()

	tasks := slices.Clone(cur.Tasks)
	tasks[idx] = t
	cur.Tasks = tasks
	s.record(cur)
}

// DeleteTask removes the task. Steps are embedded and tag references are
// weak, so nothing else cascades.
func (s *Store) DeleteTask(id string) {
	cur := s.hist.present
	if taskIndex(cur.Tasks, id) < 0 {
		return
	}
	cur.Tasks = slices.DeleteFunc(slices.Clone(cur.Tasks), func(t models.Task) bool {
		return t.ID == id
	})
	s.record(cur)
}

// MoveTask reassigns the task's status and reinserts it at targetIndex
// within the tasks sharing the new status. A nil targetIndex appends at the
// end of that status group; out-of-range indices are clamped.
func (s *Store) MoveTask(id string, status models.TaskStatus, targetIndex *int) {
	cur := s.hist.present
	idx := taskIndex(cur.Tasks, id)
	if idx < 0 {
		return
	}

	moved := cur.Tasks[idx].Clone()
	moved.Status = status
	moved.UpdatedAt = s.now()

	remaining := slices.Delete(slices.Clone(cur.Tasks), idx, idx+1)
	if targetIndex == nil {
		cur.Tasks = append(remaining, moved)
		s.record(cur)
		return
	}

	inStatus := 0
	for _, t := range remaining {
		if t.Status == status {
			inStatus++
		}
	}
	pos := min(max(*targetIndex, 0), inStatus)

	// Insert before the pos-th task of the target status group, or at the
	// global end when the position is past the group.
	insertAt := len(remaining)
	seen := 0
	for i, t := range remaining {
		if t.Status != status {
			continue
		}
		if seen == pos {
			insertAt = i
			break
		}
		seen++
	}

	cur.Tasks = slices.Insert(remaining, insertAt, moved)
	s.record(cur)
}

// ReorderTasks moves the task at sourceIndex to targetIndex within the
// status-scoped subsequence, preserving the group's positions in the
// overall collection. Out-of-range indices make the call a no-op.
func (s *Store) ReorderTasks(status models.TaskStatus, sourceIndex, targetIndex int) {
	cur := s.hist.present

	var positions []int
	for i, t := range cur.Tasks {
		if t.Status == status {
			positions = append(positions, i)
		}
	}
	if sourceIndex < 0 || sourceIndex >= len(positions) ||
		targetIndex < 0 || targetIndex >= len(positions) {
		return
	}

	group := make([]models.Task, len(positions))
	for i, p := range positions {
		group[i] = cur.Tasks[p]
	}
	moved := group[sourceIndex]
	group = slices.Delete(group, sourceIndex, sourceIndex+1)
	group = slices.Insert(group, targetIndex, moved)

	tasks := slices.Clone(cur.Tasks)
	for i, p := range positions {
		tasks[p] = group[i]
	}
	cur.Tasks = tasks
	s.record(cur)
}

// --- steps ---

// AddStep appends a step to the task's sequence, assigning a fresh id.
// The returned bool is false when the task does not exist.
func (s *Store) AddStep(taskID string, step models.TaskStep) (models.TaskStep, bool) {
	cur := s.hist.present
	idx := taskIndex(cur.Tasks, taskID)
	if idx < 0 {
		return models.TaskStep{}, false
	}

	step.ID = uuid.NewString()
	t := cur.Tasks[idx].Clone()
	t.Steps = append(t.Steps, step)
	t.UpdatedAt = s.now()

	tasks := slices.Clone(cur.Tasks)
	tasks[idx] = t
	cur.Tasks = tasks
	s.record(cur)
	return step, true
}

func (s *Store) UpdateStep(taskID, stepID string, patch StepPatch) {
	s.withSteps(taskID, func(steps []models.TaskStep) ([]models.TaskStep, bool) {
		for i, st := range steps {
			if st.ID == stepID {
				steps[i] = patch.apply(st)
				return steps, true
			}
		}
		return nil, false
	})
}

func (s *Store) DeleteStep(taskID, stepID string) {
	s.withSteps(taskID, func(steps []models.TaskStep) ([]models.TaskStep, bool) {
		for i, st := range steps {
			if st.ID == stepID {
				return slices.Delete(steps, i, i+1), true
			}
		}
		return nil, false
	})
}

// ReorderSteps moves the step at sourceIndex to targetIndex within the
// task's sequence. Out-of-range indices make the call a no-op.
func (s *Store) ReorderSteps(taskID string, sourceIndex, targetIndex int) {
	s.withSteps(taskID, func(steps []models.TaskStep) ([]models.TaskStep, bool) {
		if sourceIndex < 0 || sourceIndex >= len(steps) ||
			targetIndex < 0 || targetIndex >= len(steps) {
			return nil, false
		}
		moved := steps[sourceIndex]
		steps = slices.Delete(steps, sourceIndex, sourceIndex+1)
		return slices.Insert(steps, targetIndex, moved), true
	})
}

// withSteps applies fn to a copy of the task's step sequence and records
// the transition when fn reports a change, stamping UpdatedAt.
func (s *Store) withSteps(taskID string, fn func([]models.TaskStep) ([]models.TaskStep, bool)) {
	cur := s.hist.present
	idx := taskIndex(cur.Tasks, taskID)
	if idx < 0 {
		return
	}

	steps, changed := fn(slices.Clone(cur.Tasks[idx].Steps))
	if !changed {
		return
	}

	t := cur.Tasks[idx].Clone()
	t.Steps = steps
	t.UpdatedAt = s.now()

	tasks := slices.Clone(cur.Tasks)
	tasks[idx] = t
	cur.Tasks = tasks
	s.record(cur)
}

// --- task/tag membership ---

// AddTagToTask adds the tag id to the task's set. Already-present ids make
// the call a no-op, so the set never holds duplicates.
func (s *Store) AddTagToTask(taskID, tagID string) {
	cur := s.hist.present
	idx := taskIndex(cur.Tasks, taskID)
	if idx < 0 || slices.Contains(cur.Tasks[idx].TagIDs, tagID) {
		return
	}

	t := cur.Tasks[idx].Clone()
	t.TagIDs = append(t.TagIDs, tagID)
	t.UpdatedAt = s.now()

	tasks := slices.Clone(cur.Tasks)
	tasks[idx] = t
	cur.Tasks = tasks
	s.record(cur)
}

func (s *Store) RemoveTagFromTask(taskID, tagID string) {
	cur := s.hist.present
	idx := taskIndex(cur.Tasks, taskID)
	if idx < 0 || !slices.Contains(cur.Tasks[idx].TagIDs, tagID) {
		return
	}

	t := cur.Tasks[idx].Clone()
	t.TagIDs = removeString(t.TagIDs, tagID)
	t.UpdatedAt = s.now()

	tasks := slices.Clone(cur.Tasks)
	tasks[idx] = t
	cur.Tasks = tasks
	s.record(cur)
}

// --- tags ---

func (s *Store) AddTag(t models.Tag) models.Tag {
	t.ID = uuid.NewString()
	cur := s.hist.present
	cur.Tags = append(slices.Clone(cur.Tags), t)
	s.record(cur)
	return t
}

func (s *Store) UpdateTag(id string, patch TagPatch) {
	cur := s.hist.present
	idx := slices.IndexFunc(cur.Tags, func(t models.Tag) bool { return t.ID == id })
	if idx < 0 {
		return
	}
	tags := slices.Clone(cur.Tags)
	tags[idx] = patch.apply(tags[idx])
	cur.Tags = tags
	s.record(cur)
}

// DeleteTag removes the tag and, in the same transition, strips its id
// from every referencing task and event, so one undo restores all of it.
func (s *Store) DeleteTag(id string) {
	cur := s.hist.present
	idx := slices.IndexFunc(cur.Tags, func(t models.Tag) bool { return t.ID == id })
	if idx < 0 {
		return
	}

	tasks := slices.Clone(cur.Tasks)
	for i, t := range tasks {
		if slices.Contains(t.TagIDs, id) {
			nt := t.Clone()
			nt.TagIDs = removeString(nt.TagIDs, id)
			tasks[i] = nt
		}
	}

	events := slices.Clone(cur.Events)
	for i, e := range events {
		if slices.Contains(e.TagIDs, id) {
			ne := e.Clone()
			ne.TagIDs = removeString(ne.TagIDs, id)
			events[i] = ne
		}
	}

	cur.Tasks = tasks
	cur.Events = events
	cur.Tags = slices.Delete(slices.Clone(cur.Tags), idx, idx+1)
	s.record(cur)
}

// --- events ---

// AddEvent inserts the base event and, when it carries an active
// recurrence, all generated instances in the same transition.
func (s *Store) AddEvent(e models.Event) models.Event {
	e = e.Clone()
	e.ID = uuid.NewString()

	cur := s.hist.present
	events := append(slices.Clone(cur.Events), e)
	if e.Recurrence.Active() {
		events = append(events, recurrence.Expand(e, *e.Recurrence)...)
	}
	cur.Events = events
	s.record(cur)
	return e
}

// UpdateEvent regenerates recurrence: existing generated instances of the
// event are removed, the patch is applied to the base, and a still-active
// rule re-expands from scratch. Per-instance customizations made to the
// old generated instances are discarded by the regeneration.
func (s *Store) UpdateEvent(id string, patch EventPatch) {
	cur := s.hist.present
	if slices.IndexFunc(cur.Events, func(e models.Event) bool { return e.ID == id }) < 0 {
		return
	}

	var updated models.Event
	events := make([]models.Event, 0, len(cur.Events))
	for _, e := range cur.Events {
		if e.ParentEventID == id {
			continue
		}
		if e.ID == id {
			e = patch.apply(e)
			updated = e
		}
		events = append(events, e)
	}

	// Generated instances never act as recurrence roots themselves.
	if updated.ParentEventID == "" && updated.Recurrence.Active() {
		events = append(events, recurrence.Expand(updated, *updated.Recurrence)...)
	}

	cur.Events = events
	s.record(cur)
}

// DeleteEvent removes the event and every generated instance whose
// ParentEventID matches it in the same transition. Deleting a single
// generated instance removes only that record.
func (s *Store) DeleteEvent(id string) {
	cur := s.hist.present
	if slices.IndexFunc(cur.Events, func(e models.Event) bool { return e.ID == id }) < 0 {
		return
	}
	cur.Events = slices.DeleteFunc(slices.Clone(cur.Events), func(e models.Event) bool {
		return e.ID == id || e.ParentEventID == id
	})
	s.record(cur)
}

// MoveEvent changes the event's start date; multi-day events keep their
// span length by shifting EndDate by the same delta. Moving a generated
// instance moves only that record, never its siblings or base.
func (s *Store) MoveEvent(id, newDate string) {
	start, err := models.ParseDate(newDate)
	if err != nil {
		return
	}

	cur := s.hist.present
	idx := slices.IndexFunc(cur.Events, func(e models.Event) bool { return e.ID == id })
	if idx < 0 {
		return
	}

	e := cur.Events[idx].Clone()
	if e.MultiDay() {
		e.EndDate = models.FormatDate(start.AddDate(0, 0, e.DurationDays()))
	}
	e.Date = newDate

	events := slices.Clone(cur.Events)
	events[idx] = e
	cur.Events = events
	s.record(cur)
}

// --- helpers ---

func taskIndex(tasks []models.Task, id string) int {
	return slices.IndexFunc(tasks, func(t models.Task) bool { return t.ID == id })
}

func removeString(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(s string) bool { return s == id })
}
