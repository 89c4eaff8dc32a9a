package store

import (
	"slices"
	"testing"
	"time"

	"github.com/ldi/taskmaster/pkg/models"
)

func newTestStore() *Store {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return New(models.AppState{}, WithClock(func() time.Time {
		t0 = t0.Add(time.Second)
		return t0
	}))
}

func taskTitles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func eventDates(events []models.Event) []string {
	var out []string
	for _, e := range events {
		out = append(out, e.Date)
	}
	slices.Sort(out)
	return out
}

func TestAddTask(t *testing.T) {
	s := newTestStore()

	created := s.AddTask(models.Task{Title: "Write report", Priority: models.TaskPriorityHigh})

	if created.ID == "" {
		t.Error("expected a fresh id")
	}
	if created.Status != models.TaskStatusTodo {
		t.Errorf("expected default status todo, got %s", created.Status)
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Error("expected CreatedAt and UpdatedAt set to the same instant")
	}
	if len(s.Tasks()) != 1 || s.Tasks()[0].ID != created.ID {
		t.Errorf("expected task stored, got %+v", s.Tasks())
	}
}

func TestUpdateTaskMergesPatch(t *testing.T) {
	s := newTestStore()
	created := s.AddTask(models.Task{
		Title:       "Write report",
		Description: "quarterly numbers",
		Priority:    models.TaskPriorityLow,
	})

	title := "Write Q1 report"
	s.UpdateTask(created.ID, TaskPatch{Title: &title})

	got := s.Tasks()[0]
	if got.Title != title {
		t.Errorf("expected title replaced, got %q", got.Title)
	}
	if got.Description != "quarterly numbers" {
		t.Errorf("expected absent field retained, got %q", got.Description)
	}
	if got.Priority != models.TaskPriorityLow {
		t.Errorf("expected priority retained, got %s", got.Priority)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) {
		t.Error("expected UpdatedAt stamped")
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore()
	a := s.AddTask(models.Task{Title: "A"})
	s.AddTask(models.Task{Title: "B"})

	s.DeleteTask(a.ID)

	if got := taskTitles(s.Tasks()); len(got) != 1 || got[0] != "B" {
		t.Errorf("expected only B, got %v", got)
	}
}

func TestMoveTaskAppendsByDefault(t *testing.T) {
	s := newTestStore()
	a := s.AddTask(models.Task{Title: "A", Status: models.TaskStatusTodo})
	s.AddTask(models.Task{Title: "B", Status: models.TaskStatusInProgress})

	s.MoveTask(a.ID, models.TaskStatusInProgress, nil)

	got := s.TasksByStatus(models.TaskStatusInProgress)
	if want := []string{"B", "A"}; !slices.Equal(taskTitles(got), want) {
		t.Errorf("expected %v, got %v", want, taskTitles(got))
	}
	if got[len(got)-1].Status != models.TaskStatusInProgress {
		t.Errorf("expected status reassigned, got %s", got[len(got)-1].Status)
	}
}

func TestMoveTaskAtIndex(t *testing.T) {
	s := newTestStore()
	s.AddTask(models.Task{Title: "A", Status: models.TaskStatusInProgress})
	s.AddTask(models.Task{Title: "B", Status: models.TaskStatusInProgress})
	c := s.AddTask(models.Task{Title: "C", Status: models.TaskStatusTodo})

	idx := 1
	s.MoveTask(c.ID, models.TaskStatusInProgress, &idx)

	got := taskTitles(s.TasksByStatus(models.TaskStatusInProgress))
	if want := []string{"A", "C", "B"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMoveTaskClampsIndex(t *testing.T) {
	s := newTestStore()
	s.AddTask(models.Task{Title: "A", Status: models.TaskStatusInProgress})
	c := s.AddTask(models.Task{Title: "C", Status: models.TaskStatusTodo})

	idx := 99
	s.MoveTask(c.ID, models.TaskStatusInProgress, &idx)

	got := taskTitles(s.TasksByStatus(models.TaskStatusInProgress))
	if want := []string{"A", "C"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMoveTaskIntoEmptyStatusGroup(t *testing.T) {
	s := newTestStore()
	c := s.AddTask(models.Task{Title: "C", Status: models.TaskStatusTodo})

	idx := 0
	s.MoveTask(c.ID, models.TaskStatusDone, &idx)

	got := taskTitles(s.TasksByStatus(models.TaskStatusDone))
	if want := []string{"C"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestReorderTasks(t *testing.T) {
	s := newTestStore()
	s.AddTask(models.Task{Title: "A", Status: models.TaskStatusTodo})
	s.AddTask(models.Task{Title: "X", Status: models.TaskStatusDone})
	s.AddTask(models.Task{Title: "B", Status: models.TaskStatusTodo})
	s.AddTask(models.Task{Title: "C", Status: models.TaskStatusTodo})

	s.ReorderTasks(models.TaskStatusTodo, 0, 2)

	got := taskTitles(s.TasksByStatus(models.TaskStatusTodo))
	if want := []string{"B", "C", "A"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	// Other status groups keep their slots in the overall collection.
	if all := taskTitles(s.Tasks()); all[1] != "X" {
		t.Errorf("expected X to keep its global position, got %v", all)
	}
}

func TestReorderTasksOutOfRangeIsNoOp(t *testing.T) {
	s := newTestStore()
	s.AddTask(models.Task{Title: "A", Status: models.TaskStatusTodo})
	before := len(s.hist.past)

	s.ReorderTasks(models.TaskStatusTodo, 0, 5)
	s.ReorderTasks(models.TaskStatusTodo, -1, 0)
	s.ReorderTasks(models.TaskStatusDone, 0, 0)

	if got := len(s.hist.past); got != before {
		t.Errorf("expected no history growth, got %d entries", got-before)
	}
}

func TestSteps(t *testing.T) {
	s := newTestStore()
	task := s.AddTask(models.Task{Title: "Ship release"})

	first, ok := s.AddStep(task.ID, models.TaskStep{Text: "tag the build"})
	if !ok || first.ID == "" {
		t.Fatalf("expected created step with id, got %+v ok=%v", first, ok)
	}
	second, _ := s.AddStep(task.ID, models.TaskStep{Text: "write changelog"})

	done := true
	s.UpdateStep(task.ID, first.ID, StepPatch{Completed: &done})
	if got := s.Tasks()[0].Steps[0]; !got.Completed || got.Text != "tag the build" {
		t.Errorf("expected completed step with text retained, got %+v", got)
	}

	s.ReorderSteps(task.ID, 0, 1)
	if got := s.Tasks()[0].Steps[0].ID; got != second.ID {
		t.Errorf("expected second step first after reorder, got %s", got)
	}

	s.DeleteStep(task.ID, first.ID)
	if got := s.Tasks()[0].Steps; len(got) != 1 || got[0].ID != second.ID {
		t.Errorf("expected only second step left, got %+v", got)
	}
}

func TestStepOpsOnMissingIDsAreNoOps(t *testing.T) {
	s := newTestStore()
	task := s.AddTask(models.Task{Title: "Ship release"})
	s.AddStep(task.ID, models.TaskStep{Text: "tag the build"})
	before := len(s.hist.past)

	text := "x"
	s.UpdateStep(task.ID, "missing", StepPatch{Text: &text})
	s.DeleteStep(task.ID, "missing")
	s.ReorderSteps(task.ID, 0, 3)
	if _, ok := s.AddStep("missing", models.TaskStep{Text: "y"}); ok {
		t.Error("expected AddStep on missing task to fail")
	}

	if got := len(s.hist.past); got != before {
		t.Errorf("expected no history growth, got %d new entries", got-before)
	}
}

func TestAddTagToTaskIsIdempotent(t *testing.T) {
	s := newTestStore()
	task := s.AddTask(models.Task{Title: "A"})
	tag := s.AddTag(models.Tag{Name: "Work", Color: "#3b82f6"})

	s.AddTagToTask(task.ID, tag.ID)
	before := len(s.hist.past)

	s.AddTagToTask(task.ID, tag.ID)

	if got := s.Tasks()[0].TagIDs; len(got) != 1 {
		t.Errorf("expected no duplicate tag ids, got %v", got)
	}
	if got := len(s.hist.past); got != before {
		t.Error("expected repeated add to be a no-op")
	}

	s.RemoveTagFromTask(task.ID, tag.ID)
	if got := s.Tasks()[0].TagIDs; len(got) != 0 {
		t.Errorf("expected tag removed, got %v", got)
	}
}

func TestDeleteTagCascades(t *testing.T) {
	s := newTestStore()
	tag := s.AddTag(models.Tag{Name: "Urgent", Color: "#ef4444"})
	keep := s.AddTag(models.Tag{Name: "Work", Color: "#3b82f6"})

	s.AddTask(models.Task{Title: "A", TagIDs: []string{tag.ID, keep.ID}})
	s.AddEvent(models.Event{Title: "Review", Date: "2024-01-10", TagIDs: []string{tag.ID}})

	s.DeleteTag(tag.ID)

	if got := s.Tags(); len(got) != 1 || got[0].ID != keep.ID {
		t.Errorf("expected only the kept tag, got %+v", got)
	}
	if got := s.Tasks()[0].TagIDs; !slices.Equal(got, []string{keep.ID}) {
		t.Errorf("expected tag stripped from task, got %v", got)
	}
	if got := s.Events()[0].TagIDs; len(got) != 0 {
		t.Errorf("expected tag stripped from event, got %v", got)
	}

	// The cascade is one transition: a single undo restores all three.
	s.Undo()
	if len(s.Tags()) != 2 {
		t.Errorf("expected both tags restored, got %d", len(s.Tags()))
	}
	if got := s.Tasks()[0].TagIDs; !slices.Contains(got, tag.ID) {
		t.Errorf("expected task reference restored, got %v", got)
	}
	if got := s.Events()[0].TagIDs; !slices.Contains(got, tag.ID) {
		t.Errorf("expected event reference restored, got %v", got)
	}
}

func TestAddEventExpandsRecurrenceInOneTransition(t *testing.T) {
	s := newTestStore()

	base := s.AddEvent(models.Event{
		Title: "Standup",
		Date:  "2024-01-10",
		Recurrence: &models.EventRecurrence{
			Type:        models.RecurrenceDaily,
			Interval:    1,
			Occurrences: 5,
		},
	})

	if got := len(s.Events()); got != 5 {
		t.Fatalf("expected base + 4 instances, got %d", got)
	}
	for _, e := range s.Events()[1:] {
		if e.ParentEventID != base.ID {
			t.Errorf("expected instance parent %s, got %q", base.ID, e.ParentEventID)
		}
	}

	// Base and instances were one transition.
	s.Undo()
	if got := len(s.Events()); got != 0 {
		t.Errorf("expected all events gone after one undo, got %d", got)
	}
}

func TestUpdateEventRegeneratesInstances(t *testing.T) {
	s := newTestStore()
	base := s.AddEvent(models.Event{
		Title: "Standup",
		Date:  "2024-01-10",
		Recurrence: &models.EventRecurrence{
			Type:        models.RecurrenceDaily,
			Interval:    1,
			Occurrences: 4,
		},
	})
	before := eventDates(s.Events())

	// An update with the same rule regenerates: ids are fresh but the date
	// set is identical.
	title := "Daily standup"
	s.UpdateEvent(base.ID, EventPatch{Title: &title})

	if got := eventDates(s.Events()); !slices.Equal(got, before) {
		t.Errorf("expected identical date set, got %v want %v", got, before)
	}
	if got := len(s.Events()); got != 4 {
		t.Errorf("expected base + 3 instances, got %d", got)
	}
	for _, e := range s.Events() {
		if e.Title != title {
			t.Errorf("expected all records regenerated from patched base, got title %q", e.Title)
		}
	}
}

func TestUpdateEventRuleChangeReplacesInstances(t *testing.T) {
	s := newTestStore()
	base := s.AddEvent(models.Event{
		Title: "Standup",
		Date:  "2024-01-10",
		Recurrence: &models.EventRecurrence{
			Type:        models.RecurrenceDaily,
			Interval:    1,
			Occurrences: 4,
		},
	})

	s.UpdateEvent(base.ID, EventPatch{
		Recurrence: &models.EventRecurrence{
			Type:        models.RecurrenceWeekly,
			Interval:    1,
			Occurrences: 3,
		},
	})

	want := []string{"2024-01-10", "2024-01-17", "2024-01-24"}
	if got := eventDates(s.Events()); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestUpdateEventToNoneDropsInstances(t *testing.T) {
	s := newTestStore()
	base := s.AddEvent(models.Event{
		Title: "Standup",
		Date:  "2024-01-10",
		Recurrence: &models.EventRecurrence{
			Type:        models.RecurrenceDaily,
			Interval:    1,
			Occurrences: 4,
		},
	})

	s.UpdateEvent(base.ID, EventPatch{
		Recurrence: &models.EventRecurrence{Type: models.RecurrenceNone},
	})

	if got := len(s.Events()); got != 1 {
		t.Errorf("expected only the base event, got %d", got)
	}
}

func TestDeleteEventCascadesToInstances(t *testing.T) {
	s := newTestStore()
	base := s.AddEvent(models.Event{
		Title: "Standup",
		Date:  "2024-01-10",
		Recurrence: &models.EventRecurrence{
			Type:        models.RecurrenceDaily,
			Interval:    1,
			Occurrences: 4,
		},
	})
	other := s.AddEvent(models.Event{Title: "Dentist", Date: "2024-02-01"})

	s.DeleteEvent(base.ID)

	if got := s.Events(); len(got) != 1 || got[0].ID != other.ID {
		t.Errorf("expected only the unrelated event, got %+v", got)
	}
}

func TestDeleteGeneratedInstanceRemovesOnlyItself(t *testing.T) {
	s := newTestStore()
	s.AddEvent(models.Event{
		Title: "Standup",
		Date:  "2024-01-10",
		Recurrence: &models.EventRecurrence{
			Type:        models.RecurrenceDaily,
			Interval:    1,
			Occurrences: 4,
		},
	})

	instance := s.Events()[1]
	s.DeleteEvent(instance.ID)

	if got := len(s.Events()); got != 3 {
		t.Errorf("expected base and two siblings left, got %d", got)
	}
}

func TestMoveEventPreservesMultiDayDuration(t *testing.T) {
	s := newTestStore()
	e := s.AddEvent(models.Event{
		Title:      "Conference",
		Date:       "2024-02-01",
		EndDate:    "2024-02-03",
		IsMultiDay: true,
	})

	s.MoveEvent(e.ID, "2024-03-10")

	got := s.Events()[0]
	if got.Date != "2024-03-10" || got.EndDate != "2024-03-12" {
		t.Errorf("expected span 2024-03-10..2024-03-12, got %s..%s", got.Date, got.EndDate)
	}
}

func TestMoveEventZeroLengthMultiDaySpan(t *testing.T) {
	s := newTestStore()
	e := s.AddEvent(models.Event{
		Title:      "Offsite",
		Date:       "2024-02-01",
		EndDate:    "2024-02-01",
		IsMultiDay: true,
	})

	s.MoveEvent(e.ID, "2024-03-10")

	got := s.Events()[0]
	if got.Date != "2024-03-10" || got.EndDate != "2024-03-10" {
		t.Fatalf("expected span 2024-03-10..2024-03-10, got %s..%s", got.Date, got.EndDate)
	}
	// The moved event must stay visible to day queries.
	if found := s.EventsForDate(day("2024-03-10")); len(found) != 1 {
		t.Errorf("expected the moved event on its new date, got %d", len(found))
	}
}

func TestMoveGeneratedInstanceLeavesSiblings(t *testing.T) {
	s := newTestStore()
	s.AddEvent(models.Event{
		Title: "Standup",
		Date:  "2024-01-10",
		Recurrence: &models.EventRecurrence{
			Type:        models.RecurrenceDaily,
			Interval:    1,
			Occurrences: 3,
		},
	})

	instance := s.Events()[1]
	s.MoveEvent(instance.ID, "2024-02-20")

	var moved, others int
	for _, e := range s.Events() {
		switch e.Date {
		case "2024-02-20":
			moved++
		case "2024-01-10", "2024-01-12":
			others++
		}
	}
	if moved != 1 || others != 2 {
		t.Errorf("expected only the instance moved, got dates %v", eventDates(s.Events()))
	}
}

func TestMoveEventMalformedDateIsNoOp(t *testing.T) {
	s := newTestStore()
	e := s.AddEvent(models.Event{Title: "Dentist", Date: "2024-02-01"})
	before := len(s.hist.past)

	s.MoveEvent(e.ID, "02/01/2024")

	if s.Events()[0].Date != "2024-02-01" {
		t.Errorf("expected date unchanged, got %s", s.Events()[0].Date)
	}
	if got := len(s.hist.past); got != before {
		t.Error("expected no history growth for malformed date")
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := newTestStore()
	task := s.AddTask(models.Task{Title: "A", TagIDs: []string{"t1"}})
	snapshot := s.State()

	s.AddTagToTask(task.ID, "t2")

	if got := snapshot.Tasks[0].TagIDs; !slices.Equal(got, []string{"t1"}) {
		t.Errorf("expected earlier snapshot untouched, got %v", got)
	}
}
