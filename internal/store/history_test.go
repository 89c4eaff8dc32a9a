package store

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/ldi/taskmaster/pkg/models"
)

func TestUndoRedoRoundTrip(t *testing.T) {
	s := New(models.AppState{})
	initial := s.State()

	s.AddTag(models.Tag{Name: "Work", Color: "#3b82f6"})
	s.AddTask(models.Task{Title: "Write report"})
	s.AddEvent(models.Event{Title: "Review", Date: "2024-01-10"})
	final := s.State()

	// Three mutations: three undos return to the initial state.
	for i := 0; i < 3; i++ {
		if !s.Undo() {
			t.Fatalf("undo %d failed", i)
		}
	}
	if !reflect.DeepEqual(s.State(), initial) {
		t.Errorf("expected initial state after undos, got %+v", s.State())
	}
	if s.CanUndo() {
		t.Error("expected CanUndo false at the bottom of history")
	}

	for i := 0; i < 3; i++ {
		if !s.Redo() {
			t.Fatalf("redo %d failed", i)
		}
	}
	if !reflect.DeepEqual(s.State(), final) {
		t.Errorf("expected final state after redos, got %+v", s.State())
	}
	if s.CanRedo() {
		t.Error("expected CanRedo false at the top of history")
	}
}

func TestUndoRedoNoOpAtBounds(t *testing.T) {
	s := New(models.AppState{})

	if s.Undo() {
		t.Error("expected undo to be a no-op with empty past")
	}
	if s.Redo() {
		t.Error("expected redo to be a no-op with empty future")
	}
}

func TestRecordClearsRedoBranch(t *testing.T) {
	s := New(models.AppState{})

	s.AddTag(models.Tag{Name: "A", Color: "#111111"})
	s.AddTag(models.Tag{Name: "B", Color: "#222222"})
	s.Undo()

	if !s.CanRedo() {
		t.Fatal("expected CanRedo after undo")
	}

	// A new change discards the undone branch: history is linear.
	s.AddTag(models.Tag{Name: "C", Color: "#333333"})
	if s.CanRedo() {
		t.Error("expected redo branch cleared after new change")
	}
}

func TestNoOpMutationDoesNotGrowHistory(t *testing.T) {
	s := New(models.AppState{})
	created := s.AddTag(models.Tag{Name: "Work", Color: "#3b82f6"})

	if !s.CanUndo() {
		t.Fatal("expected CanUndo after add")
	}
	before := len(s.hist.past)

	// Patching with identical values produces a structurally equal state,
	// which must not be recorded.
	name := "Work"
	color := "#3b82f6"
	s.UpdateTag(created.ID, TagPatch{Name: &name, Color: &color})

	if got := len(s.hist.past); got != before {
		t.Errorf("expected undo stack length %d, got %d", before, got)
	}
}

func TestInvalidIDMutationsAreSilentNoOps(t *testing.T) {
	s := New(models.AppState{})
	s.AddTask(models.Task{Title: "Real task"})
	before := len(s.hist.past)

	s.UpdateTask("missing", TaskPatch{})
	s.DeleteTask("missing")
	s.DeleteTag("missing")
	s.DeleteEvent("missing")
	s.MoveEvent("missing", "2024-01-10")
	s.MoveTask("missing", models.TaskStatusDone, nil)
	s.AddTagToTask("missing", "also-missing")

	if got := len(s.hist.past); got != before {
		t.Errorf("expected undo stack unchanged at %d, got %d", before, got)
	}
}

func TestHistoryLimitEvictsOldest(t *testing.T) {
	s := New(models.AppState{}, WithHistoryLimit(3))

	for i := 0; i < 5; i++ {
		s.AddTag(models.Tag{Name: fmt.Sprintf("tag-%d", i), Color: "#000000"})
	}

	undos := 0
	for s.Undo() {
		undos++
	}
	if undos != 3 {
		t.Errorf("expected 3 undos with limit 3, got %d", undos)
	}
	// The oldest reachable state still holds the first two tags.
	if got := len(s.Tags()); got != 2 {
		t.Errorf("expected 2 tags at the bottom of capped history, got %d", got)
	}
}

func TestOnChangeFiresOnTransitionsOnly(t *testing.T) {
	s := New(models.AppState{})
	calls := 0
	s.SetOnChange(func(models.AppState) { calls++ })

	created := s.AddTag(models.Tag{Name: "Work", Color: "#3b82f6"})
	if calls != 1 {
		t.Fatalf("expected 1 call after add, got %d", calls)
	}

	name := "Work"
	s.UpdateTag(created.ID, TagPatch{Name: &name}) // structural no-op
	if calls != 1 {
		t.Errorf("expected no call for suppressed no-op, got %d", calls)
	}

	s.Undo()
	s.Redo()
	if calls != 3 {
		t.Errorf("expected undo and redo to notify, got %d calls", calls)
	}
}
