package store

import (
	"reflect"

	"github.com/ldi/taskmaster/pkg/models"
)

// history is a linear undo/redo over whole AppState snapshots: an ordered
// past (oldest first), the present, and the undone future (most recently
// undone first).
type history struct {
	past    []models.AppState
	present models.AppState
	future  []models.AppState
	limit   int // max past entries, 0 = unbounded
}

// record installs next as the present snapshot and reports whether anything
// changed. A next that is structurally equal to the present is discarded so
// redundant writes never grow the undo stack. Recording a real change
// clears the redo branch.
func (h *history) record(next models.AppState) bool {
	if reflect.DeepEqual(h.present, next) {
		return false
	}
	h.past = append(h.past, h.present)
	if h.limit > 0 && len(h.past) > h.limit {
		h.past = append(h.past[:0:0], h.past[len(h.past)-h.limit:]...)
	}
	h.present = next
	h.future = nil
	return true
}

func (h *history) undo() bool {
	if len(h.past) == 0 {
		return false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]models.AppState{h.present}, h.future...)
	h.present = prev
	return true
}

func (h *history) redo() bool {
	if len(h.future) == 0 {
		return false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, h.present)
	h.present = next
	return true
}

func (h *history) canUndo() bool { return len(h.past) > 0 }
func (h *history) canRedo() bool { return len(h.future) > 0 }
