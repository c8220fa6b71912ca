package session

// History is a bounded linear undo stack of full-surface snapshots. The
// memory-heavy full-snapshot model is deliberate: restores are O(copy) and
// never depend on replaying operations.
type History struct {
	capacity int
	undo     [][]byte
	redo     [][]byte
}

// DefaultCapacity is the number of snapshots kept when none is specified.
const DefaultCapacity = 20

// NewHistory creates a history bounded to the given number of snapshots.
// Non-positive capacities fall back to DefaultCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Push records a snapshot taken after a completed stroke. The oldest entry is
// dropped beyond capacity, and any redoable states are discarded: the history
// is linear, not branching.
func (h *History) Push(snapshot []byte) {
	h.redo = nil
	h.undo = append(h.undo, snapshot)
	if len(h.undo) > h.capacity {
		h.undo = h.undo[1:]
	}
}

// Undo moves the newest snapshot to the redo stack and returns the state to
// restore, or nil when there is nothing left to undo.
func (h *History) Undo() []byte {
	if len(h.undo) < 2 {
		return nil
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, top)
	return h.undo[len(h.undo)-1]
}

// Redo is the mirror of Undo. Returns nil when the redo stack is empty.
func (h *History) Redo() []byte {
	if len(h.redo) == 0 {
		return nil
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, top)
	return top
}

// Len reports how many snapshots are undoable.
func (h *History) Len() int { return len(h.undo) }
