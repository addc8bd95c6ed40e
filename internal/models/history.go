package models

import (
	"errors"
	"sync"
)

// DefaultHistoryCapacity bounds the number of states kept for undo.
const DefaultHistoryCapacity = 20

var (
	// ErrNoHistory is returned by Undo and Redo at either end of the history.
	ErrNoHistory = errors.New("no history entry in that direction")
	// ErrEmptyHistory is returned when the history was never seeded.
	ErrEmptyHistory = errors.New("history is empty")
)

// EditHistory is a bounded linear undo/redo stack of image states.
// Recording a new state discards any redo branch; exceeding the capacity
// evicts the oldest entry.
type EditHistory struct {
	mu       sync.RWMutex
	entries  []ImageState
	cursor   int
	capacity int
}

// NewEditHistory creates an empty history. A capacity below one falls back
// to DefaultHistoryCapacity.
func NewEditHistory(capacity int) *EditHistory {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &EditHistory{
		entries:  make([]ImageState, 0, capacity),
		cursor:   -1,
		capacity: capacity,
	}
}

// Reset replaces the sequence with a copy of initial.
func (h *EditHistory) Reset(initial ImageState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:0:0], initial.Clone())
	h.cursor = 0
}

// Record appends a copy of state after the cursor, dropping the redo branch.
func (h *EditHistory) Record(state ImageState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := h.cursor + 1; i < len(h.entries); i++ {
		h.entries[i] = ImageState{}
	}
	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, state.Clone())
	h.cursor = len(h.entries) - 1

	if len(h.entries) > h.capacity {
		h.entries[0] = ImageState{}
		h.entries = h.entries[1:]
		h.cursor--
	}
}

func (h *EditHistory) Undo() (ImageState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return ImageState{}, ErrEmptyHistory
	}
	if h.cursor == 0 {
		return ImageState{}, ErrNoHistory
	}

	h.cursor--
	return h.entries[h.cursor], nil
}

func (h *EditHistory) Redo() (ImageState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return ImageState{}, ErrEmptyHistory
	}
	if h.cursor == len(h.entries)-1 {
		return ImageState{}, ErrNoHistory
	}

	h.cursor++
	return h.entries[h.cursor], nil
}

func (h *EditHistory) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor > 0
}

func (h *EditHistory) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor >= 0 && h.cursor < len(h.entries)-1
}

func (h *EditHistory) Current() (ImageState, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return ImageState{}, ErrEmptyHistory
	}
	return h.entries[h.cursor], nil
}

func (h *EditHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Cursor returns the index of the current state, or -1 when empty.
func (h *EditHistory) Cursor() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor
}

func (h *EditHistory) Capacity() int {
	return h.capacity
}

// Entries returns a snapshot of the sequence, oldest first.
func (h *EditHistory) Entries() []ImageState {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ImageState, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear drops every entry.
func (h *EditHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = h.entries[:0:0]
	h.cursor = -1
}
