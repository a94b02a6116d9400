package history

import (
	"errors"
	"slices"
	"time"

	"github.com/dshills/mdcore/internal/engine/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries bounds the undo stack when no limit is given.
const DefaultMaxEntries = 1000

// Step is one applied delta together with the delta that reverts it.
type Step struct {
	Forward buffer.Delta
	Inverse buffer.Delta
}

// Entry is one undo unit: a single command, or every command of a group.
type Entry struct {
	Name            string
	Steps           []Step
	SelectionBefore buffer.Span
	SelectionAfter  buffer.Span
	Timestamp       time.Time
}

// Undo returns the deltas that revert the entry, in application order.
func (e *Entry) Undo() []buffer.Delta {
	out := make([]buffer.Delta, len(e.Steps))
	for i, s := range e.Steps {
		out[len(e.Steps)-1-i] = s.Inverse
	}
	return out
}

// Redo returns the deltas that replay the entry, in application order.
func (e *Entry) Redo() []buffer.Delta {
	out := make([]buffer.Delta, len(e.Steps))
	for i, s := range e.Steps {
		out[i] = s.Forward
	}
	return out
}

// Info describes an entry without exposing its deltas.
type Info struct {
	Name      string    `yaml:"name" json:"name"`
	Steps     int       `yaml:"steps" json:"steps"`
	Timestamp time.Time `yaml:"time" json:"time"`
}

// History manages undo/redo state for one document. It is owned by the
// document and not safe for concurrent use.
type History struct {
	undoStack []*Entry
	redoStack []*Entry

	// Grouping state
	grouping bool
	group    *Entry

	maxEntries int
}

// New creates a history keeping at most maxEntries undo entries.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Push records an applied step. before and after are the selections
// around it. While grouping the step joins the open group. Pushing clears
// the redo stack.
func (h *History) Push(name string, step Step, before, after buffer.Span) {
	if h.grouping {
		if len(h.group.Steps) == 0 {
			h.group.SelectionBefore = before
		}
		h.group.Steps = append(h.group.Steps, step)
		h.group.SelectionAfter = after
		return
	}
	h.push(&Entry{
		Name:            name,
		Steps:           []Step{step},
		SelectionBefore: before,
		SelectionAfter:  after,
		Timestamp:       time.Now(),
	})
}

func (h *History) push(e *Entry) {
	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil
	h.trim()
}

func (h *History) trim() {
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = slices.Clone(h.undoStack[excess:])
	}
}

// Undo pops the last entry and passes it to apply, which must revert it.
// If apply fails the entry stays on the undo stack.
func (h *History) Undo(apply func(*Entry) error) error {
	if len(h.undoStack) == 0 {
		return ErrNothingToUndo
	}
	e := h.undoStack[len(h.undoStack)-1]
	if err := apply(e); err != nil {
		return err
	}
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, e)
	return nil
}

// Redo pops the last undone entry and passes it to apply, which must
// replay it. If apply fails the entry stays on the redo stack.
func (h *History) Redo(apply func(*Entry) error) error {
	if len(h.redoStack) == 0 {
		return ErrNothingToRedo
	}
	e := h.redoStack[len(h.redoStack)-1]
	if err := apply(e); err != nil {
		return err
	}
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, e)
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// BeginGroup starts a group. Steps pushed until EndGroup undo as one
// entry. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	if h.grouping {
		return
	}
	h.grouping = true
	h.group = &Entry{Name: name, Timestamp: time.Now()}
}

// EndGroup closes the group and records it if it holds any step.
func (h *History) EndGroup() {
	if !h.grouping {
		return
	}
	g := h.group
	h.grouping = false
	h.group = nil
	if len(g.Steps) > 0 {
		h.push(g)
	}
}

// CancelGroup drops the open group without recording it.
// Note: steps already applied still affect the document!
func (h *History) CancelGroup() {
	h.grouping = false
	h.group = nil
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.group = nil
}

// UndoInfo describes the undo stack, oldest first.
func (h *History) UndoInfo() []Info {
	return infos(h.undoStack)
}

// RedoInfo describes the redo stack, oldest first.
func (h *History) RedoInfo() []Info {
	return infos(h.redoStack)
}

func infos(stack []*Entry) []Info {
	out := make([]Info, len(stack))
	for i, e := range stack {
		out[i] = e.info()
	}
	return out
}

func (e *Entry) info() Info {
	return Info{Name: e.Name, Steps: len(e.Steps), Timestamp: e.Timestamp}
}

// PeekUndo describes the next undo entry without removing it.
func (h *History) PeekUndo() (Info, bool) {
	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo describes the next redo entry without removing it.
func (h *History) PeekRedo() (Info, bool) {
	if len(h.redoStack) == 0 {
		return Info{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}
