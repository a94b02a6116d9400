package command

import (
	"fmt"

	"github.com/dshills/mdcore/internal/engine/anchor"
	"github.com/dshills/mdcore/internal/engine/buffer"
)

// Marker is a list marker ToggleMarker can set.
type Marker string

// Markers accepted by ToggleMarker.
const (
	MarkerDash     Marker = "-"
	MarkerAsterisk Marker = "*"
	MarkerPlus     Marker = "+"
	MarkerNumbered Marker = "1."
)

// Valid reports whether m is one of the known markers.
func (m Marker) Valid() bool {
	switch m {
	case MarkerDash, MarkerAsterisk, MarkerPlus, MarkerNumbered:
		return true
	}
	return false
}

// Cmd is a high-level edit intent. The set of commands is closed; the
// Compiler switches over the concrete types below.
type Cmd interface {
	// Name returns a short human-readable name used in logs and history.
	Name() string

	isCmd()
}

// InsertText inserts Text at At.
type InsertText struct {
	At   buffer.ByteOffset
	Text string
}

// DeleteRange removes the bytes of Range.
type DeleteRange struct {
	Range buffer.Span
}

// ReplaceRange replaces the bytes of Range with Text.
type ReplaceRange struct {
	Range buffer.Span
	Text  string
}

// SplitListItem breaks the line at At, continuing the list item the line
// belongs to. Splitting an empty item removes its marker instead.
type SplitListItem struct {
	At buffer.ByteOffset
}

// IndentLines adds one indent unit to every non-blank line overlapping
// Range.
type IndentLines struct {
	Range buffer.Span
}

// OutdentLines removes up to one indent unit from every line overlapping
// Range.
type OutdentLines struct {
	Range buffer.Span
}

// ToggleMarker sets the list marker of the line starting at LineStart.
type ToggleMarker struct {
	LineStart buffer.ByteOffset
	To        Marker
}

// ReplaceContent replaces the content of the block bound to Anchor,
// keeping its container prefixes.
type ReplaceContent struct {
	Anchor anchor.ID
	Text   string
}

func (InsertText) Name() string     { return "insert" }
func (DeleteRange) Name() string    { return "delete" }
func (ReplaceRange) Name() string   { return "replace" }
func (SplitListItem) Name() string  { return "split-list-item" }
func (IndentLines) Name() string    { return "indent" }
func (OutdentLines) Name() string   { return "outdent" }
func (ToggleMarker) Name() string   { return "toggle-marker" }
func (ReplaceContent) Name() string { return "replace-content" }

func (InsertText) isCmd()     {}
func (DeleteRange) isCmd()    {}
func (ReplaceRange) isCmd()   {}
func (SplitListItem) isCmd()  {}
func (IndentLines) isCmd()    {}
func (OutdentLines) isCmd()   {}
func (ToggleMarker) isCmd()   {}
func (ReplaceContent) isCmd() {}

func (c InsertText) String() string {
	return fmt.Sprintf("InsertText(%d, %q)", c.At, c.Text)
}

func (c DeleteRange) String() string {
	return fmt.Sprintf("DeleteRange(%s)", c.Range)
}

func (c ReplaceRange) String() string {
	return fmt.Sprintf("ReplaceRange(%s, %q)", c.Range, c.Text)
}

func (c SplitListItem) String() string {
	return fmt.Sprintf("SplitListItem(%d)", c.At)
}

func (c IndentLines) String() string {
	return fmt.Sprintf("IndentLines(%s)", c.Range)
}

func (c OutdentLines) String() string {
	return fmt.Sprintf("OutdentLines(%s)", c.Range)
}

func (c ToggleMarker) String() string {
	return fmt.Sprintf("ToggleMarker(%d, %s)", c.LineStart, c.To)
}

func (c ReplaceContent) String() string {
	return fmt.Sprintf("ReplaceContent(%s, %q)", c.Anchor, c.Text)
}
