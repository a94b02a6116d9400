package buffer

import "fmt"

// Edit replaces the bytes of Span with Text.
type Edit struct {
	Span Span   `yaml:"span" json:"span"`
	Text string `yaml:"text" json:"text"`
}

// NewInsert creates an Edit that inserts text at offset.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{Span: Span{Start: offset, End: offset}, Text: text}
}

// NewDelete creates an Edit that removes [start, end).
func NewDelete(start, end ByteOffset) Edit {
	return Edit{Span: Span{Start: start, End: end}}
}

// NewReplace creates an Edit that replaces [start, end) with text.
func NewReplace(start, end ByteOffset, text string) Edit {
	return Edit{Span: Span{Start: start, End: end}, Text: text}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	switch {
	case e.Span.IsEmpty():
		return fmt.Sprintf("Insert(%d, %q)", e.Span.Start, e.Text)
	case e.Text == "":
		return fmt.Sprintf("Delete%s", e.Span)
	default:
		return fmt.Sprintf("Replace%s with %q", e.Span, e.Text)
	}
}

// IsInsert reports whether the edit only inserts.
func (e Edit) IsInsert() bool {
	return e.Span.IsEmpty() && e.Text != ""
}

// IsDelete reports whether the edit only deletes.
func (e Edit) IsDelete() bool {
	return !e.Span.IsEmpty() && e.Text == ""
}

// IsNoOp reports whether the edit changes nothing.
func (e Edit) IsNoOp() bool {
	return e.Span.IsEmpty() && e.Text == ""
}

// LenDiff returns the change in buffer length caused by the edit.
func (e Edit) LenDiff() int {
	return len(e.Text) - e.Span.Len()
}
