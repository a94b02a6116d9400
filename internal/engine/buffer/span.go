package buffer

import (
	"fmt"

	"github.com/dshills/mdcore/internal/engine/rope"
)

// ByteOffset is an absolute byte position in a buffer.
type ByteOffset = rope.ByteOffset

// Span is a byte range [Start, End) into a buffer.
type Span struct {
	Start ByteOffset `yaml:"start" json:"start"`
	End   ByteOffset `yaml:"end" json:"end"`
}

// NewSpan creates a Span from start and end offsets.
func NewSpan(start, end ByteOffset) Span {
	return Span{Start: start, End: end}
}

// String returns the span as "[start:end)".
func (s Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Len returns the length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span has zero length.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// IsValid reports whether Start <= End.
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.Start <= s.End
}

// Contains reports whether offset lies in [Start, End).
func (s Span) Contains(offset ByteOffset) bool {
	return offset >= s.Start && offset < s.End
}

// ContainsSpan reports whether o lies entirely within s.
func (s Span) ContainsSpan(o Span) bool {
	return o.Start >= s.Start && o.End <= s.End
}

// Overlaps reports whether the spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Overlap returns the number of bytes shared by s and o.
func (s Span) Overlap(o Span) int {
	return max(min(s.End, o.End)-max(s.Start, o.Start), 0)
}

// Intersect returns the shared part of s and o, or an empty span at the
// nearer boundary when they are disjoint.
func (s Span) Intersect(o Span) Span {
	start, end := max(s.Start, o.Start), min(s.End, o.End)
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

// Union returns the smallest span covering s and o.
func (s Span) Union(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

// Shift moves both ends by delta.
func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}
