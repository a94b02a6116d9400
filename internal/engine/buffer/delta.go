package buffer

import (
	"slices"
	"strings"

	"github.com/dshills/mdcore/internal/engine/rope"
)

// Bias decides where an offset sitting exactly at an edit boundary goes.
type Bias uint8

const (
	// BiasBefore keeps the offset before text inserted at its position and
	// maps offsets inside a replaced range to the range start.
	BiasBefore Bias = iota

	// BiasAfter moves the offset past text inserted at its position and maps
	// offsets inside a replaced range past the replacement.
	BiasAfter
)

// Delta is an ordered set of non-overlapping edits, all expressed in the
// coordinates of the buffer before any of them is applied.
type Delta struct {
	edits []Edit
}

// NewDelta sorts edits by start offset and validates them.
// No-op edits are dropped; overlapping edits yield ErrEditsOverlap.
func NewDelta(edits ...Edit) (Delta, error) {
	out := make([]Edit, 0, len(edits))
	for _, e := range edits {
		if !e.Span.IsValid() {
			return Delta{}, ErrRangeInvalid
		}
		if !e.IsNoOp() {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b Edit) int {
		return a.Span.Start - b.Span.Start
	})
	for i := 1; i < len(out); i++ {
		if out[i].Span.Start < out[i-1].Span.End {
			return Delta{}, ErrEditsOverlap
		}
	}
	return Delta{edits: out}, nil
}

// MustDelta is like NewDelta but panics on invalid input. It is intended for
// deltas built from constants.
func MustDelta(edits ...Edit) Delta {
	d, err := NewDelta(edits...)
	if err != nil {
		panic(err)
	}
	return d
}

// Edits returns a copy of the edits in ascending order.
func (d Delta) Edits() []Edit {
	return slices.Clone(d.edits)
}

// Len returns the number of edits.
func (d Delta) Len() int {
	return len(d.edits)
}

// IsEmpty reports whether the delta changes nothing.
func (d Delta) IsEmpty() bool {
	return len(d.edits) == 0
}

// LenDiff returns the total change in buffer length.
func (d Delta) LenDiff() int {
	diff := 0
	for _, e := range d.edits {
		diff += e.LenDiff()
	}
	return diff
}

// Hull returns the smallest old-coordinate span touching every edit.
func (d Delta) Hull() (Span, bool) {
	if len(d.edits) == 0 {
		return Span{}, false
	}
	return Span{Start: d.edits[0].Span.Start, End: d.edits[len(d.edits)-1].Span.End}, true
}

// NewHull returns the new-coordinate span covering every inserted or
// shifted byte between the first and last edit.
func (d Delta) NewHull() (Span, bool) {
	h, ok := d.Hull()
	if !ok {
		return Span{}, false
	}
	return Span{Start: h.Start, End: h.End + d.LenDiff()}, true
}

// TransformOffset maps an old offset to its position after the delta.
func (d Delta) TransformOffset(offset ByteOffset, bias Bias) ByteOffset {
	shift := 0
	for _, e := range d.edits {
		switch {
		case e.Span.End < offset:
			shift += e.LenDiff()
		case e.Span.Start > offset:
			return offset + shift
		case e.Span.IsEmpty():
			// Insertion exactly at offset.
			if bias == BiasBefore {
				return offset + shift
			}
			shift += len(e.Text)
		case e.Span.End == offset:
			shift += e.LenDiff()
		default:
			if bias == BiasAfter {
				return e.Span.Start + shift + len(e.Text)
			}
			return e.Span.Start + shift
		}
	}
	return offset + shift
}

// TransformSpan maps a non-empty span through the delta. The start moves past
// text inserted at it and the end stays before text inserted at it, so edits
// straddling a boundary truncate the span. It returns false when nothing of
// the span survives.
func (d Delta) TransformSpan(s Span) (Span, bool) {
	if s.IsEmpty() {
		off := d.TransformOffset(s.Start, BiasBefore)
		return Span{Start: off, End: off}, true
	}
	start := d.TransformOffset(s.Start, BiasAfter)
	end := d.TransformOffset(s.End, BiasBefore)
	if end <= start {
		return Span{Start: start, End: start}, false
	}
	return Span{Start: start, End: end}, true
}

// Changed returns, in new coordinates, the span of text written by each edit.
// Pure deletions yield an empty span at the deletion point.
func (d Delta) Changed() []Span {
	out := make([]Span, 0, len(d.edits))
	shift := 0
	for _, e := range d.edits {
		start := e.Span.Start + shift
		out = append(out, Span{Start: start, End: start + len(e.Text)})
		shift += e.LenDiff()
	}
	return out
}

// Invert returns the delta that restores old from the result of applying d
// to it.
func (d Delta) Invert(old rope.Rope) Delta {
	inv := make([]Edit, 0, len(d.edits))
	shift := 0
	for _, e := range d.edits {
		start := e.Span.Start + shift
		inv = append(inv, Edit{
			Span: Span{Start: start, End: start + len(e.Text)},
			Text: old.Slice(e.Span.Start, e.Span.End),
		})
		shift += e.LenDiff()
	}
	return Delta{edits: inv}
}

// Apply returns r with every edit applied.
func (d Delta) Apply(r rope.Rope) rope.Rope {
	for i := len(d.edits) - 1; i >= 0; i-- {
		e := d.edits[i]
		r = r.Replace(e.Span.Start, e.Span.End, e.Text)
	}
	return r
}

// ApplyString is Apply for plain strings.
func (d Delta) ApplyString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + d.LenDiff())
	pos := 0
	for _, e := range d.edits {
		sb.WriteString(s[pos:e.Span.Start])
		sb.WriteString(e.Text)
		pos = e.Span.End
	}
	sb.WriteString(s[pos:])
	return sb.String()
}

// String lists the edits.
func (d Delta) String() string {
	parts := make([]string, len(d.edits))
	for i, e := range d.edits {
		parts[i] = e.String()
	}
	return "Delta{" + strings.Join(parts, ", ") + "}"
}
