package buffer

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/mdcore/internal/engine/rope"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrEditsOverlap     = errors.New("edits overlap")
	ErrInvalidUTF8      = errors.New("text is not valid UTF-8")
	ErrNotCharBoundary  = errors.New("offset splits a UTF-8 sequence")
)

// Buffer holds the exact bytes of one document. Content is kept verbatim:
// no line-ending or whitespace normalization ever happens.
//
// A Buffer is owned by a single document and is not safe for concurrent use.
type Buffer struct {
	rope rope.Rope
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{rope: rope.New()}
}

// FromString creates a buffer holding s, which must be valid UTF-8.
func FromString(s string) (*Buffer, error) {
	if !utf8.ValidString(s) {
		return nil, ErrInvalidUTF8
	}
	return &Buffer{rope: rope.FromString(s)}, nil
}

// FromBytes creates a buffer holding a copy of b, which must be valid UTF-8.
func FromBytes(b []byte) (*Buffer, error) {
	return FromString(string(b))
}

// Len returns the byte length.
func (b *Buffer) Len() ByteOffset {
	return b.rope.Len()
}

// Text returns the full content.
func (b *Buffer) Text() string {
	return b.rope.String()
}

// Bytes returns the full content as a new byte slice.
func (b *Buffer) Bytes() []byte {
	return []byte(b.rope.String())
}

// Rope returns the current immutable rope.
func (b *Buffer) Rope() rope.Rope {
	return b.rope
}

// Slice returns the bytes of s, clamped to the buffer.
func (b *Buffer) Slice(s Span) string {
	return b.rope.Slice(s.Start, s.End)
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return b.rope.LineCount()
}

// LineOf returns the 0-based line containing offset.
func (b *Buffer) LineOf(offset ByteOffset) int {
	return b.rope.LineOf(offset)
}

// LineStart returns the offset at which line begins.
func (b *Buffer) LineStart(line int) ByteOffset {
	return b.rope.LineStart(line)
}

// LineSpan returns the span of the line containing offset, including its
// terminator.
func (b *Buffer) LineSpan(offset ByteOffset) Span {
	line := b.rope.LineOf(offset)
	return Span{Start: b.rope.LineStart(line), End: b.rope.LineEnd(line)}
}

// IsCharBoundary reports whether offset does not split a UTF-8 sequence.
func (b *Buffer) IsCharBoundary(offset ByteOffset) bool {
	if offset <= 0 || offset >= b.Len() {
		return offset == 0 || offset == b.Len()
	}
	s := b.rope.Slice(offset, offset+1)
	return s[0]&0xC0 != 0x80
}

// CheckSpan validates that s lies inside the buffer on character boundaries.
func (b *Buffer) CheckSpan(s Span) error {
	if !s.IsValid() {
		return fmt.Errorf("%w: %s", ErrRangeInvalid, s)
	}
	if s.End > b.Len() {
		return fmt.Errorf("%w: %s exceeds length %d", ErrOffsetOutOfRange, s, b.Len())
	}
	if !b.IsCharBoundary(s.Start) || !b.IsCharBoundary(s.End) {
		return fmt.Errorf("%w: %s", ErrNotCharBoundary, s)
	}
	return nil
}

// Validate checks that every edit of d can be applied to the buffer.
func (b *Buffer) Validate(d Delta) error {
	for _, e := range d.edits {
		if err := b.CheckSpan(e.Span); err != nil {
			return err
		}
		if !utf8.ValidString(e.Text) {
			return ErrInvalidUTF8
		}
	}
	return nil
}

// Apply validates and applies d, returning the delta that undoes it.
// On error the buffer is unchanged.
func (b *Buffer) Apply(d Delta) (Delta, error) {
	if err := b.Validate(d); err != nil {
		return Delta{}, err
	}
	inverse := d.Invert(b.rope)
	b.rope = d.Apply(b.rope)
	return inverse, nil
}

// Snapshot returns an immutable view of the current content.
func (b *Buffer) Snapshot() rope.Rope {
	return b.rope
}
