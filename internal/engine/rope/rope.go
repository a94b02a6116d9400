package rope

import "strings"

// ByteOffset is an absolute byte position in the rope.
type ByteOffset = int

// Rope is an immutable sequence of bytes. The zero value is an empty rope.
type Rope struct {
	root *node
}

// New returns an empty rope.
func New() Rope {
	return Rope{}
}

// FromString builds a balanced rope holding s.
func FromString(s string) Rope {
	chunks := splitIntoChunks(s)
	if len(chunks) == 0 {
		return Rope{}
	}
	leaves := make([]*node, 0, len(chunks)/MaxChunksPerLeaf+1)
	for i := 0; i < len(chunks); i += MaxChunksPerLeaf {
		end := min(i+MaxChunksPerLeaf, len(chunks))
		group := make([]chunk, end-i)
		copy(group, chunks[i:end])
		leaves = append(leaves, newLeaf(group))
	}
	return Rope{root: groupChildren(leaves)}
}

// Len returns the byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.len()
}

// IsEmpty reports whether the rope holds no bytes.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// LineCount returns the number of lines, which is the newline count plus one.
func (r Rope) LineCount() int {
	if r.root == nil {
		return 1
	}
	return r.root.summary.Lines + 1
}

// Summary returns the metrics of the whole rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return TextSummary{}
	}
	return r.root.summary
}

// String returns the full text.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.Len())
	r.root.writeTo(&sb)
	return sb.String()
}

// Slice returns the bytes in [start, end), clamped to the rope.
func (r Rope) Slice(start, end ByteOffset) string {
	start, end = max(start, 0), min(end, r.Len())
	if r.root == nil || start >= end {
		return ""
	}
	var sb strings.Builder
	sb.Grow(end - start)
	r.root.writeRange(&sb, start, end)
	return sb.String()
}

// Split returns ropes holding [0, at) and [at, len).
func (r Rope) Split(at ByteOffset) (Rope, Rope) {
	if r.root == nil || at <= 0 {
		return Rope{}, r
	}
	if at >= r.Len() {
		return r, Rope{}
	}
	left, right := r.root.split(at)
	return Rope{root: left}, Rope{root: right}
}

// Concat returns r followed by other.
func (r Rope) Concat(other Rope) Rope {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Rope{root: concat(r.root, other.root)}
}

// Insert returns a rope with text inserted at offset.
func (r Rope) Insert(offset ByteOffset, text string) Rope {
	return r.Replace(offset, offset, text)
}

// Delete returns a rope without the bytes in [start, end).
func (r Rope) Delete(start, end ByteOffset) Rope {
	return r.Replace(start, end, "")
}

// Replace returns a rope where [start, end) is replaced by text.
// Offsets are clamped to the rope.
func (r Rope) Replace(start, end ByteOffset, text string) Rope {
	start, end = max(start, 0), min(end, r.Len())
	if end < start {
		end = start
	}
	if start == end && text == "" {
		return r
	}
	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(FromString(text)).Concat(right)
}

// LineOf returns the 0-based line containing offset.
func (r Rope) LineOf(offset ByteOffset) int {
	if r.root == nil || offset <= 0 {
		return 0
	}
	return r.root.linesBefore(min(offset, r.Len()))
}

// LineStart returns the offset of the first byte of line (0-based).
// Lines past the end map to Len.
func (r Rope) LineStart(line int) ByteOffset {
	if r.root == nil || line <= 0 {
		return 0
	}
	if line > r.root.summary.Lines {
		return r.Len()
	}
	return r.root.offsetAfterNewline(line)
}

// LineEnd returns the offset just past the terminator of line, or Len for
// the last line.
func (r Rope) LineEnd(line int) ByteOffset {
	return r.LineStart(line + 1)
}

// LineStartAt returns the start of the line containing offset.
func (r Rope) LineStartAt(offset ByteOffset) ByteOffset {
	return r.LineStart(r.LineOf(offset))
}

// Height returns the tree height, used by balance tests.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.height) + 1
}
