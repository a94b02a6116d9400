package block

import "strings"

// Line is one physical line with the facts that can be known without any
// parser state. Offsets in Span and Next are absolute; the remaining
// offsets are relative to the line start.
type Line struct {
	// Span covers the line text without its terminator ("\n" or "\r\n").
	Span Span

	// Next is the absolute offset of the following line.
	Next int

	// Text is the line without its terminator.
	Text string

	// Blank is true when the line holds only spaces and tabs.
	Blank bool

	// QuoteDepth counts leading '>' markers, each optionally followed by
	// one space. QuoteEnd is the offset after the last of them.
	QuoteDepth int
	QuoteEnd   int

	// Indent is the whitespace width (in bytes) after the quote prefix.
	Indent int

	// Marker is the list marker after the quote prefix, when HasMarker.
	Marker    ListMarker
	HasMarker bool

	// Fence is the fence signature after the quote prefix, when HasFence.
	Fence    Fence
	HasFence bool
}

// Raw returns the absolute span including the terminator.
func (l Line) Raw() Span {
	return Span{Start: l.Span.Start, End: l.Next}
}

// Classify splits src into lines. base is the absolute offset of src[0].
// A final line without terminator is included when non-empty.
func Classify(src string, base int) []Line {
	lines := make([]Line, 0, strings.Count(src, "\n")+1)
	for pos := 0; pos < len(src); {
		end := len(src)
		next := len(src)
		if i := strings.IndexByte(src[pos:], '\n'); i >= 0 {
			end = pos + i
			next = end + 1
			if end > pos && src[end-1] == '\r' {
				end--
			}
		}
		l := ClassifyLine(src[pos:end])
		l.Span = Span{Start: base + pos, End: base + end}
		l.Next = base + next
		lines = append(lines, l)
		pos = next
	}
	return lines
}

// ClassifyLine computes the state-independent facts of one line of text
// (without terminator). Span and Next are left zero.
func ClassifyLine(text string) Line {
	l := Line{Text: text, Blank: isBlankFrom(text, 0)}
	pos := 0
	for {
		end, ok := QuoteAt(text, pos)
		if !ok {
			break
		}
		l.QuoteDepth++
		pos = end
	}
	l.QuoteEnd = pos
	i := pos
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	l.Indent = i - pos
	if m, ok := ListMarkerAt(text, i); ok && !ThematicBreakAt(text, i) {
		l.Marker, l.HasMarker = m, true
	}
	if f, ok := FenceAt(text, i); ok {
		l.Fence, l.HasFence = f, true
	}
	return l
}
