package block

import (
	"strings"

	"github.com/dshills/mdcore/internal/markdown/ast"
)

// Recognizers for block openers. Each works on a line's text (terminator
// removed) from a byte position and reports positions relative to the
// line start.

// skipIndent skips up to ast.MaxBlockIndent spaces.
func skipIndent(text string, pos int) int {
	for i := 0; i < ast.MaxBlockIndent && pos < len(text) && text[pos] == ' '; i++ {
		pos++
	}
	return pos
}

// isBlankFrom reports whether text holds only spaces and tabs from pos on.
func isBlankFrom(text string, pos int) bool {
	for i := pos; i < len(text); i++ {
		if text[i] != ' ' && text[i] != '\t' {
			return false
		}
	}
	return true
}

// QuoteAt recognizes a blockquote marker (up to three spaces, '>', and one
// optional space) at pos and returns the position after it.
func QuoteAt(text string, pos int) (int, bool) {
	i := skipIndent(text, pos)
	if i >= len(text) || text[i] != ast.BlockQuoteMarker {
		return pos, false
	}
	i++
	if i < len(text) && text[i] == ' ' {
		i++
	}
	return i, true
}

// consumeIndent consumes whitespace at pos until width columns are covered.
// Tabs advance to the next multiple of ast.TabWidth.
func consumeIndent(text string, pos, width int) (int, bool) {
	col := 0
	for pos < len(text) && col < width {
		switch text[pos] {
		case ' ':
			col++
		case '\t':
			col += ast.TabWidth - col%ast.TabWidth
		default:
			return pos, false
		}
		pos++
	}
	return pos, col >= width
}

// ListMarker describes a list marker found on a line.
type ListMarker struct {
	// Start is the offset of the marker character, End the offset after
	// the marker (digits and delimiter included), Content the offset where
	// item content begins.
	Start, End, Content int

	Text    string
	Ordered bool
	Number  int
	Task    bool
}

// Char returns the bullet character, or the delimiter for ordered markers.
func (m ListMarker) Char() byte {
	return m.Text[len(m.Text)-1]
}

// Empty reports whether the item has no content on its first line.
func (m ListMarker) Empty(text string) bool {
	return isBlankFrom(text, m.End)
}

// ListMarkerAt recognizes a bullet or ordered list marker at pos.
func ListMarkerAt(text string, pos int) (ListMarker, bool) {
	i := skipIndent(text, pos)
	if i >= len(text) {
		return ListMarker{}, false
	}
	m := ListMarker{Start: i}
	switch c := text[i]; {
	case strings.IndexByte(ast.BulletMarkers, c) >= 0:
		m.End = i + 1
	case c >= '0' && c <= '9':
		j := i
		for j < len(text) && j-i < ast.MaxOrderedDigits && text[j] >= '0' && text[j] <= '9' {
			m.Number = m.Number*10 + int(text[j]-'0')
			j++
		}
		if j >= len(text) || strings.IndexByte(ast.OrderedDelimiters, text[j]) < 0 {
			return ListMarker{}, false
		}
		m.Ordered = true
		m.End = j + 1
	default:
		return ListMarker{}, false
	}
	m.Text = text[m.Start:m.End]

	if m.End == len(text) {
		m.Content = m.End
		return m, true
	}
	if text[m.End] != ' ' && text[m.End] != '\t' {
		return ListMarker{}, false
	}
	j := m.End
	for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
		j++
	}
	switch {
	case j == len(text):
		m.Content = m.End + 1
	case j-m.End > ast.ContentIndentLimit:
		m.Content = m.End + 1
	default:
		m.Content = j
	}
	m.Task = isTaskBox(text[m.Content:])
	return m, true
}

func isTaskBox(s string) bool {
	if len(s) < 3 || s[0] != '[' || s[2] != ']' {
		return false
	}
	if s[1] != ' ' && strings.IndexByte(ast.TaskCheckedMarkers, s[1]) < 0 {
		return false
	}
	return len(s) == 3 || s[3] == ' ' || s[3] == '\t'
}

// ThematicBreakAt recognizes three or more '-', '*' or '_' (all the same,
// optionally separated by spaces) filling the rest of the line.
func ThematicBreakAt(text string, pos int) bool {
	i := skipIndent(text, pos)
	if i >= len(text) || strings.IndexByte(ast.ThematicBreakChars, text[i]) < 0 {
		return false
	}
	c, n := text[i], 0
	for ; i < len(text); i++ {
		switch text[i] {
		case c:
			n++
		case ' ', '\t':
		default:
			return false
		}
	}
	return n >= ast.MinThematicBreak
}

// HeadingAt recognizes an ATX heading opener and returns its level and the
// offset where the heading text begins.
func HeadingAt(text string, pos int) (level, content int, ok bool) {
	i := skipIndent(text, pos)
	j := i
	for j < len(text) && text[j] == ast.HeadingMarker {
		j++
	}
	level = j - i
	if level == 0 || level > ast.MaxHeadingLevel {
		return 0, 0, false
	}
	if j < len(text) && text[j] != ' ' && text[j] != '\t' {
		return 0, 0, false
	}
	for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
		j++
	}
	return level, j, true
}

// Fence describes a fence line.
type Fence struct {
	Char byte
	Len  int
	Info string
}

// FenceAt recognizes an opening code fence at pos.
func FenceAt(text string, pos int) (Fence, bool) {
	i := skipIndent(text, pos)
	if i >= len(text) || (text[i] != ast.FenceBacktick && text[i] != ast.FenceTilde) {
		return Fence{}, false
	}
	c, j := text[i], i
	for j < len(text) && text[j] == c {
		j++
	}
	if j-i < ast.MinFenceLength {
		return Fence{}, false
	}
	info := strings.TrimSpace(text[j:])
	if c == ast.FenceBacktick && strings.IndexByte(info, ast.FenceBacktick) >= 0 {
		return Fence{}, false
	}
	return Fence{Char: c, Len: j - i, Info: info}, true
}

// Lang returns the first word of the info string.
func (f Fence) Lang() string {
	if i := strings.IndexAny(f.Info, " \t"); i >= 0 {
		return f.Info[:i]
	}
	return f.Info
}

// Closes reports whether the line at pos closes a fence opened by f.
func (f Fence) Closes(text string, pos int) bool {
	i := skipIndent(text, pos)
	j := i
	for j < len(text) && text[j] == f.Char {
		j++
	}
	return j-i >= f.Len && isBlankFrom(text, j)
}

// HTMLStartAt recognizes the start of a raw HTML block: '<' followed by a
// letter, '/', '!' or '?'.
func HTMLStartAt(text string, pos int) bool {
	i := skipIndent(text, pos)
	if i+1 >= len(text) || text[i] != ast.HTMLOpen {
		return false
	}
	c := text[i+1]
	return c == '/' || c == '!' || c == '?' || (c|0x20 >= 'a' && c|0x20 <= 'z')
}
