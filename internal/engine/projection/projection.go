package projection

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/markdown/ast"
)

// Source is the read access a projection needs into document bytes.
type Source interface {
	Slice(s buffer.Span) string
}

// Join returns the content of v with line prefixes hidden. Lines are joined
// with "\n" whatever their terminator in the source.
func Join(src Source, v ast.ContentView) string {
	if v.IsContiguous() {
		return src.Slice(v.Span())
	}
	lines := v.Lines()
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = src.Slice(l.Content)
	}
	return strings.Join(parts, "\n")
}

// WriteBack computes the edits that make the content of v read text,
// keeping every line prefix of v in place.
//
// Text lines map one to one onto view lines. Extra lines are appended
// after the last line, each with the last line's terminator and a
// continuation prefix derived from its prefix. Surplus view lines are
// removed together with their prefixes. A contiguous view is replaced as
// one span. Only the differing bytes of each line are rewritten.
func WriteBack(src Source, v ast.ContentView, text string) ([]buffer.Edit, error) {
	if !utf8.ValidString(text) {
		return nil, buffer.ErrInvalidUTF8
	}
	if v.IsContiguous() {
		s := v.Span()
		if e, ok := minimalEdit(s, src.Slice(s), text); ok {
			return []buffer.Edit{e}, nil
		}
		return nil, nil
	}

	lines := v.Lines()
	if len(lines) == 0 {
		return nil, fmt.Errorf("write back: %w: empty view", buffer.ErrRangeInvalid)
	}
	want := strings.Split(text, "\n")
	n, m := len(lines), len(want)
	k := min(n, m)

	var edits []buffer.Edit
	for i := 0; i < k-1; i++ {
		c := lines[i].Content
		if e, ok := minimalEdit(c, src.Slice(c), want[i]); ok {
			edits = append(edits, e)
		}
	}

	// The last shared line also absorbs added or removed lines.
	last := lines[k-1]
	span := last.Content
	repl := want[k-1]
	switch {
	case m < n:
		span.End = lines[n-1].Content.End
	case m > n:
		term := src.Slice(buffer.Span{Start: last.Content.End, End: last.Raw.End})
		if term == "" {
			term = terminator(src, lines)
		}
		prefix := ContinuationPrefix(src.Slice(last.Prefix))
		var sb strings.Builder
		sb.WriteString(repl)
		for _, l := range want[n:] {
			sb.WriteString(term)
			sb.WriteString(prefix)
			sb.WriteString(l)
		}
		repl = sb.String()
	}
	if e, ok := minimalEdit(span, src.Slice(span), repl); ok {
		edits = append(edits, e)
	}
	return edits, nil
}

// terminator returns the first line terminator used by the view, or "\n".
func terminator(src Source, lines []ast.ContentLine) string {
	for _, l := range lines {
		if t := src.Slice(buffer.Span{Start: l.Content.End, End: l.Raw.End}); t != "" {
			return t
		}
	}
	return "\n"
}

// ContinuationPrefix turns the prefix of a line into the prefix of a line
// continuing the same block: quote markers and whitespace are kept, list
// markers become spaces of the same width.
func ContinuationPrefix(prefix string) string {
	b := []byte(prefix)
	for i, c := range b {
		if c != ast.BlockQuoteMarker && c != ' ' && c != '\t' {
			b[i] = ' '
		}
	}
	return string(b)
}

// minimalEdit returns the edit turning old, the text of span, into repl,
// trimmed to the differing bytes on rune boundaries.
func minimalEdit(span buffer.Span, old, repl string) (buffer.Edit, bool) {
	if old == repl {
		return buffer.Edit{}, false
	}
	p := 0
	for p < len(old) && p < len(repl) && old[p] == repl[p] {
		p++
	}
	for (p < len(old) && !utf8.RuneStart(old[p])) || (p < len(repl) && !utf8.RuneStart(repl[p])) {
		p--
	}
	s := 0
	for s < len(old)-p && s < len(repl)-p && old[len(old)-1-s] == repl[len(repl)-1-s] {
		s++
	}
	for s > 0 && (!utf8.RuneStart(old[len(old)-s]) || !utf8.RuneStart(repl[len(repl)-s])) {
		s--
	}
	return buffer.NewReplace(span.Start+p, span.End-s, repl[p:len(repl)-s]), true
}

// LocalOffset maps a buffer offset to an offset in Join's output. Offsets
// in a line prefix map to the start of that line's content and offsets in a
// terminator to its end. It returns false for offsets outside the view.
func LocalOffset(v ast.ContentView, off int) (int, bool) {
	if v.IsContiguous() {
		s := v.Span()
		if off < s.Start || off > s.End {
			return 0, false
		}
		return off - s.Start, true
	}
	local := 0
	for _, l := range v.Lines() {
		if off >= l.Raw.Start && (off < l.Raw.End || off == l.Content.End) {
			return local + min(max(off, l.Content.Start), l.Content.End) - l.Content.Start, true
		}
		local += l.Content.Len() + 1
	}
	return 0, false
}

// GlobalOffset maps an offset in Join's output back to the buffer. It
// returns false when local lies past the end of the content.
func GlobalOffset(v ast.ContentView, local int) (int, bool) {
	if local < 0 {
		return 0, false
	}
	if v.IsContiguous() {
		s := v.Span()
		if local > s.Len() {
			return 0, false
		}
		return s.Start + local, true
	}
	for _, l := range v.Lines() {
		if local <= l.Content.Len() {
			return l.Content.Start + local, true
		}
		local -= l.Content.Len() + 1
	}
	return 0, false
}

// DisplayWidth returns the number of terminal cells text occupies, with
// tabs advancing to the next multiple of ast.TabWidth.
func DisplayWidth(text string) int {
	col := 0
	for _, r := range text {
		if r == '\t' {
			col += ast.TabWidth - col%ast.TabWidth
			continue
		}
		col += runewidth.RuneWidth(r)
	}
	return col
}
