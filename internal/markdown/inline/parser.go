package inline

import (
	"sort"
	"strings"

	"github.com/dshills/mdcore/internal/markdown/ast"
)

// span is a range in joined coordinates.
type span struct{ start, end int }

// item is an inline node in joined coordinates, converted to absolute
// offsets only once the whole leaf has been parsed.
type item struct {
	kind     ast.Kind
	span     span
	children []item

	inner    span
	target   span
	alias    span
	hasAlias bool
	label    span
	dest     span
}

type attempt struct {
	pos, end int
	closer   string
}

type parser struct {
	text   string
	starts []int
	lines  []ast.ContentLine

	failed map[attempt]bool
}

// Parse parses the inline content of a leaf block and adds the resulting
// nodes to b. The content lines are joined with "\n" so that constructs
// can span a soft break; every node is mapped back to source offsets.
//
// The returned ids tile the range from the first line's content start to
// the last line's end including its terminator: inline nodes, a SoftBreak
// token for each line break (covering the next line's prefix too), and a
// trailing LineEnding.
func Parse(b *ast.Builder, src string, base int, lines []ast.ContentLine) []ast.NodeID {
	if len(lines) == 0 {
		return nil
	}
	p := newParser(src, base, lines)
	items, _, _ := p.parse(0, len(p.text), "")

	ids := make([]ast.NodeID, 0, len(items)+1)
	for _, it := range items {
		ids = append(ids, p.emit(b, it))
	}
	last := lines[len(lines)-1]
	if last.Raw.End > last.Content.End {
		ids = append(ids, b.Add(ast.Node{
			Kind: ast.KindLineEnding,
			Span: ast.Span{Start: last.Content.End, End: last.Raw.End},
		}))
	}
	return ids
}

func newParser(src string, base int, lines []ast.ContentLine) *parser {
	p := &parser{
		starts: make([]int, len(lines)),
		lines:  lines,
		failed: make(map[attempt]bool),
	}
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		p.starts[i] = sb.Len()
		sb.WriteString(src[l.Content.Start-base : l.Content.End-base])
	}
	p.text = sb.String()
	return p
}

// abs maps a joined offset to a source offset. An offset on a line break
// maps to the end of the line before it.
func (p *parser) abs(j int) int {
	i := sort.Search(len(p.starts), func(i int) bool {
		return j <= p.starts[i]+p.lines[i].Content.Len()
	})
	if i == len(p.starts) {
		i--
	}
	return p.lines[i].Content.Start + j - p.starts[i]
}

func (p *parser) absSpan(s span) ast.Span {
	return ast.Span{Start: p.abs(s.start), End: p.abs(s.end)}
}

func (p *parser) emit(b *ast.Builder, it item) ast.NodeID {
	n := ast.Node{Kind: it.kind, Span: p.absSpan(it.span)}
	if len(it.children) > 0 {
		n.Children = make([]ast.NodeID, 0, len(it.children))
		for _, c := range it.children {
			n.Children = append(n.Children, p.emit(b, c))
		}
	}
	switch it.kind {
	case ast.KindCodeSpan, ast.KindEmphasis, ast.KindStrong:
		n.Inner = p.absSpan(it.inner)
	case ast.KindWikiLink:
		n.Target = p.absSpan(it.target)
		n.HasAlias = it.hasAlias
		if it.hasAlias {
			n.Alias = p.absSpan(it.alias)
		}
	case ast.KindLink:
		n.Label = p.absSpan(it.label)
		n.Dest = p.absSpan(it.dest)
	}
	return b.Add(n)
}

// parse scans text[pos:end] and stops at closer when it is non-empty.
// It returns the items, the position reached, and whether closer was found
// (in which case the position is that of the closer).
func (p *parser) parse(pos, end int, closer string) ([]item, int, bool) {
	var items []item
	textStart := pos
	flush := func(i int) {
		items = p.appendText(items, textStart, i)
	}

	i := pos
	for i < end {
		c := p.text[i]
		if closer != "" && p.closes(i, pos, end, closer) {
			flush(i)
			return items, i, true
		}
		switch {
		case c == ast.Escape && i+1 < end && isPunct(p.text[i+1]):
			i += 2
			continue
		case c == ast.CodeSpanDelimiter:
			it, next, ok := p.codeSpan(i, end)
			if ok {
				flush(i)
				items = append(items, it)
				i, textStart = next, next
			} else {
				i = next
			}
			continue
		case strings.HasPrefix(p.text[i:end], ast.WikiLinkOpen):
			if it, next, ok := p.wikiLink(i, end); ok {
				flush(i)
				items = append(items, it)
				i, textStart = next, next
				continue
			}
		case c == ast.LinkLabelOpen:
			if it, next, ok := p.link(i, end); ok {
				flush(i)
				items = append(items, it)
				i, textStart = next, next
				continue
			}
		case c == ast.EmphasisDelimiter[0]:
			if it, next, ok := p.emphasis(i, end); ok {
				flush(i)
				items = append(items, it)
				i, textStart = next, next
				continue
			}
		}
		i++
	}
	flush(end)
	return items, end, false
}

// closes reports whether closer ends a delimited run at i. The run must be
// non-empty and its last byte must not be whitespace.
func (p *parser) closes(i, pos, end int, closer string) bool {
	if i <= pos || !strings.HasPrefix(p.text[i:end], closer) {
		return false
	}
	return !isSpace(p.text[i-1])
}

// appendText adds text items for [start,end), splitting at line breaks.
func (p *parser) appendText(items []item, start, end int) []item {
	for start < end {
		i := strings.IndexByte(p.text[start:end], '\n')
		if i < 0 {
			return append(items, item{kind: ast.KindText, span: span{start, end}})
		}
		if i > 0 {
			items = append(items, item{kind: ast.KindText, span: span{start, start + i}})
		}
		items = append(items, item{kind: ast.KindSoftBreak, span: span{start + i, start + i + 1}})
		start += i + 1
	}
	return items
}

func (p *parser) delim(start, end int) item {
	return item{kind: ast.KindDelimiter, span: span{start, end}}
}

// codeSpan matches a backtick run at i with the next run of the same
// length. On failure next skips the whole opening run.
func (p *parser) codeSpan(i, end int) (item, int, bool) {
	n := runLength(p.text, i, end, ast.CodeSpanDelimiter)
	for j := i + n; j < end; {
		if p.text[j] != ast.CodeSpanDelimiter {
			j++
			continue
		}
		m := runLength(p.text, j, end, ast.CodeSpanDelimiter)
		if m == n {
			it := item{kind: ast.KindCodeSpan, span: span{i, j + m}, inner: span{i + n, j}}
			it.children = append(it.children, p.delim(i, i+n))
			if j > i+n {
				it.children = append(it.children, item{kind: ast.KindCodeText, span: span{i + n, j}})
			}
			it.children = append(it.children, p.delim(j, j+m))
			return it, j + m, true
		}
		j += m
	}
	return item{}, i + n, false
}

// wikiLink matches [[target]] or [[target|alias]]. The first "]]" closes
// the link and its content may hold at most one line break.
func (p *parser) wikiLink(i, end int) (item, int, bool) {
	open := i + len(ast.WikiLinkOpen)
	k := strings.Index(p.text[open:end], ast.WikiLinkClose)
	if k < 0 {
		return item{}, 0, false
	}
	k += open
	content := p.text[open:k]
	if strings.Count(content, "\n") > 1 {
		return item{}, 0, false
	}

	it := item{kind: ast.KindWikiLink, span: span{i, k + len(ast.WikiLinkClose)}}
	it.target = span{open, k}
	if sep := strings.IndexByte(content, ast.WikiLinkAliasSep); sep >= 0 {
		it.target = span{open, open + sep}
		it.alias = span{open + sep + 1, k}
		it.hasAlias = true
	}
	if strings.TrimSpace(p.text[it.target.start:it.target.end]) == "" {
		return item{}, 0, false
	}

	it.children = append(it.children, p.delim(i, open))
	it.children = p.appendText(it.children, it.target.start, it.target.end)
	if it.hasAlias {
		it.children = append(it.children, p.delim(it.target.end, it.alias.start))
		it.children = p.appendText(it.children, it.alias.start, it.alias.end)
	}
	it.children = append(it.children, p.delim(k, it.span.end))
	return it, it.span.end, true
}

// link matches [label](dest). Brackets in the label must balance, complete
// code spans inside it are skipped, and it may hold one line break. The
// destination may not contain whitespace.
func (p *parser) link(i, end int) (item, int, bool) {
	depth, breaks := 0, 0
	k := -1
scan:
	for j := i + 1; j < end; j++ {
		switch c := p.text[j]; {
		case c == ast.Escape && j+1 < end && isPunct(p.text[j+1]):
			j++
		case c == ast.CodeSpanDelimiter:
			if _, next, ok := p.codeSpan(j, end); ok {
				j = next - 1
			}
		case c == '\n':
			breaks++
			if breaks > 1 {
				return item{}, 0, false
			}
		case c == ast.LinkLabelOpen:
			depth++
		case c == ast.LinkLabelClose:
			if depth == 0 {
				k = j
				break scan
			}
			depth--
		}
	}
	if k < 0 || k+1 >= end || p.text[k+1] != ast.LinkDestOpen {
		return item{}, 0, false
	}
	d := k + 2
	for ; d < end && p.text[d] != ast.LinkDestClose; d++ {
		if isSpace(p.text[d]) {
			return item{}, 0, false
		}
	}
	if d >= end {
		return item{}, 0, false
	}

	it := item{kind: ast.KindLink, span: span{i, d + 1}, label: span{i + 1, k}, dest: span{k + 2, d}}
	it.children = append(it.children, p.delim(i, i+1))
	label, _, _ := p.parse(i+1, k, "")
	it.children = append(it.children, label...)
	it.children = append(it.children, p.delim(k, k+2))
	if d > k+2 {
		it.children = append(it.children, item{kind: ast.KindText, span: span{k + 2, d}})
	}
	it.children = append(it.children, p.delim(d, d+1))
	return it, d + 1, true
}

// emphasis tries strong emphasis first, then plain emphasis. An opener must
// be followed by a non-space byte; the closer must follow a non-space byte.
func (p *parser) emphasis(i, end int) (item, int, bool) {
	for _, d := range []string{ast.StrongDelimiter, ast.EmphasisDelimiter} {
		if it, next, ok := p.delimited(i, end, d); ok {
			return it, next, true
		}
	}
	return item{}, 0, false
}

func (p *parser) delimited(i, end int, d string) (item, int, bool) {
	open := i + len(d)
	if !strings.HasPrefix(p.text[i:end], d) || open >= end || isSpace(p.text[open]) {
		return item{}, 0, false
	}
	key := attempt{pos: open, end: end, closer: d}
	if p.failed[key] {
		return item{}, 0, false
	}
	inner, at, ok := p.parse(open, end, d)
	if !ok {
		p.failed[key] = true
		return item{}, 0, false
	}
	kind := ast.KindEmphasis
	if d == ast.StrongDelimiter {
		kind = ast.KindStrong
	}
	it := item{kind: kind, span: span{i, at + len(d)}, inner: span{open, at}}
	it.children = append(it.children, p.delim(i, open))
	it.children = append(it.children, inner...)
	it.children = append(it.children, p.delim(at, at+len(d)))
	return it, at + len(d), true
}

func runLength(s string, i, end int, c byte) int {
	n := 0
	for i+n < end && s[i+n] == c {
		n++
	}
	return n
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

func isPunct(c byte) bool {
	return c < 0x80 && strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
