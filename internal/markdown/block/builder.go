package block

import (
	"strings"

	"github.com/dshills/mdcore/internal/markdown/ast"
	"github.com/dshills/mdcore/internal/markdown/inline"
)

// Span is a byte range into the document.
type Span = ast.Span

// container is an open BlockQuote, List or ListItem (or the document).
// Children are kept here until the container closes and are attached to
// its node in one step.
type container struct {
	kind     ast.Kind
	start    int
	lastEnd  int
	cut      int
	width    int
	marker   ListMarker
	children []ast.NodeID
	lines    []ast.ContentLine
}

// leaf is the open leaf block, if any.
type leaf struct {
	kind         ast.Kind
	lines        []ast.ContentLine
	level        int
	textStart    int
	fence        Fence
	closed       bool
	closingIndex int
}

type builder struct {
	src   string
	base  int
	nodes *ast.Builder
	stack []*container
	leaf  *leaf
}

// Parse builds the span tree for src. base is the absolute offset of src[0];
// every span in the result is absolute. Parsing never fails: input that
// matches no construct becomes paragraph text.
func Parse(src string, base int) *ast.Tree {
	lines := Classify(src, base)
	b := &builder{
		src:   src,
		base:  base,
		nodes: ast.NewBuilder(len(lines) * 4),
		stack: []*container{{kind: ast.KindDocument, start: base, lastEnd: base + len(src)}},
	}
	for _, l := range lines {
		b.addLine(l)
	}
	return b.finish()
}

func (b *builder) top() *container {
	return b.stack[len(b.stack)-1]
}

func (b *builder) addLine(l Line) {
	text := l.Text
	ls := l.Span.Start

	// Match open containers from the outside in.
	pos, matched, deepest := 0, 1, 0
	for i := 1; i < len(b.stack); i++ {
		c := b.stack[i]
		ok := false
		switch c.kind {
		case ast.KindBlockQuote:
			if end, found := QuoteAt(text, pos); found {
				pos, ok, deepest = end, true, i
			}
		case ast.KindList:
			ok = true
		case ast.KindListItem:
			if isBlankFrom(text, pos) {
				pos, _ = consumeIndent(text, pos, c.width)
				ok = true
			} else if p, found := consumeIndent(text, pos, c.width); found {
				pos, ok = p, true
			}
		}
		if !ok {
			break
		}
		c.cut = pos
		matched = i + 1
	}
	allMatched := matched == len(b.stack)

	// Raw leaves swallow matched lines.
	if lf := b.leaf; lf != nil && allMatched {
		switch lf.kind {
		case ast.KindFencedCode:
			b.leafLine(l, pos)
			if lf.fence.Closes(text, pos) {
				lf.closed = true
				b.closeLeaf()
			}
			b.endLine(l, len(b.stack)-1)
			return
		case ast.KindHTMLBlock:
			if !isBlankFrom(text, pos) {
				b.leafLine(l, pos)
				b.endLine(l, len(b.stack)-1)
				return
			}
		}
	}

	if !allMatched {
		b.closeTo(matched)
	}
	if top := b.top(); top.kind == ast.KindList {
		m, ok := ListMarkerAt(text, pos)
		if !ok || ThematicBreakAt(text, pos) || !sameList(top.marker, m) {
			b.closeTo(len(b.stack) - 1)
		}
	}

	// Open new containers.
	paragraphOpen := b.leaf != nil && b.leaf.kind == ast.KindParagraph
	opened := false
	for {
		if end, ok := QuoteAt(text, pos); ok {
			b.closeLeaf()
			b.push(&container{kind: ast.KindBlockQuote, start: ls + pos, cut: end}, l)
			pos, opened = end, true
			continue
		}
		m, ok := ListMarkerAt(text, pos)
		if !ok || ThematicBreakAt(text, pos) {
			break
		}
		if paragraphOpen && !opened && ((m.Ordered && m.Number != 1) || m.Empty(text)) {
			break
		}
		b.closeLeaf()
		if top := b.top(); top.kind != ast.KindList {
			b.push(&container{kind: ast.KindList, start: ls + m.Start, cut: pos, marker: m}, l)
		}
		width := m.Content - pos
		if m.Content == m.End {
			width++
		}
		content := min(m.Content, len(text))
		b.push(&container{kind: ast.KindListItem, start: ls + m.Start, cut: content, width: width, marker: m}, l)
		pos, opened = content, true
	}
	if opened {
		deepest = len(b.stack) - 1
	}

	if isBlankFrom(text, pos) {
		b.closeLeaf()
		b.endLine(l, deepest)
		return
	}

	if lf := b.leaf; lf != nil && lf.kind == ast.KindParagraph && !opened && !startsLeaf(text, pos) {
		b.leafLine(l, pos)
		b.endLine(l, len(b.stack)-1)
		return
	}

	b.closeLeaf()
	if f, ok := FenceAt(text, pos); ok {
		b.leaf = &leaf{kind: ast.KindFencedCode, fence: f}
		b.leafLine(l, pos)
	} else if level, start, ok := HeadingAt(text, pos); ok {
		b.leaf = &leaf{kind: ast.KindHeading, level: level, textStart: ls + start}
		b.leafLine(l, pos)
		b.closeLeaf()
	} else if ThematicBreakAt(text, pos) {
		b.leaf = &leaf{kind: ast.KindThematicBreak}
		b.leafLine(l, pos)
		b.closeLeaf()
	} else if HTMLStartAt(text, pos) {
		b.leaf = &leaf{kind: ast.KindHTMLBlock}
		b.leafLine(l, pos)
	} else {
		b.leaf = &leaf{kind: ast.KindParagraph}
		b.leafLine(l, pos)
	}
	b.endLine(l, len(b.stack)-1)
}

func startsLeaf(text string, pos int) bool {
	if _, ok := FenceAt(text, pos); ok {
		return true
	}
	if _, _, ok := HeadingAt(text, pos); ok {
		return true
	}
	return ThematicBreakAt(text, pos) || HTMLStartAt(text, pos)
}

// sameList reports whether m continues the list opened by first.
func sameList(first, m ListMarker) bool {
	return first.Ordered == m.Ordered && first.Char() == m.Char()
}

func (b *builder) push(c *container, l Line) {
	c.lastEnd = l.Next
	b.stack = append(b.stack, c)
}

// endLine records the line in every open container and extends the
// containers up to index deepest so that they cover it.
func (b *builder) endLine(l Line, deepest int) {
	for i, c := range b.stack {
		if i == 0 {
			continue
		}
		if i <= deepest {
			c.lastEnd = l.Next
		}
		c.lines = append(c.lines, contentLine(l, c.cut))
	}
}

func contentLine(l Line, cut int) ast.ContentLine {
	ls := l.Span.Start
	cut = min(cut, len(l.Text))
	return ast.ContentLine{
		Raw:     l.Raw(),
		Prefix:  Span{Start: ls, End: ls + cut},
		Content: Span{Start: ls + cut, End: l.Span.End},
	}
}

func (b *builder) leafLine(l Line, pos int) {
	b.leaf.lines = append(b.leaf.lines, contentLine(l, pos))
}

// closeTo closes containers until only n remain open.
func (b *builder) closeTo(n int) {
	for len(b.stack) > n {
		b.closeLeaf()
		c := b.top()
		b.stack = b.stack[:len(b.stack)-1]

		lines := c.lines
		for len(lines) > 0 && lines[len(lines)-1].Raw.Start >= c.lastEnd {
			lines = lines[:len(lines)-1]
		}
		span := Span{Start: c.start, End: c.lastEnd}
		node := ast.Node{
			Kind:     c.kind,
			Span:     span,
			Children: b.fillGaps(span, c.children, true),
			View:     viewOf(lines, span),
		}
		if c.kind == ast.KindList || c.kind == ast.KindListItem {
			node.Marker = c.marker.Text
			node.Ordered = c.marker.Ordered
			node.Task = c.kind == ast.KindListItem && c.marker.Task
		}
		id := b.nodes.Add(node)
		parent := b.top()
		parent.children = append(parent.children, id)
	}
}

// viewOf returns a contiguous view when no line carries a prefix.
func viewOf(lines []ast.ContentLine, span Span) ast.ContentView {
	if len(lines) == 0 {
		return ast.Contiguous(span)
	}
	for _, l := range lines {
		if !l.Prefix.IsEmpty() {
			return ast.Lines(lines)
		}
	}
	return ast.Contiguous(Span{Start: lines[0].Content.Start, End: lines[len(lines)-1].Content.End})
}

func (b *builder) closeLeaf() {
	lf := b.leaf
	if lf == nil {
		return
	}
	b.leaf = nil

	first, last := lf.lines[0], lf.lines[len(lf.lines)-1]
	span := Span{Start: first.Content.Start, End: last.Raw.End}
	node := ast.Node{Kind: lf.kind, Span: span, View: viewOf(lf.lines, span)}

	switch lf.kind {
	case ast.KindParagraph:
		node.Children = inline.Parse(b.nodes, b.src, b.base, lf.lines)
	case ast.KindHeading:
		node.Level = lf.level
		marker := b.token(ast.KindMarker, Span{Start: span.Start, End: lf.textStart})
		text := first
		text.Content.Start = lf.textStart
		node.Children = append([]ast.NodeID{marker}, inline.Parse(b.nodes, b.src, b.base, []ast.ContentLine{text})...)
	case ast.KindFencedCode:
		node.Info = lf.fence.Info
		node.Lang = lf.fence.Lang()
		node.Closed = lf.closed
		node.Children = b.fenceTokens(lf, span)
		node.Inner = Span{Start: first.Raw.End, End: last.Raw.End}
		if lf.closed {
			node.Inner.End = last.Raw.Start
		}
	case ast.KindThematicBreak, ast.KindHTMLBlock:
	}

	id := b.nodes.Add(node)
	c := b.top()
	c.children = append(c.children, id)
}

func (b *builder) fenceTokens(lf *leaf, span Span) []ast.NodeID {
	first := lf.lines[0]
	out := []ast.NodeID{b.token(ast.KindMarker, Span{Start: span.Start, End: first.Raw.End})}
	interior := lf.lines[1:]
	var closing *ast.ContentLine
	if lf.closed {
		closing = &interior[len(interior)-1]
		interior = interior[:len(interior)-1]
	}
	if len(interior) > 0 {
		code := Span{Start: interior[0].Raw.Start, End: interior[len(interior)-1].Raw.End}
		out = append(out, b.token(ast.KindCodeText, code))
	}
	if closing != nil {
		out = append(out, b.token(ast.KindMarker, closing.Raw))
	}
	return out
}

func (b *builder) token(kind ast.Kind, s Span) ast.NodeID {
	return b.nodes.Add(ast.Node{Kind: kind, Span: s})
}

// fillGaps interleaves children with syntax tokens covering every byte of
// span that no child covers. Gaps are split at line ends. When marked, the
// first segment of a gap before the first child is the container marker.
func (b *builder) fillGaps(span Span, children []ast.NodeID, marked bool) []ast.NodeID {
	out := make([]ast.NodeID, 0, len(children)*2+1)
	pos := span.Start
	for i, c := range children {
		cs := b.nodes.Node(c).Span
		if cs.Start > pos {
			out = b.gap(out, pos, cs.Start, marked && i == 0)
		}
		out = append(out, c)
		pos = cs.End
	}
	if pos < span.End {
		out = b.gap(out, pos, span.End, marked && len(children) == 0)
	}
	return out
}

func (b *builder) gap(out []ast.NodeID, start, end int, marker bool) []ast.NodeID {
	for start < end {
		segEnd := end
		if i := strings.IndexByte(b.src[start-b.base:end-b.base], '\n'); i >= 0 {
			segEnd = start + i + 1
		}
		text := b.src[start-b.base : segEnd-b.base]
		kind := ast.KindPrefix
		switch {
		case marker:
			kind = ast.KindMarker
		case strings.TrimLeft(text, " \t\r\n") == "" && (strings.HasSuffix(text, "\n") || segEnd == b.base+len(b.src)):
			kind = ast.KindBlankLine
		}
		out = append(out, b.token(kind, Span{Start: start, End: segEnd}))
		marker = false
		start = segEnd
	}
	return out
}

func (b *builder) finish() *ast.Tree {
	b.closeLeaf()
	b.closeTo(1)
	doc := b.stack[0]
	span := Span{Start: b.base, End: b.base + len(b.src)}
	root := b.nodes.Add(ast.Node{
		Kind:     ast.KindDocument,
		Span:     span,
		Children: b.fillGaps(span, doc.children, false),
		View:     ast.Contiguous(span),
	})
	return b.nodes.Finish(root)
}
