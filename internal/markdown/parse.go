package markdown

import (
	"sort"

	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/markdown/ast"
	"github.com/dshills/mdcore/internal/markdown/block"
)

// Source is the text a tree is reparsed against. Reparse reads only the
// lines it parses again. *buffer.Buffer satisfies it.
type Source interface {
	Len() int
	Slice(s ast.Span) string
	LineOf(offset int) int
	LineStart(line int) int
}

// Parse builds the span tree of src.
func Parse(src string) *ast.Tree {
	return block.Parse(src, 0)
}

// Reparse updates old, the tree of the text before d was applied, to the
// tree of src, the text after. Parsing restarts at the last top-level
// block, or the last item of a top-level list, that ends before the edit
// and stops at the first untouched block or item after it where the new
// parse lines up with the old one. The rest is copied with its offsets
// shifted. The result equals a full parse of src.
//
// The returned region is the span of src, in new coordinates, that was
// parsed again. It is empty when d is empty.
func Reparse(old *ast.Tree, src Source, d buffer.Delta) (*ast.Tree, ast.Span) {
	hull, ok := d.Hull()
	if !ok {
		return old, ast.Span{}
	}
	all := ast.Span{Start: 0, End: src.Len()}
	if len(old.Children(old.Root())) == 0 {
		return Parse(src.Slice(all)), all
	}
	r := &reparse{old: old, src: src, hull: hull, shift: d.LenDiff()}
	r.end = hull.End + r.shift
	r.restart()
	if t, region, ok := r.run(); ok {
		return t, region
	}
	// The item the parse restarted at did not open the list again; start
	// over from the enclosing top-level block.
	r.head = ast.NoNode
	r.rs = r.topRestart()
	t, region, _ := r.run()
	return t, region
}

type reparse struct {
	old   *ast.Tree
	src   Source
	hull  ast.Span
	shift int
	end   int // hull end in new coordinates

	rs   int        // restart offset
	list ast.NodeID // top-level list holding the end of the edit, or NoNode
	head ast.NodeID // item of list the parse restarts at, or NoNode
}

// sync names where the new parse rejoins the old tree.
type sync int

const (
	syncEnd   sync = iota // no rejoin: parsed to the end of src
	syncBlock             // at an old top-level block
	syncItem              // at an old item of list
)

type resync struct {
	kind     sync
	oldStart int // old offset of the block or item
	line     int // new offset of its line
}

// restart picks where parsing starts again. A top-level block always
// starts with a fresh parser state, and so does an item of a top-level
// list apart from the list it joins.
func (r *reparse) restart() {
	r.rs = r.topRestart()
	r.list, r.head = ast.NoNode, ast.NoNode

	kids := r.old.Children(r.old.Root())
	li := sort.Search(len(kids), func(i int) bool {
		return r.old.Node(kids[i]).Span.End > r.hull.End
	})
	if li == len(kids) {
		return
	}
	n := r.old.Node(kids[li])
	if n.Kind != ast.KindList || n.Span.Start > r.hull.End || !n.View.IsContiguous() {
		return
	}
	r.list = kids[li]

	items := r.old.Children(r.list)
	j := sort.Search(len(items), func(i int) bool {
		return r.old.Node(items[i]).Span.End >= r.hull.Start
	})
	for j--; j >= 0; j-- {
		if it := r.old.Node(items[j]); it.Kind == ast.KindListItem {
			r.head = items[j]
			r.rs = r.lineStart(it.Span.Start)
			return
		}
	}
}

// topRestart returns the line of the last top-level block that ends
// before the edit.
func (r *reparse) topRestart() int {
	kids := r.old.Children(r.old.Root())
	i0 := sort.Search(len(kids), func(i int) bool {
		return r.old.Node(kids[i]).Span.End >= r.hull.Start
	})
	for i := i0 - 1; i >= 0; i-- {
		if n := r.old.Node(kids[i]); n.Kind.IsBlock() {
			return r.lineStart(n.Span.Start)
		}
	}
	return 0
}

// run parses from rs up to the first point where the new tree rejoins the
// old one: an item of list, a top-level block, or the end of the text.
func (r *reparse) run() (*ast.Tree, ast.Span, bool) {
	var (
		out    *ast.Tree
		region ast.Span
	)
	try := func(kind sync) func(*ast.Node) bool {
		return func(n *ast.Node) bool {
			at := resync{kind: kind, oldStart: n.Span.Start, line: r.lineStart(n.Span.Start + r.shift)}
			sub := r.parse(r.rs, r.lineEnd(n.Span.Start+r.shift))
			t, ok := r.assemble(sub, at)
			if ok {
				out, region = t, ast.Span{Start: r.rs, End: at.line}
			}
			return ok
		}
	}

	if r.list != ast.NoNode {
		if r.resync(r.old.Children(r.list), isItem, try(syncItem)) {
			return out, region, true
		}
	}
	if r.resync(r.old.Children(r.old.Root()), ast.Kind.IsBlock, try(syncBlock)) {
		return out, region, true
	}
	end := r.src.Len()
	t, ok := r.assemble(r.parse(r.rs, end), resync{kind: syncEnd, line: end})
	return t, ast.Span{Start: r.rs, End: end}, ok
}

// resync offers try the nodes of kids that start on an untouched line
// after the edit, at exponentially growing distances, until one succeeds.
func (r *reparse) resync(kids []ast.NodeID, match func(ast.Kind) bool, try func(*ast.Node) bool) bool {
	j := sort.Search(len(kids), func(i int) bool {
		return r.old.Node(kids[i]).Span.Start >= r.hull.End
	})
	for step := 1; ; step *= 2 {
		for j < len(kids) && !r.untouched(r.old.Node(kids[j]), match) {
			j++
		}
		if j >= len(kids) {
			return false
		}
		if try(r.old.Node(kids[j])) {
			return true
		}
		j += step
	}
}

func (r *reparse) untouched(n *ast.Node, match func(ast.Kind) bool) bool {
	return match(n.Kind) && n.Span.Start >= r.hull.End && r.lineStart(n.Span.Start+r.shift) > r.end
}

func (r *reparse) parse(start, end int) *ast.Tree {
	return block.Parse(r.src.Slice(ast.Span{Start: start, End: end}), start)
}

// assemble builds the new tree from the old top-level blocks before rs,
// the blocks of sub and the old blocks from at on, shifted. When the parse
// restarted at an item, the first list of sub is joined to the old items
// before it; when it rejoins at an item, the last list of sub is joined to
// the old items from there on.
func (r *reparse) assemble(sub *ast.Tree, at resync) (*ast.Tree, bool) {
	old := r.old
	subKids := sub.Children(sub.Root())
	first, last := -1, -1
	if r.head != ast.NoNode {
		first = 0
		for first < len(subKids) && !sub.Node(subKids[first]).Kind.IsBlock() {
			first++
		}
		if first == len(subKids) || !isList(sub, subKids[first], old.Node(r.head).Span.Start) {
			return nil, false
		}
	}
	if at.kind == syncItem {
		last = len(subKids) - 1
		if !isList(sub, subKids[last], -1) || !startsChild(sub, subKids[last], at.oldStart+r.shift, isItem) {
			return nil, false
		}
	}
	if at.kind == syncBlock && !startsChild(sub, sub.Root(), at.oldStart+r.shift, ast.Kind.IsBlock) {
		return nil, false
	}

	b := ast.NewBuilder(old.Len() + sub.Len())
	var children []ast.NodeID
	for _, c := range old.Children(old.Root()) {
		if old.Node(c).Span.End > r.rs {
			break
		}
		children = append(children, b.Copy(old, c, 0))
	}
	for i, c := range subKids {
		n := sub.Node(c)
		switch {
		case at.kind == syncBlock && n.Span.Start >= at.line:
		case i < first:
			// Before the restart item, sub only holds the indentation of
			// its line, which the old list covers unless the item is the
			// list's first.
			if n.Span.End <= old.Node(r.list).Span.Start {
				children = append(children, b.Copy(sub, c, 0))
			}
		case i == first || i == last:
			children = append(children, r.joinList(b, sub, c, i == first, i == last, at))
		default:
			children = append(children, b.Copy(sub, c, 0))
		}
	}
	for _, c := range old.Children(old.Root()) {
		n := old.Node(c)
		switch at.kind {
		case syncBlock:
			if n.Span.Start >= r.hull.End && n.Span.Start+r.shift >= at.line {
				children = append(children, b.Copy(old, c, r.shift))
			}
		case syncItem:
			if n.Span.Start >= old.Node(r.list).Span.End {
				children = append(children, b.Copy(old, c, r.shift))
			}
		}
	}

	span := ast.Span{Start: 0, End: r.src.Len()}
	root := b.Add(ast.Node{Kind: ast.KindDocument, Span: span, Children: children, View: ast.Contiguous(span)})
	return b.Finish(root), true
}

// joinList copies the list c of sub. With head, the old items before the
// restart item come first; with tail, the old items from the resync item on
// come last.
func (r *reparse) joinList(b *ast.Builder, sub *ast.Tree, c ast.NodeID, head, tail bool, at resync) ast.NodeID {
	old := r.old
	list, n := old.Node(r.list), sub.Node(c)
	node := ast.Node{Kind: ast.KindList, Span: n.Span, Marker: n.Marker, Ordered: n.Ordered}
	view := n.View.Span()
	items := old.Children(r.list)

	var children []ast.NodeID
	if head {
		headStart := old.Node(r.head).Span.Start
		for _, k := range items {
			if old.Node(k).Span.End > headStart {
				break
			}
			children = append(children, b.Copy(old, k, 0))
		}
		node.Span.Start, view.Start = list.Span.Start, list.View.Span().Start
		node.Marker, node.Ordered = list.Marker, list.Ordered
	}
	start := at.oldStart + r.shift
	for _, k := range sub.Children(c) {
		if tail && sub.Node(k).Span.Start >= start {
			break
		}
		children = append(children, b.Copy(sub, k, 0))
	}
	if tail {
		j := sort.Search(len(items), func(i int) bool {
			return old.Node(items[i]).Span.Start >= at.oldStart
		})
		for _, k := range items[j:] {
			children = append(children, b.Copy(old, k, r.shift))
		}
		node.Span.End, view.End = list.Span.End+r.shift, list.View.Span().End+r.shift
	}
	node.Children = children
	node.View = ast.Contiguous(view)
	return b.Add(node)
}

// isList reports whether id is a top-level list with a contiguous view
// starting at start, or anywhere when start is negative.
func isList(t *ast.Tree, id ast.NodeID, start int) bool {
	n := t.Node(id)
	return n.Kind == ast.KindList && n.View.IsContiguous() && (start < 0 || n.Span.Start == start)
}

func isItem(k ast.Kind) bool {
	return k == ast.KindListItem
}

// startsChild reports whether a child of parent of a matching kind starts
// at offset.
func startsChild(t *ast.Tree, parent ast.NodeID, offset int, match func(ast.Kind) bool) bool {
	for _, c := range t.Children(parent) {
		if n := t.Node(c); n.Span.Start == offset && match(n.Kind) {
			return true
		}
	}
	return false
}

func (r *reparse) lineStart(offset int) int {
	return r.src.LineStart(r.src.LineOf(offset))
}

// lineEnd returns the offset after the terminator of the line holding
// offset, or the length of the text.
func (r *reparse) lineEnd(offset int) int {
	return r.src.LineStart(r.src.LineOf(offset) + 1)
}
