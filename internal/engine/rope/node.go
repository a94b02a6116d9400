package rope

import "strings"

// Tree shape.
const (
	// MaxChildren is the fan-out limit of internal nodes.
	MaxChildren = 8

	// MaxChunksPerLeaf is the chunk limit of leaf nodes.
	MaxChunksPerLeaf = 4
)

// TextSummary holds the metrics cached for a subtree.
type TextSummary struct {
	// Bytes is the byte length.
	Bytes ByteOffset

	// Lines is the number of '\n' bytes.
	Lines int
}

// Add combines two adjacent summaries.
func (s TextSummary) Add(o TextSummary) TextSummary {
	return TextSummary{Bytes: s.Bytes + o.Bytes, Lines: s.Lines + o.Lines}
}

func summarize(s string) TextSummary {
	return TextSummary{Bytes: ByteOffset(len(s)), Lines: strings.Count(s, "\n")}
}

// node is a B+ tree node. Leaves (height 0) hold chunks; internal nodes hold
// children and a summary per child.
type node struct {
	height   uint8
	summary  TextSummary
	children []*node
	chunks   []chunk
}

func newLeaf(chunks []chunk) *node {
	n := &node{chunks: chunks}
	for _, c := range chunks {
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

func newInternal(children []*node) *node {
	n := &node{height: children[0].height + 1, children: children}
	for _, c := range children {
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

func (n *node) len() ByteOffset {
	return n.summary.Bytes
}

func (n *node) writeTo(sb *strings.Builder) {
	if n.isLeaf() {
		for _, c := range n.chunks {
			sb.WriteString(c.text)
		}
		return
	}
	for _, c := range n.children {
		c.writeTo(sb)
	}
}

// writeRange writes the bytes of [start, end) relative to this node.
func (n *node) writeRange(sb *strings.Builder, start, end ByteOffset) {
	var off ByteOffset
	if n.isLeaf() {
		for _, c := range n.chunks {
			cEnd := off + ByteOffset(c.len())
			if cEnd > start && off < end {
				lo, hi := max(start-off, 0), min(end-off, ByteOffset(c.len()))
				sb.WriteString(c.text[lo:hi])
			}
			off = cEnd
			if off >= end {
				return
			}
		}
		return
	}
	for _, c := range n.children {
		cEnd := off + c.len()
		if cEnd > start && off < end {
			c.writeRange(sb, max(start-off, 0), min(end-off, c.len()))
		}
		off = cEnd
		if off >= end {
			return
		}
	}
}

// split returns nodes holding [0, at) and [at, len).
func (n *node) split(at ByteOffset) (*node, *node) {
	if n.isLeaf() {
		var left, right []chunk
		var off ByteOffset
		for _, c := range n.chunks {
			cEnd := off + ByteOffset(c.len())
			switch {
			case cEnd <= at:
				left = append(left, c)
			case off >= at:
				right = append(right, c)
			default:
				l, r := c.splitAt(int(at - off))
				left = append(left, l)
				right = append(right, r)
			}
			off = cEnd
		}
		return newLeaf(left), newLeaf(right)
	}

	var left, right []*node
	var off ByteOffset
	for _, c := range n.children {
		cEnd := off + c.len()
		switch {
		case cEnd <= at:
			left = append(left, c)
		case off >= at:
			right = append(right, c)
		default:
			l, r := c.split(at - off)
			if l.len() > 0 {
				left = append(left, l)
			}
			if r.len() > 0 {
				right = append(right, r)
			}
		}
		off = cEnd
	}
	return fromChildren(left), fromChildren(right)
}

// fromChildren builds a node over children of possibly different heights.
func fromChildren(children []*node) *node {
	switch len(children) {
	case 0:
		return newLeaf(nil)
	case 1:
		return children[0]
	}
	root := children[0]
	for _, c := range children[1:] {
		root = concat(root, c)
	}
	return root
}

// concat joins two nodes, raising the shorter one until heights match.
func concat(left, right *node) *node {
	if left.len() == 0 {
		return right
	}
	if right.len() == 0 {
		return left
	}
	for left.height < right.height {
		left = newInternal([]*node{left})
	}
	for right.height < left.height {
		right = newInternal([]*node{right})
	}

	if left.isLeaf() {
		all := make([]chunk, 0, len(left.chunks)+len(right.chunks))
		all = append(all, left.chunks...)
		all = append(all, right.chunks...)
		if len(all) <= MaxChunksPerLeaf {
			return newLeaf(all)
		}
		return newInternal([]*node{left, right})
	}

	all := make([]*node, 0, len(left.children)+len(right.children))
	all = append(all, left.children...)
	all = append(all, right.children...)
	if len(all) <= MaxChildren {
		return newInternal(all)
	}
	return groupChildren(all)
}

// groupChildren packs same-height nodes into parents of at most MaxChildren.
func groupChildren(nodes []*node) *node {
	for len(nodes) > 1 {
		parents := make([]*node, 0, len(nodes)/MaxChildren+1)
		for i := 0; i < len(nodes); i += MaxChildren {
			end := min(i+MaxChildren, len(nodes))
			group := make([]*node, end-i)
			copy(group, nodes[i:end])
			parents = append(parents, newInternal(group))
		}
		nodes = parents
	}
	return nodes[0]
}

// linesBefore counts newlines in [0, at).
func (n *node) linesBefore(at ByteOffset) int {
	lines := 0
	var off ByteOffset
	if n.isLeaf() {
		for _, c := range n.chunks {
			cEnd := off + ByteOffset(c.len())
			if cEnd <= at {
				lines += c.summary.Lines
				off = cEnd
				continue
			}
			return lines + strings.Count(c.text[:at-off], "\n")
		}
		return lines
	}
	for _, c := range n.children {
		cEnd := off + c.len()
		if cEnd <= at {
			lines += c.summary.Lines
			off = cEnd
			continue
		}
		return lines + c.linesBefore(at-off)
	}
	return lines
}

// offsetAfterNewline returns the offset just past the k-th newline (1-based).
func (n *node) offsetAfterNewline(k int) ByteOffset {
	var off ByteOffset
	if n.isLeaf() {
		for _, c := range n.chunks {
			if c.summary.Lines < k {
				k -= c.summary.Lines
				off += ByteOffset(c.len())
				continue
			}
			return off + ByteOffset(c.nthNewline(k))
		}
		return off
	}
	for _, c := range n.children {
		if c.summary.Lines < k {
			k -= c.summary.Lines
			off += c.len()
			continue
		}
		return off + c.offsetAfterNewline(k)
	}
	return off
}
