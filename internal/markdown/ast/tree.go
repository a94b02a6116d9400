package ast

import "sort"

// Tree is an arena of nodes. Nodes refer to each other by NodeID, and a
// parent is always added after its children, so the arena is in post-order.
type Tree struct {
	nodes []Node
	root  NodeID
}

// Root returns the Document node id.
func (t *Tree) Root() NodeID {
	return t.root
}

// Node returns the node with the given id. The pointer is valid for the
// lifetime of the tree, which is never mutated after Finish.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Children returns the children of id in document order.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].Children
}

// Walk visits nodes in document order (pre-order). Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	if len(t.nodes) == 0 {
		return
	}
	t.walk(t.root, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id].Children {
		t.walk(c, depth+1, fn)
	}
}

// Blocks returns every block node below the root in document order.
func (t *Tree) Blocks() []NodeID {
	var out []NodeID
	t.Walk(func(id NodeID, _ int) bool {
		k := t.nodes[id].Kind
		if k.IsBlock() {
			out = append(out, id)
		}
		return k.IsContainer()
	})
	return out
}

// BlocksIn returns the block nodes overlapping s in document order. Only
// the children around s are visited.
func (t *Tree) BlocksIn(s Span) []NodeID {
	var out []NodeID
	if len(t.nodes) > 0 {
		out = t.blocksIn(t.root, s, out)
	}
	return out
}

func (t *Tree) blocksIn(id NodeID, s Span, out []NodeID) []NodeID {
	kids := t.nodes[id].Children
	i := sort.Search(len(kids), func(i int) bool {
		return t.nodes[kids[i]].Span.End > s.Start
	})
	for ; i < len(kids); i++ {
		n := &t.nodes[kids[i]]
		if n.Span.Start >= s.End {
			break
		}
		if !n.Kind.IsBlock() || !n.Span.Overlaps(s) {
			continue
		}
		out = append(out, kids[i])
		if n.Kind.IsContainer() {
			out = t.blocksIn(kids[i], s, out)
		}
	}
	return out
}

// Leaves returns every node without children in document order.
func (t *Tree) Leaves() []NodeID {
	var out []NodeID
	t.Walk(func(id NodeID, _ int) bool {
		if t.nodes[id].IsLeaf() {
			out = append(out, id)
		}
		return true
	})
	return out
}

// BlockDepth returns the number of block ancestors of id, not counting the
// document root.
func (t *Tree) BlockDepth(id NodeID) int {
	depth := 0
	for p := t.nodes[id].Parent; p != NoNode; p = t.nodes[p].Parent {
		if t.nodes[p].Kind.IsBlock() {
			depth++
		}
	}
	return depth
}

// Find returns the deepest node of one of the given kinds whose span
// contains offset, or NoNode.
func (t *Tree) Find(offset int, match func(Kind) bool) NodeID {
	found := NoNode
	if len(t.nodes) == 0 {
		return found
	}
	id := t.root
	for {
		if match(t.nodes[id].Kind) {
			found = id
		}
		next := NoNode
		for _, c := range t.nodes[id].Children {
			if t.nodes[c].Span.Contains(offset) {
				next = c
				break
			}
		}
		if next == NoNode {
			return found
		}
		id = next
	}
}

// Builder accumulates nodes bottom-up. Children are added first and
// attached to their parent in one step when the parent is added.
type Builder struct {
	nodes []Node
}

// NewBuilder returns a builder with room for n nodes.
func NewBuilder(n int) *Builder {
	return &Builder{nodes: make([]Node, 0, n)}
}

// Add appends n, sets the parent of its children and returns its id.
func (b *Builder) Add(n Node) NodeID {
	id := NodeID(len(b.nodes))
	n.Parent = NoNode
	b.nodes = append(b.nodes, n)
	for _, c := range n.Children {
		b.nodes[c].Parent = id
	}
	return id
}

// Node returns the node with the given id. The pointer is invalidated by
// the next Add.
func (b *Builder) Node(id NodeID) *Node {
	return &b.nodes[id]
}

// Copy deep-copies the subtree of src rooted at id, shifting every span by
// delta, and returns the id of the copy.
func (b *Builder) Copy(src *Tree, id NodeID, delta int) NodeID {
	n := src.nodes[id]
	if len(n.Children) > 0 {
		children := make([]NodeID, len(n.Children))
		for i, c := range n.Children {
			children[i] = b.Copy(src, c, delta)
		}
		n.Children = children
	}
	if delta != 0 {
		n.shift(delta)
	}
	return b.Add(n)
}

// Finish returns the tree rooted at root. The builder must not be used
// afterwards.
func (b *Builder) Finish(root NodeID) *Tree {
	t := &Tree{nodes: b.nodes, root: root}
	b.nodes = nil
	return t
}
