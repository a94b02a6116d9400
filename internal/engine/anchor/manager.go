package anchor

import (
	"sort"

	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/markdown/ast"
)

// Anchor binds a stable ID to a block of the document.
//
// Range is the tracked byte range: it slides with edits before it, grows
// and shrinks with edits inside it, and is truncated by edits across its
// boundaries. Block is the span of the block node the anchor identifies,
// and Kind that node's kind.
type Anchor struct {
	ID    ID          `yaml:"id" json:"id"`
	Range buffer.Span `yaml:"range" json:"range"`
	Kind  ast.Kind    `yaml:"kind" json:"kind"`
	Block buffer.Span `yaml:"block" json:"block"`
}

// Target is a block node anchors can bind to.
type Target struct {
	Span buffer.Span
	Kind ast.Kind
}

type key struct {
	span buffer.Span
	kind ast.Kind
}

// Manager owns the anchors of one document. It is not safe for concurrent
// use.
type Manager struct {
	anchors []*Anchor
	byID    map[ID]*Anchor
	byBlock map[key]*Anchor
	newID   func() ID
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{
		byID:    make(map[ID]*Anchor),
		byBlock: make(map[key]*Anchor),
		newID:   NewID,
	}
}

// Len returns the number of live anchors.
func (m *Manager) Len() int {
	return len(m.anchors)
}

// Get returns the anchor with the given id.
func (m *Manager) Get(id ID) (Anchor, bool) {
	a, ok := m.byID[id]
	if !ok {
		return Anchor{}, false
	}
	return *a, true
}

// All returns the live anchors in document order of their blocks, outer
// blocks first.
func (m *Manager) All() []Anchor {
	out := make([]Anchor, len(m.anchors))
	for i, a := range m.anchors {
		out[i] = *a
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Block, out[j].Block
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End > b.End
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Lookup returns the anchor bound to the block with the given span and kind.
func (m *Manager) Lookup(span buffer.Span, kind ast.Kind) (ID, bool) {
	a, ok := m.byBlock[key{span, kind}]
	if !ok {
		return ID{}, false
	}
	return a.ID, true
}

// Ensure returns the anchor bound to the block, creating one if the block
// has none yet.
func (m *Manager) Ensure(span buffer.Span, kind ast.Kind) ID {
	if id, ok := m.Lookup(span, kind); ok {
		return id
	}
	return m.create(Target{Span: span, Kind: kind}).ID
}

func (m *Manager) create(t Target) *Anchor {
	a := &Anchor{ID: m.newID(), Range: t.Span, Kind: t.Kind, Block: t.Span}
	m.anchors = append(m.anchors, a)
	m.byID[a.ID] = a
	m.byBlock[key{a.Block, a.Kind}] = a
	return a
}

// Transform maps every anchor through d. Anchors whose range or block
// collapses are dropped; their ids are returned.
func (m *Manager) Transform(d buffer.Delta) []ID {
	if d.IsEmpty() {
		return nil
	}
	var dropped []ID
	live := m.anchors[:0]
	for _, a := range m.anchors {
		r, ok := d.TransformSpan(a.Range)
		b, okBlock := d.TransformSpan(a.Block)
		if !ok || !okBlock {
			dropped = append(dropped, a.ID)
			delete(m.byID, a.ID)
			continue
		}
		a.Range, a.Block = r, b
		live = append(live, a)
	}
	m.anchors = live
	m.reindex()
	return dropped
}

// Rebind binds the anchors whose blocks overlap region to the blocks of the
// reparsed region. Pairs in the same kind class are matched greedily by
// overlap, larger overlap first and older anchors first on ties; each
// block takes at most one anchor. Matched anchors keep their id. Anchors
// left without a block are dropped and blocks left without an anchor get a
// new one.
//
// A matched anchor's range snaps to its block when the range overlaps text
// written by the edit (changed) or no longer lies inside the block.
func (m *Manager) Rebind(region buffer.Span, blocks []Target, changed []buffer.Span) (created, dropped []ID) {
	var cands []*Anchor
	for _, a := range m.anchors {
		if a.Block.Overlaps(region) {
			cands = append(cands, a)
		}
	}
	var nodes []Target
	for _, b := range blocks {
		if b.Span.Overlaps(region) {
			nodes = append(nodes, b)
		}
	}

	pairs := overlapPairs(cands, nodes)
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].overlap != pairs[j].overlap {
			return pairs[i].overlap > pairs[j].overlap
		}
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].n < pairs[j].n
	})

	for _, a := range cands {
		if k := (key{a.Block, a.Kind}); m.byBlock[k] == a {
			delete(m.byBlock, k)
		}
	}
	boundA := make([]bool, len(cands))
	boundN := make([]bool, len(nodes))
	for _, p := range pairs {
		if boundA[p.a] || boundN[p.n] {
			continue
		}
		boundA[p.a], boundN[p.n] = true, true
		a, n := cands[p.a], nodes[p.n]
		if touches(a.Range, changed) || !n.Span.ContainsSpan(a.Range) {
			a.Range = n.Span
		}
		a.Block, a.Kind = n.Span, n.Kind
		m.byBlock[key{a.Block, a.Kind}] = a
	}

	drop := make(map[ID]bool)
	for i, a := range cands {
		if !boundA[i] {
			drop[a.ID] = true
			dropped = append(dropped, a.ID)
		}
	}
	if len(drop) > 0 {
		live := m.anchors[:0]
		for _, a := range m.anchors {
			if drop[a.ID] {
				delete(m.byID, a.ID)
				continue
			}
			live = append(live, a)
		}
		m.anchors = live
	}

	for j, n := range nodes {
		if !boundN[j] {
			created = append(created, m.create(n).ID)
		}
	}
	return created, dropped
}

type pair struct{ a, n, overlap int }

// overlapPairs returns every pair of an anchor and a block of the same
// class that share bytes. For two overlapping spans, either the block
// starts inside the anchor's block or the anchor's block starts strictly
// inside the block, so both directions are binary searches over spans
// sorted by start.
func overlapPairs(cands []*Anchor, nodes []Target) []pair {
	type group struct{ anchors, nodes []int }
	groups := make(map[ast.Kind]*group)
	get := func(k ast.Kind) *group {
		g, ok := groups[class(k)]
		if !ok {
			g = &group{}
			groups[class(k)] = g
		}
		return g
	}
	for i, a := range cands {
		g := get(a.Kind)
		g.anchors = append(g.anchors, i)
	}
	for j, n := range nodes {
		g := get(n.Kind)
		g.nodes = append(g.nodes, j)
	}

	var out []pair
	add := func(i, j int) {
		if ov := cands[i].Block.Overlap(nodes[j].Span); ov > 0 {
			out = append(out, pair{i, j, ov})
		}
	}
	for _, g := range groups {
		as, ns := g.anchors, g.nodes
		sort.SliceStable(as, func(x, y int) bool { return cands[as[x]].Block.Start < cands[as[y]].Block.Start })
		sort.SliceStable(ns, func(x, y int) bool { return nodes[ns[x]].Span.Start < nodes[ns[y]].Span.Start })

		for _, i := range as {
			b := cands[i].Block
			x := sort.Search(len(ns), func(x int) bool { return nodes[ns[x]].Span.Start >= b.Start })
			for ; x < len(ns) && nodes[ns[x]].Span.Start < b.End; x++ {
				add(i, ns[x])
			}
		}
		for _, j := range ns {
			s := nodes[j].Span
			x := sort.Search(len(as), func(x int) bool { return cands[as[x]].Block.Start > s.Start })
			for ; x < len(as) && cands[as[x]].Block.Start < s.End; x++ {
				add(as[x], j)
			}
		}
	}
	return out
}

func (m *Manager) reindex() {
	clear(m.byBlock)
	for _, a := range m.anchors {
		k := key{a.Block, a.Kind}
		if _, taken := m.byBlock[k]; !taken {
			m.byBlock[k] = a
		}
	}
}

// class groups the kinds an anchor may move between. Leaf blocks form one
// class; each container kind is its own.
func class(k ast.Kind) ast.Kind {
	if k.IsLeafBlock() {
		return ast.KindParagraph
	}
	return k
}

func touches(s buffer.Span, changed []buffer.Span) bool {
	for _, c := range changed {
		if s.Overlaps(c) {
			return true
		}
	}
	return false
}
