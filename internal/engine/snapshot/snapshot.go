package snapshot

import (
	"strings"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/dshills/mdcore/internal/engine/anchor"
	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/engine/projection"
	"github.com/dshills/mdcore/internal/markdown/ast"
)

// Anchors hands out the anchor of a block, creating it on first use.
type Anchors interface {
	Ensure(span buffer.Span, kind ast.Kind) anchor.ID
}

// Snapshot is the ordered list of render blocks of one document version.
type Snapshot struct {
	Version uint64        `yaml:"version" json:"version"`
	Blocks  []RenderBlock `yaml:"blocks" json:"blocks"`
}

// PrefixInfo describes the container decoration around a block.
type PrefixInfo struct {
	QuoteDepth int `yaml:"quote_depth" json:"quote_depth"`
	ListDepth  int `yaml:"list_depth" json:"list_depth"`

	// Lines splits every line of the block into prefix and content. It is
	// empty when no line carries a prefix.
	Lines []ast.ContentLine `yaml:"lines,omitempty" json:"lines,omitempty"`
}

// RenderBlock is one editable unit as seen by a frontend.
type RenderBlock struct {
	ID           anchor.ID   `yaml:"id" json:"id" hash:"ignore"`
	Kind         ast.Kind    `yaml:"kind" json:"kind"`
	Depth        int         `yaml:"depth" json:"depth"`
	Span         buffer.Span `yaml:"span" json:"span"`
	ContentRange buffer.Span `yaml:"content_range" json:"content_range"`
	Prefix       PrefixInfo  `yaml:"prefix" json:"prefix"`

	Level   int      `yaml:"level,omitempty" json:"level,omitempty"`
	Lang    string   `yaml:"lang,omitempty" json:"lang,omitempty"`
	Marker  string   `yaml:"marker,omitempty" json:"marker,omitempty"`
	Ordered bool     `yaml:"ordered,omitempty" json:"ordered,omitempty"`
	Task    bool     `yaml:"task,omitempty" json:"task,omitempty"`
	Inlines []Inline `yaml:"inlines,omitempty" json:"inlines,omitempty"`
}

// Fingerprint hashes everything a frontend renders of b. The anchor id is
// left out, so equal blocks under different anchors share a fingerprint.
func (b RenderBlock) Fingerprint() uint64 {
	// Every field is a string, number, span or slice of those, so hashing
	// cannot fail.
	h, _ := hashstructure.Hash(b, hashstructure.FormatV2, nil)
	return h
}

// Inline is an inline element of a leaf block. Syntax tokens are left out;
// Text carries plain text and code span contents.
type Inline struct {
	Kind     ast.Kind    `yaml:"kind" json:"kind"`
	Span     buffer.Span `yaml:"span" json:"span"`
	Text     string      `yaml:"text,omitempty" json:"text,omitempty"`
	Target   string      `yaml:"target,omitempty" json:"target,omitempty"`
	Alias    string      `yaml:"alias,omitempty" json:"alias,omitempty"`
	Dest     string      `yaml:"dest,omitempty" json:"dest,omitempty"`
	Children []Inline    `yaml:"children,omitempty" json:"children,omitempty"`
}

// Build walks the block nodes of t in document order and emits one render
// block per node, creating anchors for blocks that have none.
func Build(t *ast.Tree, src projection.Source, version uint64, anchors Anchors) Snapshot {
	blocks := t.Blocks()
	s := Snapshot{Version: version, Blocks: make([]RenderBlock, 0, len(blocks))}
	for _, id := range blocks {
		n := t.Node(id)
		rb := RenderBlock{
			ID:           anchors.Ensure(n.Span, n.Kind),
			Kind:         n.Kind,
			Depth:        t.BlockDepth(id),
			Span:         n.Span,
			ContentRange: ContentView(t, src, id).ContentRange(),
			Prefix:       prefixInfo(t, id),
			Level:        n.Level,
			Lang:         n.Lang,
			Marker:       n.Marker,
			Ordered:      n.Ordered,
			Task:         n.Task,
		}
		if n.Kind == ast.KindParagraph || n.Kind == ast.KindHeading {
			rb.Inlines = inlines(t, src, id)
		}
		s.Blocks = append(s.Blocks, rb)
	}
	return s
}

func prefixInfo(t *ast.Tree, id ast.NodeID) PrefixInfo {
	var p PrefixInfo
	for a := t.Node(id).Parent; a != ast.NoNode; a = t.Node(a).Parent {
		switch t.Node(a).Kind {
		case ast.KindBlockQuote:
			p.QuoteDepth++
		case ast.KindListItem:
			p.ListDepth++
		}
	}
	p.Lines = t.Node(id).View.Lines()
	return p
}

// ContentView returns the editable content of block id: a heading without
// its marker, the code between the fences of a fenced block, and the
// block's own view otherwise.
func ContentView(t *ast.Tree, src projection.Source, id ast.NodeID) ast.ContentView {
	n := t.Node(id)
	v := n.View
	switch n.Kind {
	case ast.KindHeading:
		kids := n.Children
		if len(kids) == 0 || t.Node(kids[0]).Kind != ast.KindMarker {
			return v
		}
		start := t.Node(kids[0]).Span.End
		if v.IsContiguous() {
			return ast.Contiguous(buffer.NewSpan(start, max(start, v.Span().End)))
		}
		lines := append([]ast.ContentLine(nil), v.Lines()...)
		lines[0].Content.Start = start
		lines[0].Content.End = max(start, lines[0].Content.End)
		return ast.Lines(lines)

	case ast.KindFencedCode:
		if v.IsContiguous() {
			inner := n.Inner
			text := src.Slice(inner)
			if strings.HasSuffix(text, "\n") {
				inner.End -= len("\n")
				if strings.HasSuffix(text, "\r\n") {
					inner.End -= len("\r")
				}
			}
			return ast.Contiguous(inner)
		}
		interior := v.Lines()[1:]
		if n.Closed && len(interior) > 0 {
			interior = interior[:len(interior)-1]
		}
		if len(interior) == 0 {
			return ast.Contiguous(buffer.NewSpan(n.Inner.Start, n.Inner.Start))
		}
		return ast.Lines(interior)
	}
	return v
}

func inlines(t *ast.Tree, src projection.Source, id ast.NodeID) []Inline {
	var out []Inline
	for _, c := range t.Children(id) {
		n := t.Node(c)
		in := Inline{Kind: n.Kind, Span: n.Span}
		switch n.Kind {
		case ast.KindText:
			in.Text = src.Slice(n.Span)
		case ast.KindSoftBreak:
		case ast.KindCodeSpan:
			in.Text = src.Slice(n.Inner)
		case ast.KindWikiLink:
			in.Target = src.Slice(n.Target)
			if n.HasAlias {
				in.Alias = src.Slice(n.Alias)
			}
		case ast.KindLink:
			in.Dest = src.Slice(n.Dest)
			for _, l := range inlines(t, src, c) {
				if n.Label.ContainsSpan(l.Span) {
					in.Children = append(in.Children, l)
				}
			}
		case ast.KindEmphasis, ast.KindStrong:
			in.Children = inlines(t, src, c)
		default:
			continue
		}
		out = append(out, in)
	}
	return out
}

// Changes lists the anchors whose render blocks differ between two
// snapshots.
type Changes struct {
	Added   []anchor.ID
	Removed []anchor.ID
	Changed []anchor.ID
}

// IsEmpty reports whether the snapshots render identically.
func (c Changes) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// Compare returns the render blocks added, removed or changed from old to
// cur, each in the order of the snapshot they appear in. Blocks are
// matched by anchor and compared by fingerprint.
func Compare(old, cur Snapshot) Changes {
	prev := make(map[anchor.ID]*RenderBlock, len(old.Blocks))
	for i := range old.Blocks {
		prev[old.Blocks[i].ID] = &old.Blocks[i]
	}
	var c Changes
	seen := make(map[anchor.ID]bool, len(cur.Blocks))
	for i := range cur.Blocks {
		b := &cur.Blocks[i]
		seen[b.ID] = true
		p, ok := prev[b.ID]
		switch {
		case !ok:
			c.Added = append(c.Added, b.ID)
		case p.Fingerprint() != b.Fingerprint():
			c.Changed = append(c.Changed, b.ID)
		}
	}
	for _, b := range old.Blocks {
		if !seen[b.ID] {
			c.Removed = append(c.Removed, b.ID)
		}
	}
	return c
}
