package engine

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/engine/projection"
	"github.com/dshills/mdcore/internal/engine/snapshot"
	"github.com/dshills/mdcore/internal/markdown/ast"
)

// PointDescription locates a buffer offset in the document structure.
type PointDescription struct {
	Offset ByteOffset `yaml:"offset" json:"offset"`

	// Anchor and Kind identify the innermost block holding the offset.
	// Outside every block Anchor is zero and Kind is ast.KindDocument.
	Anchor AnchorID `yaml:"anchor" json:"anchor"`
	Kind   ast.Kind `yaml:"kind" json:"kind"`

	// Local is the offset inside the block's content with container
	// prefixes hidden, or -1 when the offset is not inside any content.
	Local int `yaml:"local" json:"local"`

	// Line and Column are 0-based; Column counts bytes from the line
	// start, Grapheme user-perceived characters and DisplayColumn terminal
	// cells.
	Line          int `yaml:"line" json:"line"`
	Column        int `yaml:"column" json:"column"`
	Grapheme      int `yaml:"grapheme" json:"grapheme"`
	DisplayColumn int `yaml:"display_column" json:"display_column"`
}

// DescribePoint reports where offset lies: its line and columns, the
// innermost block holding it and its offset in that block's content. It
// does not change the document.
func (d *Document) DescribePoint(offset ByteOffset) (PointDescription, error) {
	if err := d.buf.CheckSpan(buffer.NewSpan(offset, offset)); err != nil {
		return PointDescription{}, err
	}
	line := d.buf.LineOf(offset)
	start := d.buf.LineStart(line)
	before := d.buf.Slice(buffer.NewSpan(start, offset))
	p := PointDescription{
		Offset:        offset,
		Local:         -1,
		Line:          line,
		Column:        offset - start,
		Grapheme:      uniseg.GraphemeClusterCount(before),
		DisplayColumn: projection.DisplayWidth(before),
	}

	id := d.tree.Find(offset, ast.Kind.IsBlock)
	if id == ast.NoNode && offset > 0 && offset == d.buf.Len() {
		id = d.tree.Find(offset-1, ast.Kind.IsBlock)
	}
	if id == ast.NoNode {
		return p, nil
	}
	n := d.tree.Node(id)
	p.Kind = n.Kind
	if a, ok := d.anchors.Lookup(n.Span, n.Kind); ok {
		p.Anchor = a
	}
	if n.Kind.IsLeafBlock() {
		if local, ok := projection.LocalOffset(snapshot.ContentView(d.tree, d.buf, id), offset); ok {
			p.Local = local
		}
	}
	return p, nil
}
