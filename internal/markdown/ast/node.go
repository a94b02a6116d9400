package ast

import "github.com/dshills/mdcore/internal/engine/buffer"

// Span is a byte range into the document.
type Span = buffer.Span

// NodeID indexes a node in a Tree's arena.
type NodeID int32

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Node is one element of the span tree. Which data fields are meaningful
// depends on Kind.
type Node struct {
	Kind     Kind
	Span     Span
	Parent   NodeID
	Children []NodeID

	// Heading.
	Level int

	// FencedCode. Info is the whole info string, Lang its first word.
	// Inner covers the lines between the fences.
	Info   string
	Lang   string
	Closed bool

	// List and ListItem. Marker is the marker text without trailing space,
	// for a List the marker of its first item.
	Marker  string
	Ordered bool
	Task    bool

	// WikiLink uses Target and Alias; Link uses Label and Dest. HasAlias is
	// false for [[target]].
	Target   Span
	Alias    Span
	HasAlias bool
	Label    Span
	Dest     Span

	// Inner is the part between delimiters for CodeSpan, Emphasis, Strong
	// and FencedCode.
	Inner Span

	// View is set on block nodes.
	View ContentView
}

// shift moves every span the node's kind uses.
func (n *Node) shift(delta int) {
	n.Span = n.Span.Shift(delta)
	switch n.Kind {
	case KindWikiLink:
		n.Target = n.Target.Shift(delta)
		if n.HasAlias {
			n.Alias = n.Alias.Shift(delta)
		}
	case KindLink:
		n.Label = n.Label.Shift(delta)
		n.Dest = n.Dest.Shift(delta)
	case KindCodeSpan, KindEmphasis, KindStrong, KindFencedCode:
		n.Inner = n.Inner.Shift(delta)
	}
	if n.Kind.IsBlock() || n.Kind == KindDocument {
		n.View = n.View.Shift(delta)
	}
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// ContentLine splits one physical line of a block into its container
// decoration and its content. Raw includes the line terminator; Content
// does not.
type ContentLine struct {
	Raw     Span `yaml:"raw" json:"raw"`
	Prefix  Span `yaml:"prefix" json:"prefix"`
	Content Span `yaml:"content" json:"content"`
}

// Shift moves every span of the line by delta.
func (l ContentLine) Shift(delta int) ContentLine {
	return ContentLine{Raw: l.Raw.Shift(delta), Prefix: l.Prefix.Shift(delta), Content: l.Content.Shift(delta)}
}

// ContentView is either one contiguous span of content or a list of lines
// whose prefixes must be preserved on write-back.
type ContentView struct {
	contiguous Span
	lines      []ContentLine
}

// Contiguous returns a view over one span.
func Contiguous(s Span) ContentView {
	return ContentView{contiguous: s}
}

// Lines returns a per-line view.
func Lines(lines []ContentLine) ContentView {
	return ContentView{lines: lines}
}

// IsContiguous reports whether the view has no line prefixes.
func (v ContentView) IsContiguous() bool {
	return v.lines == nil
}

// Span returns the contiguous span; it is only meaningful when IsContiguous.
func (v ContentView) Span() Span {
	return v.contiguous
}

// Lines returns the per-line view, or nil for a contiguous view.
func (v ContentView) Lines() []ContentLine {
	return v.lines
}

// ContentRange returns the span from the first content byte to the last.
func (v ContentView) ContentRange() Span {
	if v.lines == nil {
		return v.contiguous
	}
	return Span{Start: v.lines[0].Content.Start, End: v.lines[len(v.lines)-1].Content.End}
}

// Shift moves the view by delta.
func (v ContentView) Shift(delta int) ContentView {
	if v.lines == nil {
		return Contiguous(v.contiguous.Shift(delta))
	}
	lines := make([]ContentLine, len(v.lines))
	for i, l := range v.lines {
		lines[i] = l.Shift(delta)
	}
	return Lines(lines)
}

// Equal reports whether two views describe the same bytes.
func (v ContentView) Equal(o ContentView) bool {
	if (v.lines == nil) != (o.lines == nil) {
		return false
	}
	if v.lines == nil {
		return v.contiguous == o.contiguous
	}
	if len(v.lines) != len(o.lines) {
		return false
	}
	for i := range v.lines {
		if v.lines[i] != o.lines[i] {
			return false
		}
	}
	return true
}
