package engine

import (
	"slices"

	"github.com/dshills/mdcore/internal/engine/anchor"
	"github.com/dshills/mdcore/internal/engine/buffer"
)

// Patch reports what one Apply, Undo or Redo changed.
type Patch struct {
	// Changed holds, in new coordinates, the spans of text written. Pure
	// deletions yield an empty span at the deletion point.
	Changed []Span `yaml:"changed" json:"changed"`

	// Region is the span whose blocks were reparsed.
	Region Span `yaml:"region" json:"region"`

	NewSelection Span   `yaml:"selection" json:"selection"`
	Version      uint64 `yaml:"version" json:"version"`

	// Created and Dropped list the anchors that appeared and disappeared.
	Created []AnchorID `yaml:"created,omitempty" json:"created,omitempty"`
	Dropped []AnchorID `yaml:"dropped,omitempty" json:"dropped,omitempty"`
}

// IsEmpty reports whether the patch changed no text.
func (p Patch) IsEmpty() bool {
	return len(p.Changed) == 0
}

// merge folds the patch of a later delta into p. Spans already in p are
// moved through delta; an anchor created and then dropped is left out of
// both lists.
func (p Patch) merge(delta Delta, next Patch) Patch {
	if len(p.Changed) == 0 && len(p.Created) == 0 && len(p.Dropped) == 0 {
		return next
	}
	move := func(s Span) Span {
		return buffer.NewSpan(
			delta.TransformOffset(s.Start, buffer.BiasBefore),
			delta.TransformOffset(s.End, buffer.BiasAfter),
		)
	}
	out := Patch{Region: move(p.Region).Union(next.Region)}
	for _, s := range p.Changed {
		out.Changed = append(out.Changed, move(s))
	}
	out.Changed = append(out.Changed, next.Changed...)
	slices.SortStableFunc(out.Changed, func(a, b Span) int { return a.Start - b.Start })

	gone := make(map[anchor.ID]bool, len(next.Dropped))
	for _, id := range next.Dropped {
		gone[id] = true
	}
	for _, id := range p.Created {
		if gone[id] {
			delete(gone, id)
			continue
		}
		out.Created = append(out.Created, id)
	}
	out.Created = append(out.Created, next.Created...)
	out.Dropped = append(out.Dropped, p.Dropped...)
	for _, id := range next.Dropped {
		if gone[id] {
			out.Dropped = append(out.Dropped, id)
		}
	}
	return out
}
