package ast

import (
	"errors"
	"fmt"
)

// Errors returned by Validate.
var (
	// ErrContainment means a child span is not inside its parent span.
	ErrContainment = errors.New("child span outside parent")

	// ErrOverlap means sibling spans overlap or are out of order.
	ErrOverlap = errors.New("sibling spans overlap")

	// ErrCoverage means the leaves do not tile the document exactly.
	ErrCoverage = errors.New("leaves do not tile the document")

	// ErrRawZone means an inline construct reaches into a raw interior.
	ErrRawZone = errors.New("inline node inside raw zone")

	// ErrParentLink means a child does not point back at its parent.
	ErrParentLink = errors.New("broken parent link")
)

// Validate checks the structural invariants of t for a document of the
// given byte length: containment, ordered siblings, exact coverage by
// leaves and raw-zone exclusion.
func Validate(t *Tree, length int) error {
	if t.Len() == 0 {
		return fmt.Errorf("%w: empty tree", ErrCoverage)
	}
	root := t.Node(t.Root())
	if root.Span != (Span{Start: 0, End: length}) {
		return fmt.Errorf("%w: root %s, document length %d", ErrCoverage, root.Span, length)
	}

	var err error
	t.Walk(func(id NodeID, _ int) bool {
		if err != nil {
			return false
		}
		n := t.Node(id)
		prevEnd := n.Span.Start
		for _, c := range n.Children {
			child := t.Node(c)
			if child.Parent != id {
				err = fmt.Errorf("%w: %s at %s", ErrParentLink, child.Kind, child.Span)
				return false
			}
			if !n.Span.ContainsSpan(child.Span) {
				err = fmt.Errorf("%w: %s%s in %s%s", ErrContainment, child.Kind, child.Span, n.Kind, n.Span)
				return false
			}
			if child.Span.Start < prevEnd {
				err = fmt.Errorf("%w: %s%s starts before %d", ErrOverlap, child.Kind, child.Span, prevEnd)
				return false
			}
			prevEnd = child.Span.End
		}
		return true
	})
	if err != nil {
		return err
	}

	pos := 0
	for _, id := range t.Leaves() {
		n := t.Node(id)
		if id == t.Root() && length == 0 {
			continue
		}
		if n.Span.Start != pos || n.Span.IsEmpty() {
			return fmt.Errorf("%w: %s%s, expected start %d", ErrCoverage, n.Kind, n.Span, pos)
		}
		pos = n.Span.End
	}
	if pos != length && length > 0 {
		return fmt.Errorf("%w: leaves end at %d of %d", ErrCoverage, pos, length)
	}

	return checkRawZones(t)
}

func checkRawZones(t *Tree) error {
	type zone struct{ outer, inner Span }
	var zones []zone
	t.Walk(func(id NodeID, _ int) bool {
		n := t.Node(id)
		if n.Kind == KindCodeSpan || n.Kind == KindFencedCode {
			zones = append(zones, zone{outer: n.Span, inner: n.Inner})
		}
		return true
	})
	if len(zones) == 0 {
		return nil
	}

	var err error
	t.Walk(func(id NodeID, _ int) bool {
		n := t.Node(id)
		switch n.Kind {
		case KindWikiLink, KindLink, KindEmphasis, KindStrong:
		default:
			return err == nil
		}
		for _, z := range zones {
			if n.Span.Overlaps(z.inner) && !n.Span.ContainsSpan(z.outer) {
				err = fmt.Errorf("%w: %s%s", ErrRawZone, n.Kind, n.Span)
				return false
			}
		}
		return err == nil
	})
	return err
}
