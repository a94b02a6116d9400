package ast

import (
	"fmt"
	"strings"
)

// Dump renders the tree as an indented outline, one node per line. Leaf
// nodes show their source text. Used by tests and the CLI.
func Dump(t *Tree, src string) string {
	var sb strings.Builder
	t.Walk(func(id NodeID, depth int) bool {
		n := t.Node(id)
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Kind.String())
		sb.WriteString(n.Span.String())
		switch n.Kind {
		case KindHeading:
			fmt.Fprintf(&sb, " level=%d", n.Level)
		case KindFencedCode:
			fmt.Fprintf(&sb, " lang=%q closed=%v", n.Lang, n.Closed)
		case KindList, KindListItem:
			fmt.Fprintf(&sb, " marker=%q", n.Marker)
		case KindWikiLink:
			fmt.Fprintf(&sb, " target=%q", slice(src, n.Target))
			if n.HasAlias {
				fmt.Fprintf(&sb, " alias=%q", slice(src, n.Alias))
			}
		case KindLink:
			fmt.Fprintf(&sb, " label=%q dest=%q", slice(src, n.Label), slice(src, n.Dest))
		}
		if n.IsLeaf() {
			fmt.Fprintf(&sb, " %q", slice(src, n.Span))
		}
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

func slice(src string, s Span) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return "?"
	}
	return src[s.Start:s.End]
}
