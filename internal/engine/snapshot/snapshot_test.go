package snapshot

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/mdcore/internal/engine/anchor"
	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/markdown"
	"github.com/dshills/mdcore/internal/markdown/ast"
)

type text string

func (s text) Slice(sp buffer.Span) string { return string(s)[sp.Start:sp.End] }

const doc = "# Title\n\n> - [[a|b]] *x*\n\n```go\ncode\n```\n"

func TestBuild(t *testing.T) {
	tree := markdown.Parse(doc)
	s := Build(tree, text(doc), 3, anchor.NewManager())

	if s.Version != 3 {
		t.Errorf("expected version 3, got %d", s.Version)
	}
	var kinds []ast.Kind
	var depths []int
	for _, b := range s.Blocks {
		kinds = append(kinds, b.Kind)
		depths = append(depths, b.Depth)
	}
	wantKinds := []ast.Kind{
		ast.KindHeading, ast.KindBlockQuote, ast.KindList, ast.KindListItem,
		ast.KindParagraph, ast.KindFencedCode,
	}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 0, 1, 2, 3, 0}, depths); diff != "" {
		t.Errorf("depths mismatch (-want +got):\n%s", diff)
	}

	heading := s.Blocks[0]
	if heading.Level != 1 || heading.ContentRange != buffer.NewSpan(2, 7) {
		t.Errorf("unexpected heading: level=%d content=%s", heading.Level, heading.ContentRange)
	}

	para := s.Blocks[4]
	if para.Prefix.QuoteDepth != 1 || para.Prefix.ListDepth != 1 {
		t.Errorf("expected quote and list depth 1, got %d and %d", para.Prefix.QuoteDepth, para.Prefix.ListDepth)
	}
	if len(para.Prefix.Lines) != 1 || para.Prefix.Lines[0].Prefix != buffer.NewSpan(9, 13) {
		t.Errorf("unexpected prefix lines %v", para.Prefix.Lines)
	}
	wantInlines := []Inline{
		{Kind: ast.KindWikiLink, Span: buffer.NewSpan(13, 20), Target: "a", Alias: "b"},
		{Kind: ast.KindText, Span: buffer.NewSpan(20, 21), Text: " "},
		{Kind: ast.KindEmphasis, Span: buffer.NewSpan(21, 24), Children: []Inline{
			{Kind: ast.KindText, Span: buffer.NewSpan(22, 23), Text: "x"},
		}},
	}
	if diff := cmp.Diff(wantInlines, para.Inlines); diff != "" {
		t.Errorf("inlines mismatch (-want +got):\n%s", diff)
	}

	fence := s.Blocks[5]
	if fence.Lang != "go" || fence.ContentRange != buffer.NewSpan(32, 36) {
		t.Errorf("unexpected fence: lang=%q content=%s", fence.Lang, fence.ContentRange)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	tree := markdown.Parse(doc)
	m := anchor.NewManager()
	first := Build(tree, text(doc), 1, m)
	second := Build(tree, text(doc), 1, m)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("snapshots differ (-first +second):\n%s", diff)
	}
	if m.Len() != len(first.Blocks) {
		t.Errorf("expected one anchor per block, got %d for %d blocks", m.Len(), len(first.Blocks))
	}
	seen := make(map[anchor.ID]bool)
	for _, b := range first.Blocks {
		if seen[b.ID] {
			t.Errorf("duplicate id %s", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestLinkLabel(t *testing.T) {
	src := "[a `b`](c)\n"
	tree := markdown.Parse(src)
	s := Build(tree, text(src), 0, anchor.NewManager())
	want := []Inline{{
		Kind: ast.KindLink, Span: buffer.NewSpan(0, 10), Dest: "c",
		Children: []Inline{
			{Kind: ast.KindText, Span: buffer.NewSpan(1, 3), Text: "a "},
			{Kind: ast.KindCodeSpan, Span: buffer.NewSpan(3, 6), Text: "b"},
		},
	}}
	if diff := cmp.Diff(want, s.Blocks[0].Inlines); diff != "" {
		t.Errorf("inlines mismatch (-want +got):\n%s", diff)
	}
}

func TestContentView(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"heading", "## Sub\n", "Sub"},
		{"empty heading", "#\n", ""},
		{"closed fence", "```\na\nb\n```\n", "a\nb"},
		{"unclosed fence", "~~~\nx\n", "x"},
		{"empty fence", "```\n```\n", ""},
		{"fence in list", "- ```\n  a\n  ```\n", "a"},
		{"quoted paragraph", "> a\n> b\n", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := markdown.Parse(tt.src)
			var leaf ast.NodeID = ast.NoNode
			for _, id := range tree.Blocks() {
				if tree.Node(id).Kind.IsLeafBlock() {
					leaf = id
					break
				}
			}
			if leaf == ast.NoNode {
				t.Fatalf("no leaf block in %q", tt.src)
			}
			v := ContentView(tree, text(tt.src), leaf)
			if got := join(tt.src, v); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func join(src string, v ast.ContentView) string {
	if v.IsContiguous() {
		return src[v.Span().Start:v.Span().End]
	}
	var out string
	for i, l := range v.Lines() {
		if i > 0 {
			out += "\n"
		}
		out += src[l.Content.Start:l.Content.End]
	}
	return out
}

func TestCompare(t *testing.T) {
	a, b, c := anchor.NewID(), anchor.NewID(), anchor.NewID()
	old := Snapshot{Blocks: []RenderBlock{
		{ID: a, Span: buffer.NewSpan(0, 4)},
		{ID: b, Span: buffer.NewSpan(5, 9)},
	}}
	cur := Snapshot{Blocks: []RenderBlock{
		{ID: a, Span: buffer.NewSpan(0, 4)},
		{ID: c, Span: buffer.NewSpan(5, 6)},
	}}
	got := Compare(old, cur)
	want := Changes{Added: []anchor.ID{c}, Removed: []anchor.ID{b}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}

	cur.Blocks[0].Span = buffer.NewSpan(0, 5)
	if got := Compare(old, cur); len(got.Changed) != 1 || got.Changed[0] != a {
		t.Errorf("expected %s changed, got %v", a, got.Changed)
	}
	if !Compare(old, old).IsEmpty() {
		t.Error("expected no changes for identical snapshots")
	}
}

func TestFingerprint(t *testing.T) {
	a := RenderBlock{ID: anchor.NewID(), Kind: ast.KindParagraph, Span: buffer.NewSpan(0, 4)}
	b := a
	b.ID = anchor.NewID()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("expected the anchor id to be left out of the fingerprint")
	}

	tests := []struct {
		name   string
		modify func(*RenderBlock)
	}{
		{"span", func(b *RenderBlock) { b.Span = buffer.NewSpan(0, 5) }},
		{"kind", func(b *RenderBlock) { b.Kind = ast.KindHeading }},
		{"inline text", func(b *RenderBlock) { b.Inlines = []Inline{{Kind: ast.KindText, Text: "x"}} }},
		{"prefix", func(b *RenderBlock) { b.Prefix.QuoteDepth = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := a
			tt.modify(&c)
			if c.Fingerprint() == a.Fingerprint() {
				t.Errorf("expected fingerprint to change with %s", tt.name)
			}
		})
	}
}
