package markdown

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/markdown/ast"
)

type flatNode struct {
	Depth    int
	Kind     string
	Span     string
	Level    int
	Info     string
	Closed   bool
	Marker   string
	Ordered  bool
	Task     bool
	Target   string
	Alias    string
	HasAlias bool
	Label    string
	Dest     string
	Inner    string
	View     string
}

func flatten(t *ast.Tree) []flatNode {
	var out []flatNode
	t.Walk(func(id ast.NodeID, depth int) bool {
		n := t.Node(id)
		out = append(out, flatNode{
			Depth:    depth,
			Kind:     n.Kind.String(),
			Span:     n.Span.String(),
			Level:    n.Level,
			Info:     n.Info,
			Closed:   n.Closed,
			Marker:   n.Marker,
			Ordered:  n.Ordered,
			Task:     n.Task,
			Target:   n.Target.String(),
			Alias:    n.Alias.String(),
			HasAlias: n.HasAlias,
			Label:    n.Label.String(),
			Dest:     n.Dest.String(),
			Inner:    n.Inner.String(),
			View:     fmt.Sprint(n.View.IsContiguous(), n.View.Span(), n.View.Lines()),
		})
		return true
	})
	return out
}

func source(t *testing.T, s string) *buffer.Buffer {
	t.Helper()
	b, err := buffer.FromString(s)
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	return b
}

func TestReparseMatchesFullParse(t *testing.T) {
	doc := "# Title\n\nfirst para\nstill first\n\n- a\n  - b\n- c\n\n> quote\n> more\n\n```go\ncode\n```\n\nlast [[link]]\n"
	list := "- a\n- b\n  - c\n- d\n\n- e\n- f\n\npara\n"
	indented := " - a\n - b\n - c\n"

	tests := []struct {
		name  string
		src   string
		edits []buffer.Edit
	}{
		{"type in paragraph", doc, []buffer.Edit{buffer.NewInsert(14, "X")}},
		{"delete blank line merges paragraphs", doc, []buffer.Edit{buffer.NewDelete(32, 33)}},
		{"paragraph becomes heading", doc, []buffer.Edit{buffer.NewInsert(9, "## ")}},
		{"open fence swallows the rest", doc, []buffer.Edit{buffer.NewInsert(0, "```\n")}},
		{"remove closing fence", doc, []buffer.Edit{buffer.NewDelete(75, 79)}},
		{"edit nested item", doc, []buffer.Edit{buffer.NewInsert(41, "bb")}},
		{"dedent nested item", doc, []buffer.Edit{buffer.NewDelete(37, 39)}},
		{"nested item becomes text", doc, []buffer.Edit{buffer.NewDelete(39, 41)}},
		{"append at end", doc, []buffer.Edit{buffer.NewInsert(len(doc), "tail")}},
		{"delete everything", doc, []buffer.Edit{buffer.NewDelete(0, len(doc))}},
		{"break the quote", doc, []buffer.Edit{buffer.NewDelete(56, 58)}},
		{"two edits", doc, []buffer.Edit{buffer.NewInsert(2, "T"), buffer.NewReplace(87, 91, "path")}},
		{"insert blank line into list", doc, []buffer.Edit{buffer.NewInsert(43, "\n")}},
		{"empty document", "", []buffer.Edit{buffer.NewInsert(0, "- a\n")}},
		{"insert paragraph at start", doc, []buffer.Edit{buffer.NewInsert(0, "intro\n\n")}},
		{"type in list item", list, []buffer.Edit{buffer.NewInsert(6, "X")}},
		{"item becomes paragraph", list, []buffer.Edit{buffer.NewDelete(14, 16)}},
		{"other marker splits list", list, []buffer.Edit{buffer.NewReplace(14, 15, "*")}},
		{"insert item", list, []buffer.Edit{buffer.NewInsert(14, "- n\n")}},
		{"paragraph splits list", list, []buffer.Edit{buffer.NewInsert(14, "\nmid\n")}},
		{"nest item under previous", list, []buffer.Edit{buffer.NewInsert(19, "  ")}},
		{"type in last item", list, []buffer.Edit{buffer.NewInsert(25, "Y")}},
		{"join list and paragraph", list, []buffer.Edit{buffer.NewDelete(27, 28)}},
		{"edits in two items", list, []buffer.Edit{buffer.NewInsert(2, "A"), buffer.NewInsert(21, "E")}},
		{"type in indented list", indented, []buffer.Edit{buffer.NewInsert(8, "X")}},
		{"type in last indented item", indented, []buffer.Edit{buffer.NewInsert(13, "X")}},
		{"renumber ordered item", "1. a\n2. b\n3. c\n", []buffer.Edit{buffer.NewReplace(5, 6, "5")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := buffer.NewDelta(tt.edits...)
			if err != nil {
				t.Fatalf("NewDelta: %v", err)
			}
			newSrc := d.ApplyString(tt.src)

			got, region := Reparse(Parse(tt.src), source(t, newSrc), d)
			want := Parse(newSrc)
			if diff := cmp.Diff(flatten(want), flatten(got)); diff != "" {
				t.Errorf("incremental tree differs from full parse (-want +got):\n%s", diff)
			}
			if err := ast.Validate(got, len(newSrc)); err != nil {
				t.Errorf("Validate: %v", err)
			}
			if region.Start < 0 || region.End > len(newSrc) || region.Start > region.End {
				t.Errorf("invalid region %s for length %d", region, len(newSrc))
			}
		})
	}
}

func TestReparseRegion(t *testing.T) {
	src := "one\n\ntwo\n\nthree\n"
	d := buffer.MustDelta(buffer.NewInsert(6, "X"))
	newSrc := d.ApplyString(src)

	_, region := Reparse(Parse(src), source(t, newSrc), d)
	if region.Start != 0 {
		t.Errorf("expected region to start at the previous block, got %d", region.Start)
	}
	if region.End != 11 {
		t.Errorf("expected region to end at the next block, got %d", region.End)
	}
}

func TestReparseEmptyDelta(t *testing.T) {
	src := "text\n"
	tree := Parse(src)
	got, region := Reparse(tree, source(t, src), buffer.Delta{})
	if got != tree {
		t.Error("expected the same tree for an empty delta")
	}
	if !region.IsEmpty() {
		t.Errorf("expected empty region, got %s", region)
	}
}

func TestReparseLongListRegion(t *testing.T) {
	const item = "- item [[link]] *e*\n"
	const n = 2000
	src := strings.Repeat(item, n)
	old := Parse(src)
	size := len(item)

	tests := []struct {
		name string
		k    int
		want ast.Span
	}{
		{"first item", 0, ast.Span{Start: 0, End: size + 1}},
		{"middle item", 1000, ast.Span{Start: 999 * size, End: 1001*size + 1}},
		{"last item", n - 1, ast.Span{Start: (n - 2) * size, End: n*size + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buffer.MustDelta(buffer.NewInsert(tt.k*size+3, "X"))
			newSrc := d.ApplyString(src)

			got, region := Reparse(old, source(t, newSrc), d)
			if region != tt.want {
				t.Errorf("expected region %s, got %s", tt.want, region)
			}
			if diff := cmp.Diff(flatten(Parse(newSrc)), flatten(got)); diff != "" {
				t.Errorf("incremental tree differs from full parse (-want +got):\n%s", diff)
			}
		})
	}
}
