package block

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/mdcore/internal/markdown/ast"
)

func dedent(s string) string {
	return strings.TrimPrefix(s, "\n")
}

func TestParseOutline(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "nested list",
			src:  "- a\n  - b\n",
			want: dedent(`
Document[0:10)
  List[0:10) marker="-"
    ListItem[0:10) marker="-"
      Marker[0:2) "- "
      Paragraph[2:4)
        Text[2:3) "a"
        LineEnding[3:4) "\n"
      Prefix[4:6) "  "
      List[6:10) marker="-"
        ListItem[6:10) marker="-"
          Marker[6:8) "- "
          Paragraph[8:10)
            Text[8:9) "b"
            LineEnding[9:10) "\n"
`),
		},
		{
			name: "blockquote then paragraph",
			src:  "> a\n> b\n\nc\n",
			want: dedent(`
Document[0:11)
  BlockQuote[0:8)
    Marker[0:2) "> "
    Paragraph[2:8)
      Text[2:3) "a"
      SoftBreak[3:6) "\n> "
      Text[6:7) "b"
      LineEnding[7:8) "\n"
  BlankLine[8:9) "\n"
  Paragraph[9:11)
    Text[9:10) "c"
    LineEnding[10:11) "\n"
`),
		},
		{
			name: "leaf blocks",
			src:  "# Title\n---\n<div>\nx\n\ntext",
			want: dedent(`
Document[0:25)
  Heading[0:8) level=1
    Marker[0:2) "# "
    Text[2:7) "Title"
    LineEnding[7:8) "\n"
  ThematicBreak[8:12) "---\n"
  HTMLBlock[12:20) "<div>\nx\n"
  BlankLine[20:21) "\n"
  Paragraph[21:25)
    Text[21:25) "text"
`),
		},
		{
			name: "empty item",
			src:  "-\n",
			want: dedent(`
Document[0:2)
  List[0:2) marker="-"
    ListItem[0:2) marker="-"
      Marker[0:2) "-\n"
`),
		},
		{
			name: "item with blank line",
			src:  "- a\n\n  b\n",
			want: dedent(`
Document[0:9)
  List[0:9) marker="-"
    ListItem[0:9) marker="-"
      Marker[0:2) "- "
      Paragraph[2:4)
        Text[2:3) "a"
        LineEnding[3:4) "\n"
      BlankLine[4:5) "\n"
      Prefix[5:7) "  "
      Paragraph[7:9)
        Text[7:8) "b"
        LineEnding[8:9) "\n"
`),
		},
		{
			name: "no lazy continuation",
			src:  "- a\nb",
			want: dedent(`
Document[0:5)
  List[0:4) marker="-"
    ListItem[0:4) marker="-"
      Marker[0:2) "- "
      Paragraph[2:4)
        Text[2:3) "a"
        LineEnding[3:4) "\n"
  Paragraph[4:5)
    Text[4:5) "b"
`),
		},
		{
			name: "whitespace only",
			src:  "  \n",
			want: dedent(`
Document[0:3)
  BlankLine[0:3) "  \n"
`),
		},
		{
			name: "empty",
			src:  "",
			want: "Document[0:0) \"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := Parse(tt.src, 0)
			if diff := cmp.Diff(tt.want, ast.Dump(tree, tt.src)); diff != "" {
				t.Errorf("outline mismatch (-want +got):\n%s", diff)
			}
			if err := ast.Validate(tree, len(tt.src)); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestNestedListSpans(t *testing.T) {
	src := "- a\n  - b\n"
	tree := Parse(src, 0)

	var items []*ast.Node
	var lists int
	tree.Walk(func(id ast.NodeID, _ int) bool {
		n := tree.Node(id)
		switch n.Kind {
		case ast.KindList:
			lists++
		case ast.KindListItem:
			items = append(items, n)
		}
		return true
	})
	if lists != 2 || len(items) != 2 {
		t.Fatalf("expected 2 lists and 2 items, got %d and %d", lists, len(items))
	}
	if !items[0].Span.ContainsSpan(items[1].Span) {
		t.Errorf("expected %s inside %s", items[1].Span, items[0].Span)
	}
}

func TestUnclosedFence(t *testing.T) {
	src := "```rust\nfn f() {}"
	tree := Parse(src, 0)

	kids := tree.Children(tree.Root())
	if len(kids) != 1 {
		t.Fatalf("expected 1 block, got %d", len(kids))
	}
	n := tree.Node(kids[0])
	if n.Kind != ast.KindFencedCode {
		t.Fatalf("expected FencedCode, got %s", n.Kind)
	}
	if n.Span != (Span{Start: 0, End: len(src)}) {
		t.Errorf("expected span to reach end of document, got %s", n.Span)
	}
	if n.Closed {
		t.Error("expected fence to be unclosed")
	}
	if n.Lang != "rust" {
		t.Errorf("expected lang %q, got %q", "rust", n.Lang)
	}
	if n.Inner != (Span{Start: 8, End: 17}) {
		t.Errorf("expected inner [8:17), got %s", n.Inner)
	}
	if err := ast.Validate(tree, len(src)); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestClosedFence(t *testing.T) {
	src := "~~~ go run\n*a*\n~~~~\nafter\n"
	tree := Parse(src, 0)

	kids := tree.Children(tree.Root())
	if len(kids) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(kids))
	}
	n := tree.Node(kids[0])
	if !n.Closed || n.Info != "go run" || n.Lang != "go" {
		t.Errorf("unexpected fence data: closed=%v info=%q lang=%q", n.Closed, n.Info, n.Lang)
	}
	if n.Span != (Span{Start: 0, End: 20}) {
		t.Errorf("expected span [0:20), got %s", n.Span)
	}
	if n.Inner != (Span{Start: 11, End: 15}) {
		t.Errorf("expected inner [11:15), got %s", n.Inner)
	}
	var kinds []ast.Kind
	for _, c := range n.Children {
		kinds = append(kinds, tree.Node(c).Kind)
	}
	want := []ast.Kind{ast.KindMarker, ast.KindCodeText, ast.KindMarker}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("fence children mismatch (-want +got):\n%s", diff)
	}
}

func TestListMarkers(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		lists int
	}{
		{"same bullet", "- a\n- b\n", 1},
		{"different bullet", "- a\n+ b\n", 2},
		{"ordered", "1. a\n2. b\n", 1},
		{"ordered delimiter change", "1. a\n2) b\n", 2},
		{"ordered does not interrupt paragraph", "a\n2. b\n", 0},
		{"bullet interrupts paragraph", "a\n- b\n", 1},
		{"thematic break is not a list", "* * *\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := Parse(tt.src, 0)
			lists := 0
			for _, c := range tree.Children(tree.Root()) {
				if tree.Node(c).Kind == ast.KindList {
					lists++
				}
			}
			if lists != tt.lists {
				t.Errorf("expected %d lists, got %d\n%s", tt.lists, lists, ast.Dump(tree, tt.src))
			}
		})
	}
}

func TestTaskItem(t *testing.T) {
	src := "- [ ] todo\n- [x] done\n- plain\n"
	tree := Parse(src, 0)

	var tasks []bool
	tree.Walk(func(id ast.NodeID, _ int) bool {
		if n := tree.Node(id); n.Kind == ast.KindListItem {
			tasks = append(tasks, n.Task)
		}
		return true
	})
	if diff := cmp.Diff([]bool{true, true, false}, tasks); diff != "" {
		t.Errorf("task flags mismatch (-want +got):\n%s", diff)
	}
}

func TestContentViews(t *testing.T) {
	src := "> - a\n>   b\n"
	tree := Parse(src, 0)

	var para *ast.Node
	tree.Walk(func(id ast.NodeID, _ int) bool {
		if n := tree.Node(id); n.Kind == ast.KindParagraph {
			para = n
		}
		return true
	})
	if para == nil {
		t.Fatal("no paragraph")
	}
	if para.View.IsContiguous() {
		t.Fatal("expected a per-line view")
	}
	want := []ast.ContentLine{
		{Raw: Span{Start: 0, End: 6}, Prefix: Span{Start: 0, End: 4}, Content: Span{Start: 4, End: 5}},
		{Raw: Span{Start: 6, End: 12}, Prefix: Span{Start: 6, End: 10}, Content: Span{Start: 10, End: 11}},
	}
	if diff := cmp.Diff(want, para.View.Lines()); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}

	top := Parse("plain\ntext\n", 0)
	p := top.Node(top.Children(top.Root())[0])
	if !p.View.IsContiguous() || p.View.Span() != (Span{Start: 0, End: 10}) {
		t.Errorf("expected contiguous [0:10), got %v", p.View.ContentRange())
	}
}

func TestParseValidates(t *testing.T) {
	docs := []string{
		"",
		"\n\n\n",
		"plain",
		"a\r\nb\r\n",
		"# h\n## h2 #\n####### not\n",
		"#\n# ",
		"> a\n>\n> b\n",
		"> > deep\n> back\nout\n",
		"- a\n  > q\n  - b\n    ```\n    code\n    ```\n- c\n",
		"1. one\n2. two\n\n   more\n3) other\n",
		"- ```\n  x\ny\n",
		"```\n```\n",
		"````\n```\n````\n",
		"<!-- c -->\n<p>\n\nafter\n",
		"*a* **b** ***c*** `d` [[e]] [f](g)\n",
		"[label\nspan](x) [[wiki\nlink]] `code\nspan`\n",
		"- [ ] task\n- [x] done\n",
		"-\n-\n  x\n",
		"   - indented\n    - deeper\n",
		"\t- tab\n",
		"a\n  \n\t\nb",
		"> ```\n> code\nlazy\n",
		"* * *\n- - -\n___\n",
		"- a\n\n\n- b\n\n",
	}
	for _, src := range docs {
		tree := Parse(src, 0)
		if err := ast.Validate(tree, len(src)); err != nil {
			t.Errorf("Validate(%q): %v\n%s", src, err, ast.Dump(tree, src))
		}
	}
}

func TestParseBase(t *testing.T) {
	src := "- a\n"
	tree := Parse(src, 100)
	root := tree.Node(tree.Root())
	if root.Span != (Span{Start: 100, End: 104}) {
		t.Errorf("expected root [100:104), got %s", root.Span)
	}
	leaves := tree.Leaves()
	if got := tree.Node(leaves[0]).Span; got != (Span{Start: 100, End: 102}) {
		t.Errorf("expected marker [100:102), got %s", got)
	}
}
