package command

import (
	"errors"
	"testing"

	"github.com/dshills/mdcore/internal/engine/anchor"
	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/markdown/ast"
)

func compile(t *testing.T, c *Compiler, src string, cmd Cmd, sel buffer.Span) (string, buffer.Span) {
	t.Helper()
	buf, err := buffer.FromString(src)
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	res, err := c.Compile(buf, cmd, sel)
	if err != nil {
		t.Fatalf("Compile(%v): %v", cmd, err)
	}
	return res.Delta.ApplyString(src), res.Selection
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		cmd     Cmd
		sel     buffer.Span
		want    string
		wantSel buffer.Span
	}{
		{
			name: "insert", src: "Hello", cmd: InsertText{At: 0, Text: "XY"},
			want: "XYHello", wantSel: caret(2),
		},
		{
			name: "delete", src: "Hello", cmd: DeleteRange{Range: buffer.NewSpan(1, 3)},
			want: "Hlo", wantSel: caret(1),
		},
		{
			name: "replace", src: "Hello", cmd: ReplaceRange{Range: buffer.NewSpan(0, 5), Text: "Bye"},
			want: "Bye", wantSel: caret(3),
		},
		{
			name: "split bullet", src: "- Item 1", cmd: SplitListItem{At: 8},
			want: "- Item 1\n- ", wantSel: caret(11),
		},
		{
			name: "split indented", src: "  - Indented item", cmd: SplitListItem{At: 17},
			want: "  - Indented item\n  - ", wantSel: caret(22),
		},
		{
			name: "split keeps ordered marker", src: "1. First item", cmd: SplitListItem{At: 13},
			want: "1. First item\n1. ", wantSel: caret(17),
		},
		{
			name: "split in the middle", src: "* ab", cmd: SplitListItem{At: 3},
			want: "* a\n* b", wantSel: caret(6),
		},
		{
			name: "split inside marker clamps", src: "- ab", cmd: SplitListItem{At: 1},
			want: "- \n- ab", wantSel: caret(5),
		},
		{
			name: "split quoted item", src: "> - a\n", cmd: SplitListItem{At: 5},
			want: "> - a\n> - \n", wantSel: caret(10),
		},
		{
			name: "split task", src: "- [x] done", cmd: SplitListItem{At: 10},
			want: "- [x] done\n- [ ] ", wantSel: caret(17),
		},
		{
			name: "split crlf", src: "- a\r\n", cmd: SplitListItem{At: 3},
			want: "- a\r\n- \r\n", wantSel: caret(7),
		},
		{
			name: "split plain text", src: "Regular text", cmd: SplitListItem{At: 12},
			want: "Regular text\n", wantSel: caret(13),
		},
		{
			name: "split quote", src: "> text", cmd: SplitListItem{At: 6},
			want: "> text\n> ", wantSel: caret(9),
		},
		{
			name: "split empty item removes marker", src: "- a\n- ", cmd: SplitListItem{At: 6},
			want: "- a\n", wantSel: caret(4),
		},
		{
			name: "split empty quoted item", src: "> - \n", cmd: SplitListItem{At: 4},
			want: "> \n", wantSel: caret(2),
		},
		{
			name: "split empty task item", src: "- [ ] ", cmd: SplitListItem{At: 6},
			want: "", wantSel: caret(0),
		},
		{
			name: "indent single line", src: "- Item 1", cmd: IndentLines{Range: buffer.NewSpan(0, 8)},
			want: "  - Item 1", sel: caret(8), wantSel: caret(10),
		},
		{
			name: "indent all lines", src: "- Item 1\n- Item 2\n- Item 3", cmd: IndentLines{Range: buffer.NewSpan(0, 26)},
			want: "  - Item 1\n  - Item 2\n  - Item 3", wantSel: caret(2),
		},
		{
			name: "indent middle line", src: "- Item 1\n- Item 2\n- Item 3", cmd: IndentLines{Range: buffer.NewSpan(9, 17)},
			want: "- Item 1\n  - Item 2\n- Item 3",
		},
		{
			name: "indent caret line", src: "a\nb\n", cmd: IndentLines{Range: caret(2)},
			want: "a\n  b\n",
		},
		{
			name: "indent skips blank lines", src: "a\n\nb", cmd: IndentLines{Range: buffer.NewSpan(0, 4)},
			want: "  a\n\n  b", wantSel: caret(2),
		},
		{
			name: "indent inside quote", src: "> - a", cmd: IndentLines{Range: buffer.NewSpan(0, 5)},
			want: ">   - a",
		},
		{
			name: "outdent", src: "    - a\n  - b\n - c\n- d", cmd: OutdentLines{Range: buffer.NewSpan(0, 22)},
			want: "  - a\n- b\n- c\n- d",
		},
		{
			name: "outdent tab", src: "\t- a", cmd: OutdentLines{Range: buffer.NewSpan(0, 4)},
			want: "- a",
		},
		{
			name: "outdent inside quote", src: ">   - a", cmd: OutdentLines{Range: buffer.NewSpan(0, 7)},
			want: "> - a",
		},
		{
			name: "toggle bullet", src: "- a\n", cmd: ToggleMarker{LineStart: 0, To: MarkerAsterisk},
			want: "* a\n", wantSel: caret(1),
		},
		{
			name: "toggle to numbered", src: "  + a", cmd: ToggleMarker{LineStart: 0, To: MarkerNumbered},
			want: "  1. a",
		},
		{
			name: "toggle keeps ordered number", src: "3. a", cmd: ToggleMarker{LineStart: 0, To: MarkerNumbered},
			want: "3. a",
		},
		{
			name: "toggle from ordered", src: "x\n10. a", cmd: ToggleMarker{LineStart: 2, To: MarkerDash},
			want: "x\n- a",
		},
		{
			name: "toggle adds marker", src: "> text", cmd: ToggleMarker{LineStart: 0, To: MarkerDash},
			sel: caret(6), want: "> - text", wantSel: caret(8),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, sel := compile(t, &Compiler{}, tt.src, tt.cmd, tt.sel)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if sel != tt.wantSel {
				t.Errorf("expected selection %s, got %s", tt.wantSel, sel)
			}
		})
	}
}

func TestIndentUnit(t *testing.T) {
	c := &Compiler{IndentUnit: "\t"}
	got, _ := compile(t, c, "- a", IndentLines{Range: caret(0)}, buffer.Span{})
	if got != "\t- a" {
		t.Errorf("expected %q, got %q", "\t- a", got)
	}
	got, _ = compile(t, &Compiler{IndentUnit: "    "}, "     - a", OutdentLines{Range: caret(0)}, buffer.Span{})
	if got != " - a" {
		t.Errorf("expected %q, got %q", " - a", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  Cmd
		want error
	}{
		{"insert out of range", InsertText{At: 99, Text: "x"}, buffer.ErrOffsetOutOfRange},
		{"inverted range", DeleteRange{Range: buffer.Span{Start: 3, End: 1}}, buffer.ErrRangeInvalid},
		{"split rune", InsertText{At: 2, Text: "x"}, buffer.ErrNotCharBoundary},
		{"invalid text", ReplaceRange{Range: buffer.NewSpan(0, 1), Text: "\xff"}, buffer.ErrInvalidUTF8},
		{"not a line start", ToggleMarker{LineStart: 1, To: MarkerDash}, ErrNotLineStart},
		{"bad marker", ToggleMarker{LineStart: 0, To: "#"}, ErrUnknownMarker},
		{"unknown anchor", ReplaceContent{Anchor: anchor.NewID(), Text: "x"}, ErrUnknownAnchor},
	}

	buf, _ := buffer.FromString("aé\nb")
	c := &Compiler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(buf, tt.cmd, buffer.Span{})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

type views map[anchor.ID]ast.ContentView

func (v views) View(id anchor.ID) (ast.ContentView, bool) {
	cv, ok := v[id]
	return cv, ok
}

func TestReplaceContent(t *testing.T) {
	src := "> - a\n>   b\n"
	id := anchor.NewID()
	c := &Compiler{Views: views{id: ast.Lines([]ast.ContentLine{
		{Raw: buffer.NewSpan(0, 6), Prefix: buffer.NewSpan(0, 4), Content: buffer.NewSpan(4, 5)},
		{Raw: buffer.NewSpan(6, 12), Prefix: buffer.NewSpan(6, 10), Content: buffer.NewSpan(10, 11)},
	})}}

	got, sel := compile(t, c, src, ReplaceContent{Anchor: id, Text: "a\nb\nc"}, buffer.Span{})
	if want := "> - a\n>   b\n>   c\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if sel != caret(17) {
		t.Errorf("expected caret at 17, got %s", sel)
	}
}
