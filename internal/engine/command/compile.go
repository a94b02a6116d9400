package command

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/mdcore/internal/engine/anchor"
	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/engine/projection"
	"github.com/dshills/mdcore/internal/markdown/ast"
	"github.com/dshills/mdcore/internal/markdown/block"
)

// Errors returned by Compile in addition to the buffer errors.
var (
	ErrNotLineStart   = errors.New("offset is not a line start")
	ErrUnknownAnchor  = errors.New("unknown anchor")
	ErrUnknownMarker  = errors.New("unknown list marker")
	ErrUnknownCommand = errors.New("unknown command")
)

// Text is the read access the compiler needs into the document.
type Text interface {
	Len() int
	Slice(s buffer.Span) string
	LineSpan(offset buffer.ByteOffset) buffer.Span
	CheckSpan(s buffer.Span) error
}

// Views resolves an anchor to the content view of its block.
type Views interface {
	View(id anchor.ID) (ast.ContentView, bool)
}

// Compiler turns commands into deltas.
type Compiler struct {
	// IndentUnit is inserted by IndentLines and removed by OutdentLines.
	// Empty means ast.DefaultIndentUnit.
	IndentUnit string

	// Views backs ReplaceContent. It may be nil when that command is not
	// used.
	Views Views
}

// Result is a compiled command.
type Result struct {
	Delta buffer.Delta

	// Selection is the selection after the delta is applied, in new
	// coordinates.
	Selection buffer.Span
}

// Compile compiles cmd against text. sel is the current selection; commands
// that do not place the caret themselves carry it through the delta.
// Precondition failures wrap the buffer errors or the errors above.
func (c *Compiler) Compile(text Text, cmd Cmd, sel buffer.Span) (Result, error) {
	var (
		res Result
		err error
	)
	switch cmd := cmd.(type) {
	case InsertText:
		res, err = c.insert(text, cmd)
	case DeleteRange:
		res, err = c.replace(text, cmd.Range, "")
	case ReplaceRange:
		res, err = c.replace(text, cmd.Range, cmd.Text)
	case SplitListItem:
		res, err = c.split(text, cmd.At)
	case IndentLines:
		res, err = c.indent(text, cmd.Range, sel)
	case OutdentLines:
		res, err = c.outdent(text, cmd.Range, sel)
	case ToggleMarker:
		res, err = c.toggle(text, cmd, sel)
	case ReplaceContent:
		res, err = c.replaceContent(text, cmd)
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return res, nil
}

func (c *Compiler) indentUnit() string {
	if c.IndentUnit == "" {
		return ast.DefaultIndentUnit
	}
	return c.IndentUnit
}

func caret(off buffer.ByteOffset) buffer.Span {
	return buffer.NewSpan(off, off)
}

func build(sel buffer.Span, edits ...buffer.Edit) (Result, error) {
	d, err := buffer.NewDelta(edits...)
	if err != nil {
		return Result{}, err
	}
	return Result{Delta: d, Selection: sel}, nil
}

// carry builds a delta from edits and moves sel through it, both ends
// following text inserted at them.
func carry(sel buffer.Span, edits ...buffer.Edit) (Result, error) {
	res, err := build(sel, edits...)
	if err != nil {
		return Result{}, err
	}
	res.Selection = buffer.NewSpan(
		res.Delta.TransformOffset(sel.Start, buffer.BiasAfter),
		res.Delta.TransformOffset(sel.End, buffer.BiasAfter),
	)
	return res, nil
}

func checkText(s string) error {
	if !utf8.ValidString(s) {
		return buffer.ErrInvalidUTF8
	}
	return nil
}

func (c *Compiler) insert(text Text, cmd InsertText) (Result, error) {
	if err := text.CheckSpan(caret(cmd.At)); err != nil {
		return Result{}, err
	}
	if err := checkText(cmd.Text); err != nil {
		return Result{}, err
	}
	return build(caret(cmd.At+len(cmd.Text)), buffer.NewInsert(cmd.At, cmd.Text))
}

func (c *Compiler) replace(text Text, r buffer.Span, s string) (Result, error) {
	if err := text.CheckSpan(r); err != nil {
		return Result{}, err
	}
	if err := checkText(s); err != nil {
		return Result{}, err
	}
	return build(caret(r.Start+len(s)), buffer.NewReplace(r.Start, r.End, s))
}

// line is one physical line of the document.
type line struct {
	start buffer.ByteOffset
	text  string
	term  string
}

func lineAt(text Text, off buffer.ByteOffset) line {
	s := text.LineSpan(off)
	raw := text.Slice(s)
	l := line{start: s.Start, text: raw}
	switch {
	case strings.HasSuffix(raw, "\r\n"):
		l.text, l.term = raw[:len(raw)-2], "\r\n"
	case strings.HasSuffix(raw, "\n"):
		l.text, l.term = raw[:len(raw)-1], "\n"
	}
	return l
}

func (l line) end() buffer.ByteOffset {
	return l.start + len(l.text)
}

func (l line) next() buffer.ByteOffset {
	return l.end() + len(l.term)
}

// linesIn returns the line containing r.Start and every following line
// starting before r.End.
func linesIn(text Text, r buffer.Span) []line {
	l := lineAt(text, r.Start)
	out := []line{l}
	for l.term != "" && l.next() < r.End {
		l = lineAt(text, l.next())
		out = append(out, l)
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimLeft(s, " \t") == ""
}

// itemBody returns the offset, relative to the line start, where the text
// of a list item begins: after the marker and any task box.
func itemBody(text string, m block.ListMarker) int {
	body := m.Content
	if m.Task {
		body += len(ast.TaskUnchecked)
		if body < len(text) && (text[body] == ' ' || text[body] == '\t') {
			body++
		}
	}
	return body
}

func (c *Compiler) split(text Text, at buffer.ByteOffset) (Result, error) {
	if err := text.CheckSpan(caret(at)); err != nil {
		return Result{}, err
	}
	l := lineAt(text, at)
	at = min(at, l.end())
	cl := block.ClassifyLine(l.text)
	term := l.term
	if term == "" {
		term = "\n"
	}

	if !cl.HasMarker {
		ins := term + l.text[:cl.QuoteEnd]
		return build(caret(at+len(ins)), buffer.NewInsert(at, ins))
	}

	m := cl.Marker
	body := itemBody(l.text, m)
	if isBlank(l.text[body:]) {
		// Empty item: drop the marker and indentation, keep quote markers.
		start := l.start + cl.QuoteEnd
		return build(caret(start), buffer.NewDelete(start, l.end()))
	}

	at = max(at, l.start+body)
	var sb strings.Builder
	sb.WriteString(term)
	sb.WriteString(l.text[:m.Start])
	sb.WriteString(m.Text)
	sb.WriteString(l.text[m.End:m.Content])
	if m.Task {
		sb.WriteString(ast.TaskUnchecked)
		sb.WriteByte(' ')
	}
	ins := sb.String()
	return build(caret(at+len(ins)), buffer.NewInsert(at, ins))
}

func (c *Compiler) indent(text Text, r buffer.Span, sel buffer.Span) (Result, error) {
	if err := text.CheckSpan(r); err != nil {
		return Result{}, err
	}
	unit := c.indentUnit()
	var edits []buffer.Edit
	for _, l := range linesIn(text, r) {
		cl := block.ClassifyLine(l.text)
		if isBlank(l.text[cl.QuoteEnd:]) {
			continue
		}
		edits = append(edits, buffer.NewInsert(l.start+cl.QuoteEnd, unit))
	}
	return carry(sel, edits...)
}

func (c *Compiler) outdent(text Text, r buffer.Span, sel buffer.Span) (Result, error) {
	if err := text.CheckSpan(r); err != nil {
		return Result{}, err
	}
	width := projection.DisplayWidth(c.indentUnit())
	var edits []buffer.Edit
	for _, l := range linesIn(text, r) {
		cl := block.ClassifyLine(l.text)
		rest := l.text[cl.QuoteEnd:]
		n := 0
		if strings.HasPrefix(rest, "\t") {
			n = 1
		} else {
			for n < width && n < len(rest) && rest[n] == ' ' {
				n++
			}
		}
		if n > 0 {
			start := l.start + cl.QuoteEnd
			edits = append(edits, buffer.NewDelete(start, start+n))
		}
	}
	return carry(sel, edits...)
}

func (c *Compiler) toggle(text Text, cmd ToggleMarker, sel buffer.Span) (Result, error) {
	if !cmd.To.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMarker, cmd.To)
	}
	if err := text.CheckSpan(caret(cmd.LineStart)); err != nil {
		return Result{}, err
	}
	if text.LineSpan(cmd.LineStart).Start != cmd.LineStart {
		return Result{}, fmt.Errorf("%w: %d", ErrNotLineStart, cmd.LineStart)
	}
	l := lineAt(text, cmd.LineStart)
	cl := block.ClassifyLine(l.text)
	if !cl.HasMarker {
		at := l.start + cl.QuoteEnd + cl.Indent
		return carry(sel, buffer.NewInsert(at, string(cmd.To)+" "))
	}
	m := cl.Marker
	if m.Text == string(cmd.To) || (cmd.To == MarkerNumbered && m.Ordered) {
		return carry(sel)
	}
	return carry(sel, buffer.NewReplace(l.start+m.Start, l.start+m.End, string(cmd.To)))
}

func (c *Compiler) replaceContent(text Text, cmd ReplaceContent) (Result, error) {
	if c.Views == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownAnchor, cmd.Anchor)
	}
	v, ok := c.Views.View(cmd.Anchor)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownAnchor, cmd.Anchor)
	}
	edits, err := projection.WriteBack(text, v, cmd.Text)
	if err != nil {
		return Result{}, err
	}
	res, err := build(buffer.Span{}, edits...)
	if err != nil {
		return Result{}, err
	}
	res.Selection = caret(res.Delta.TransformOffset(v.ContentRange().End, buffer.BiasAfter))
	return res, nil
}
