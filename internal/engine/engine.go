package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dshills/mdcore/internal/engine/anchor"
	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/engine/command"
	"github.com/dshills/mdcore/internal/engine/history"
	"github.com/dshills/mdcore/internal/engine/projection"
	"github.com/dshills/mdcore/internal/engine/snapshot"
	"github.com/dshills/mdcore/internal/markdown"
	"github.com/dshills/mdcore/internal/markdown/ast"
)

// Re-export commonly used types for convenience.
type (
	// ByteOffset is a byte position in the document.
	ByteOffset = buffer.ByteOffset

	// Span is a half-open byte range.
	Span = buffer.Span

	// Delta is a set of edits in pre-edit coordinates.
	Delta = buffer.Delta

	// Cmd is an editing command.
	Cmd = command.Cmd

	// AnchorID identifies a block across edits.
	AnchorID = anchor.ID

	// Anchor is a stable id bound to a block.
	Anchor = anchor.Anchor

	// Snapshot is the render view of one document version.
	Snapshot = snapshot.Snapshot
)

// Document owns the bytes of one Markdown+ text together with its span
// tree, its anchors, its selection and its undo history. Every change goes
// through Apply, Undo or Redo, which run the same pipeline: apply the
// delta to the buffer, move the anchors, reparse the changed region and
// rebind the anchors in it.
//
// A Document is not safe for concurrent use.
type Document struct {
	buf      *buffer.Buffer
	tree     *ast.Tree
	anchors  *anchor.Manager
	history  *history.History
	compiler command.Compiler
	logger   *slog.Logger

	version uint64
	sel     buffer.Span

	// Configuration
	indentUnit string
	maxUndo    int
}

// New creates a document holding src, which must be valid UTF-8. Every
// block of the initial tree gets an anchor.
func New(src []byte, opts ...Option) (*Document, error) {
	buf, err := buffer.FromBytes(src)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	d := &Document{
		buf:        buf,
		anchors:    anchor.NewManager(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		indentUnit: DefaultIndentUnit,
		maxUndo:    DefaultMaxUndoEntries,
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := buf.CheckSpan(d.sel); err != nil {
		return nil, fmt.Errorf("initial selection: %w", err)
	}

	d.history = history.New(d.maxUndo)
	d.compiler = command.Compiler{IndentUnit: d.indentUnit, Views: d}
	d.tree = markdown.Parse(buf.Text())
	for _, id := range d.tree.Blocks() {
		n := d.tree.Node(id)
		d.anchors.Ensure(n.Span, n.Kind)
	}
	return d, nil
}

// NewFromReader creates a document from everything r yields.
func NewFromReader(r io.Reader, opts ...Option) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return New(src, opts...)
}

// ============================================================================
// Read Operations
// ============================================================================

// Text returns the full content.
func (d *Document) Text() string {
	return d.buf.Text()
}

// Bytes returns the full content as a new byte slice.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Len returns the content length in bytes.
func (d *Document) Len() ByteOffset {
	return d.buf.Len()
}

// Slice returns the bytes of s.
func (d *Document) Slice(s Span) string {
	return d.buf.Slice(s)
}

// Version returns the number of content changes applied so far.
func (d *Document) Version() uint64 {
	return d.version
}

// Tree returns the current span tree. It must not be modified.
func (d *Document) Tree() *ast.Tree {
	return d.tree
}

// Selection returns the current selection.
func (d *Document) Selection() Span {
	return d.sel
}

// SetSelection replaces the selection.
func (d *Document) SetSelection(sel Span) error {
	if err := d.buf.CheckSpan(sel); err != nil {
		return err
	}
	d.sel = sel
	return nil
}

// Anchors returns the live anchors in document order.
func (d *Document) Anchors() []Anchor {
	return d.anchors.All()
}

// Anchor returns the anchor with the given id.
func (d *Document) Anchor(id AnchorID) (Anchor, bool) {
	return d.anchors.Get(id)
}

// Snapshot returns the render blocks of the current version.
func (d *Document) Snapshot() Snapshot {
	return snapshot.Build(d.tree, d.buf, d.version, d.anchors)
}

// View returns the editable content view of the block bound to id.
func (d *Document) View(id AnchorID) (ast.ContentView, bool) {
	n, ok := d.block(id)
	if !ok {
		return ast.ContentView{}, false
	}
	return snapshot.ContentView(d.tree, d.buf, n), true
}

// ContentText returns the content of the block bound to id with container
// prefixes hidden.
func (d *Document) ContentText(id AnchorID) (string, error) {
	v, ok := d.View(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAnchor, id)
	}
	return projection.Join(d.buf, v), nil
}

// block returns the tree node an anchor is bound to.
func (d *Document) block(id AnchorID) (ast.NodeID, bool) {
	a, ok := d.anchors.Get(id)
	if !ok {
		return ast.NoNode, false
	}
	for _, n := range d.tree.BlocksIn(a.Block) {
		node := d.tree.Node(n)
		if node.Span == a.Block && node.Kind == a.Kind {
			return n, true
		}
	}
	return ast.NoNode, false
}

// ============================================================================
// Edit Operations
// ============================================================================

// Apply compiles cmd against the current text and selection and applies
// it. Precondition failures leave the document untouched.
func (d *Document) Apply(cmd Cmd) (Patch, error) {
	p, _, err := d.applyCmd(cmd)
	return p, err
}

// ApplyAll applies cmds in order as one undo entry named name. Each
// command compiles against the text and selection the previous one left.
// If a command fails, the ones before it are reverted and the error is
// returned; anchors they dropped do not come back.
func (d *Document) ApplyAll(name string, cmds ...Cmd) (Patch, error) {
	before := d.sel
	var total Patch
	err := d.history.Transaction(name, func() error {
		for i, cmd := range cmds {
			p, delta, err := d.applyCmd(cmd)
			if err != nil {
				return fmt.Errorf("command %d: %w", i+1, err)
			}
			total = total.merge(delta, p)
		}
		return nil
	}, func(e *history.Entry) error {
		_, err := d.replay(e.Undo(), before)
		return err
	})
	if err != nil {
		return Patch{}, err
	}
	total.NewSelection = d.sel
	total.Version = d.version
	return total, nil
}

func (d *Document) applyCmd(cmd Cmd) (Patch, Delta, error) {
	res, err := d.compiler.Compile(d.buf, cmd, d.sel)
	if err != nil {
		return Patch{}, Delta{}, err
	}
	before := d.sel
	p, inverse, err := d.apply(res.Delta, res.Selection)
	if err != nil {
		return Patch{}, Delta{}, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	if !res.Delta.IsEmpty() {
		d.history.Push(cmd.Name(), history.Step{Forward: res.Delta, Inverse: inverse}, before, res.Selection)
	}
	d.log(cmd.Name(), p)
	return p, res.Delta, nil
}

// ApplyDelta applies a raw delta, recording it for undo under name.
func (d *Document) ApplyDelta(name string, delta Delta) (Patch, error) {
	sel := buffer.NewSpan(
		delta.TransformOffset(d.sel.Start, buffer.BiasAfter),
		delta.TransformOffset(d.sel.End, buffer.BiasAfter),
	)
	before := d.sel
	p, inverse, err := d.apply(delta, sel)
	if err != nil {
		return Patch{}, fmt.Errorf("%s: %w", name, err)
	}
	if !delta.IsEmpty() {
		d.history.Push(name, history.Step{Forward: delta, Inverse: inverse}, before, sel)
	}
	d.log(name, p)
	return p, nil
}

// apply runs the edit pipeline for one delta and returns its patch and
// inverse. An empty delta only moves the selection.
func (d *Document) apply(delta Delta, sel Span) (Patch, Delta, error) {
	if delta.IsEmpty() {
		d.sel = sel
		return Patch{NewSelection: sel, Version: d.version}, Delta{}, nil
	}
	inverse, err := d.buf.Apply(delta)
	if err != nil {
		return Patch{}, Delta{}, err
	}

	dropped := d.anchors.Transform(delta)
	tree, region := markdown.Reparse(d.tree, d.buf, delta)
	d.tree = tree
	changed := delta.Changed()
	created, lost := d.anchors.Rebind(region, d.targets(region), changed)

	d.version++
	d.sel = sel
	return Patch{
		Changed:      changed,
		Region:       region,
		NewSelection: sel,
		Version:      d.version,
		Created:      created,
		Dropped:      append(dropped, lost...),
	}, inverse, nil
}

// targets lists the blocks overlapping region.
func (d *Document) targets(region Span) []anchor.Target {
	ids := d.tree.BlocksIn(region)
	out := make([]anchor.Target, len(ids))
	for i, id := range ids {
		n := d.tree.Node(id)
		out[i] = anchor.Target{Span: n.Span, Kind: n.Kind}
	}
	return out
}

func (d *Document) log(name string, p Patch) {
	if !d.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	d.logger.Debug("apply",
		"command", name,
		"version", p.Version,
		"region", p.Region.String(),
		"changed", len(p.Changed),
		"created", len(p.Created),
		"dropped", len(p.Dropped),
	)
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo reverts the last command or group. An open group is closed first.
func (d *Document) Undo() (Patch, error) {
	d.history.EndGroup()
	var p Patch
	err := d.history.Undo(func(e *history.Entry) error {
		var err error
		p, err = d.replay(e.Undo(), e.SelectionBefore)
		return err
	})
	if err != nil {
		return Patch{}, err
	}
	d.log("undo", p)
	return p, nil
}

// Redo replays the last undone command or group.
func (d *Document) Redo() (Patch, error) {
	d.history.EndGroup()
	var p Patch
	err := d.history.Redo(func(e *history.Entry) error {
		var err error
		p, err = d.replay(e.Redo(), e.SelectionAfter)
		return err
	})
	if err != nil {
		return Patch{}, err
	}
	d.log("redo", p)
	return p, nil
}

// replay applies deltas in order through the pipeline and merges their
// patches. The selection ends at sel.
func (d *Document) replay(deltas []Delta, sel Span) (Patch, error) {
	var total Patch
	for _, delta := range deltas {
		p, _, err := d.apply(delta, sel)
		if err != nil {
			return Patch{}, err
		}
		total = total.merge(delta, p)
	}
	total.NewSelection = sel
	total.Version = d.version
	d.sel = sel
	return total, nil
}

// CanUndo returns true if undo is available.
func (d *Document) CanUndo() bool {
	return d.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (d *Document) CanRedo() bool {
	return d.history.CanRedo()
}

// UndoInfo describes the undo entries, oldest first.
func (d *Document) UndoInfo() []history.Info {
	return d.history.UndoInfo()
}

// RedoInfo describes the redo entries, oldest first.
func (d *Document) RedoInfo() []history.Info {
	return d.history.RedoInfo()
}

// PeekUndo describes the entry Undo would revert.
func (d *Document) PeekUndo() (history.Info, bool) {
	return d.history.PeekUndo()
}

// PeekRedo describes the entry Redo would replay.
func (d *Document) PeekRedo() (history.Info, bool) {
	return d.history.PeekRedo()
}

// BeginGroup starts grouping applied commands into one undo entry.
func (d *Document) BeginGroup(name string) {
	d.history.BeginGroup(name)
}

// EndGroup closes the current group.
func (d *Document) EndGroup() {
	d.history.EndGroup()
}

// ClearHistory drops all undo and redo entries.
func (d *Document) ClearHistory() {
	d.history.Clear()
}

// ============================================================================
// Validation
// ============================================================================

// Check verifies the structural invariants of the current tree, that it
// equals a full parse of the current text and that every anchor is bound
// to a block of the tree.
func (d *Document) Check() error {
	text := d.buf.Text()
	if err := ast.Validate(d.tree, len(text)); err != nil {
		return err
	}
	if got, want := ast.Dump(d.tree, text), ast.Dump(markdown.Parse(text), text); got != want {
		return fmt.Errorf("%w at version %d", ErrTreeMismatch, d.version)
	}
	blocks := make(map[anchor.Target]bool)
	for _, id := range d.tree.Blocks() {
		n := d.tree.Node(id)
		blocks[anchor.Target{Span: n.Span, Kind: n.Kind}] = true
	}
	for _, a := range d.anchors.All() {
		if !blocks[anchor.Target{Span: a.Block, Kind: a.Kind}] {
			return fmt.Errorf("%w: %s %s%s", ErrStaleAnchor, a.ID, a.Kind, a.Block)
		}
	}
	return nil
}
