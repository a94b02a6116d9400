package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/dshills/mdcore/internal/engine"
	"github.com/dshills/mdcore/internal/engine/anchor"
	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/engine/command"
	"github.com/dshills/mdcore/internal/engine/history"
)

// step is one entry of an edit script:
//
//	- op: insert
//	  at: 0
//	  text: "Hello "
//	- op: toggle
//	  at: 12
//	  marker: "*"
//	- op: content
//	  block: 2
//	  text: "new paragraph text"
//	- op: undo
type step struct {
	Op     string `yaml:"op"`
	At     int    `yaml:"at,omitempty"`
	Start  int    `yaml:"start,omitempty"`
	End    int    `yaml:"end,omitempty"`
	Text   string `yaml:"text,omitempty"`
	Marker string `yaml:"marker,omitempty"`

	// Block indexes the snapshot blocks; Anchor names a block by id and
	// wins over Block.
	Block  int    `yaml:"block,omitempty"`
	Anchor string `yaml:"anchor,omitempty"`
}

var (
	errUnknownOp = errors.New("unknown op")
	errBadBlock  = errors.New("block index out of range")
)

// readScript decodes a YAML list of steps.
func readScript(r io.Reader) ([]step, error) {
	var steps []step
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&steps); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	return steps, nil
}

// runScript applies steps to doc in order and stops at the first failure.
func runScript(doc *engine.Document, steps []step, logger *slog.Logger) error {
	for i, s := range steps {
		entry := entryName(doc, s.Op)
		p, err := runStep(doc, s)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, s.Op, err)
		}
		logger.Info("step applied",
			"step", i+1,
			"op", s.Op,
			"entry", entry,
			"version", p.Version,
			"changed", len(p.Changed),
			"created", len(p.Created),
			"dropped", len(p.Dropped),
		)
	}
	return nil
}

// entryName returns the name of the history entry op reverts or replays,
// or op itself.
func entryName(doc *engine.Document, op string) string {
	var (
		info history.Info
		ok   bool
	)
	switch op {
	case "undo":
		info, ok = doc.PeekUndo()
	case "redo":
		info, ok = doc.PeekRedo()
	}
	if !ok {
		return op
	}
	return info.Name
}

func runStep(doc *engine.Document, s step) (engine.Patch, error) {
	switch s.Op {
	case "undo":
		return doc.Undo()
	case "redo":
		return doc.Redo()
	case "select":
		if err := doc.SetSelection(buffer.NewSpan(s.Start, s.End)); err != nil {
			return engine.Patch{}, err
		}
		return engine.Patch{NewSelection: doc.Selection(), Version: doc.Version()}, nil
	}
	cmd, err := s.command(doc)
	if err != nil {
		return engine.Patch{}, err
	}
	return doc.Apply(cmd)
}

// command converts s into an engine command.
func (s step) command(doc *engine.Document) (command.Cmd, error) {
	r := buffer.NewSpan(s.Start, s.End)
	switch s.Op {
	case "insert":
		return command.InsertText{At: s.At, Text: s.Text}, nil
	case "delete":
		return command.DeleteRange{Range: r}, nil
	case "replace":
		return command.ReplaceRange{Range: r, Text: s.Text}, nil
	case "split":
		return command.SplitListItem{At: s.At}, nil
	case "indent":
		return command.IndentLines{Range: r}, nil
	case "outdent":
		return command.OutdentLines{Range: r}, nil
	case "toggle":
		return command.ToggleMarker{LineStart: s.At, To: command.Marker(s.Marker)}, nil
	case "content":
		id, err := s.anchor(doc)
		if err != nil {
			return nil, err
		}
		return command.ReplaceContent{Anchor: id, Text: s.Text}, nil
	}
	return nil, fmt.Errorf("%w %q", errUnknownOp, s.Op)
}

func (s step) anchor(doc *engine.Document) (anchor.ID, error) {
	if s.Anchor != "" {
		return anchor.ParseID(s.Anchor)
	}
	blocks := doc.Snapshot().Blocks
	if s.Block < 0 || s.Block >= len(blocks) {
		return anchor.ID{}, fmt.Errorf("%w: %d of %d", errBadBlock, s.Block, len(blocks))
	}
	return blocks[s.Block].ID, nil
}
