package engine

import (
	"log/slog"

	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/engine/history"
	"github.com/dshills/mdcore/internal/markdown/ast"
)

// Default configuration values.
const (
	DefaultIndentUnit     = ast.DefaultIndentUnit
	DefaultMaxUndoEntries = history.DefaultMaxEntries
)

// Option configures a Document during creation.
type Option func(*Document)

// WithLogger sets the logger receiving debug records for every applied
// command. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithIndentUnit sets the text IndentLines inserts and OutdentLines
// removes.
func WithIndentUnit(unit string) Option {
	return func(d *Document) {
		if unit != "" {
			d.indentUnit = unit
		}
	}
}

// WithMaxUndo sets the maximum number of undo history entries.
func WithMaxUndo(max int) Option {
	return func(d *Document) {
		if max > 0 {
			d.maxUndo = max
		}
	}
}

// WithSelection sets the initial selection. New fails if it does not lie
// inside the document on character boundaries.
func WithSelection(sel buffer.Span) Option {
	return func(d *Document) {
		d.sel = sel
	}
}
