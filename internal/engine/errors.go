package engine

import (
	"errors"

	"github.com/dshills/mdcore/internal/engine/buffer"
	"github.com/dshills/mdcore/internal/engine/command"
	"github.com/dshills/mdcore/internal/engine/history"
)

// Errors returned by document operations. The buffer and command errors
// are re-exported so callers can test them with errors.Is without
// importing the subpackages.
var (
	// ErrOffsetOutOfRange indicates an offset is outside the document.
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange

	// ErrRangeInvalid indicates an invalid range (e.g., end < start).
	ErrRangeInvalid = buffer.ErrRangeInvalid

	// ErrInvalidUTF8 indicates the input or inserted text is not valid UTF-8.
	ErrInvalidUTF8 = buffer.ErrInvalidUTF8

	// ErrNotCharBoundary indicates an offset splits a UTF-8 sequence.
	ErrNotCharBoundary = buffer.ErrNotCharBoundary

	// ErrNotLineStart indicates a ToggleMarker offset is not a line start.
	ErrNotLineStart = command.ErrNotLineStart

	// ErrUnknownAnchor indicates an anchor id the document does not know.
	ErrUnknownAnchor = command.ErrUnknownAnchor

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo

	// ErrTreeMismatch indicates the incrementally maintained tree differs
	// from a full parse of the current text.
	ErrTreeMismatch = errors.New("tree differs from a full parse")

	// ErrStaleAnchor indicates an anchor bound to a block the tree no
	// longer has.
	ErrStaleAnchor = errors.New("anchor bound to a missing block")
)
