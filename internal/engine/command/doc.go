// Package command compiles edit intents into buffer deltas.
//
// A Cmd describes what the user meant (type text, split a list item,
// indent a selection); the Compiler resolves it against the current text
// into a buffer.Delta touching only the bytes the intent requires, plus the
// selection to show afterwards.
//
// Commands:
//
//   - InsertText, DeleteRange, ReplaceRange: raw byte edits
//   - SplitListItem: line break that continues the current list item, or
//     removes the marker of an empty item
//   - IndentLines, OutdentLines: add or remove one indent unit per line
//   - ToggleMarker: swap the list marker of one line; ordered lists are
//     never renumbered
//   - ReplaceContent: prefix-preserving write-back of a block's content
//
// Compile never touches the document. Invalid offsets and unknown anchors
// come back as errors wrapping buffer.ErrOffsetOutOfRange and friends, or
// the sentinel errors of this package.
package command
