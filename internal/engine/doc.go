// Package engine provides the Markdown+ editing core of mdcore.
//
// The engine package serves as the main facade: a Document combines the
// byte buffer, the lossless span tree, the anchor layer, the selection and
// undo/redo into one synchronous API suitable for building Markdown
// editors.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - rope: B+ tree rope for efficient text storage (O(log n) operations)
//   - buffer: Buffer, Span, Edit and Delta
//   - command: compiles editing commands into deltas
//   - anchor: stable block ids that survive edits
//   - projection: prefix-aware content views and write-back
//   - snapshot: ordered render blocks for frontends
//   - history: delta-based undo/redo
//
// Parsing lives in the markdown package.
//
// # Edit Pipeline
//
// Every Apply runs the same steps: compile the command into a delta, apply
// it to the buffer, move every anchor through it, reparse the top-level
// blocks it touched, rebind the anchors in that region and bump the
// version. The returned Patch lists the written spans, the reparsed region,
// the new selection and the anchors created and dropped.
//
// # Basic Usage
//
//	doc, err := engine.New([]byte("- a\n- b\n"))
//	if err != nil {
//	    return err
//	}
//
//	// Split the first item after "a"
//	patch, err := doc.Apply(command.SplitListItem{At: 3})
//	// doc.Text() == "- a\n- \n- b\n"
//
//	// Render
//	snap := doc.Snapshot()
//
//	// Undo the split
//	doc.Undo()
//
// # Thread Safety
//
// A Document is not safe for concurrent use. Hosts serialize access; the
// core starts no goroutines.
package engine
