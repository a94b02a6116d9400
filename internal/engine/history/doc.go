// Package history provides undo/redo for a document.
//
// Every applied delta is recorded as a Step holding the delta and its
// inverse. Undo hands the last Entry to a callback that applies the
// inverses in reverse order; Redo hands it back to replay the forward
// deltas. Replaying goes through the caller's normal edit pipeline, so
// anything tracking offsets (anchors, selections) follows along.
//
// # History Stack
//
//	h := history.New(1000) // Max 1000 undo entries
//	h.Push("insert", step, selBefore, selAfter)
//
//	h.Undo(func(e *history.Entry) error {
//	    for _, d := range e.Undo() {
//	        // apply d
//	    }
//	    return nil
//	})
//
// # Grouping
//
// Several steps can be recorded as a single undo unit:
//
//	h.BeginGroup("Find and Replace")
//	// ... multiple pushes ...
//	h.EndGroup()
//
// A group records the selection before its first step and after its last.
// Transaction runs a function as one group and, if it fails, hands the
// partial group to a revert callback instead of recording it.
package history
