// Package rope provides the immutable rope that stores document bytes.
//
// A rope is a B+ tree whose leaves hold bounded text chunks and whose internal
// nodes cache a summary (byte count and newline count) per child. Every edit
// returns a new Rope that shares untouched subtrees with the old one, so the
// previous version stays valid for as long as a caller holds it.
//
// The rope is lossless: it never normalizes line endings or validates content.
// Callers that need UTF-8 guarantees check them before inserting.
//
// Basic usage:
//
//	r := rope.FromString("# Title\n")
//	r = r.Insert(2, "My ")        // "# My Title\n"
//	r = r.Delete(0, 2)            // "My Title\n"
//	line := r.LineOf(5)           // 0
//
// Insert, Delete, Slice and the line lookups are O(log n).
package rope
