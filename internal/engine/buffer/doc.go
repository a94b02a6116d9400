// Package buffer provides the document byte store and the edit vocabulary
// used across the engine.
//
// The package provides:
//
//   - Buffer: exact document bytes over an immutable rope
//   - Span: a byte range [Start, End)
//   - Edit: one replacement of a Span by new text
//   - Delta: a sorted, non-overlapping set of edits in pre-edit coordinates,
//     able to transform offsets and spans through itself
//
// Basic usage:
//
//	buf, _ := buffer.FromString("Hello")
//	d, _ := buffer.NewDelta(buffer.NewInsert(0, "XY"))
//	undo, _ := buf.Apply(d)           // "XYHello"
//	s, ok := d.TransformSpan(buffer.NewSpan(0, 5))  // [2:7), true
//	buf.Apply(undo)                   // "Hello"
//
// Transform semantics:
//
// An edit entirely before a span shifts it. An edit inside grows or shrinks
// it. An edit straddling a boundary truncates the span to the part that was
// not overwritten. Text inserted exactly at a span start lands before the
// span; text inserted exactly at its end lands after it.
package buffer
