// Package projection maps block content views to editable text and back.
//
// A block inside a blockquote or list item carries a per-line view: each
// line splits into the container decoration (prefix) and the text the user
// actually edits (content). Join presents the content with prefixes hidden;
// WriteBack turns edited content into buffer edits that re-emit every
// original prefix unchanged.
//
//	text := projection.Join(buf, view)         // "a\nb"
//	edits, _ := projection.WriteBack(buf, view, "a\nb\nc")
//	// the new line gets the continuation prefix of the last line
//
// LocalOffset and GlobalOffset translate positions between the buffer and
// the joined content.
package projection
