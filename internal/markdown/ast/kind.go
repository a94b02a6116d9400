package ast

// Kind tags a Node. Every switch over Kind in the parser and the engine is
// exhaustive over the groups below.
type Kind uint8

// Block kinds.
const (
	KindDocument Kind = iota
	KindBlockQuote
	KindList
	KindListItem
	KindParagraph
	KindHeading
	KindFencedCode
	KindThematicBreak
	KindHTMLBlock

	// Inline kinds.
	KindText
	KindCodeSpan
	KindWikiLink
	KindLink
	KindEmphasis
	KindStrong

	// Syntax tokens. They carry no meaning of their own and exist so that
	// the leaves of a tree tile the source exactly.
	KindMarker     // opening delimiter of a container or leaf block
	KindPrefix     // container decoration on a line
	KindBlankLine  // a line holding only whitespace and container prefixes
	KindLineEnding // terminator of the last line of a leaf block
	KindSoftBreak  // line terminator plus next line's prefix inside inline content
	KindDelimiter  // delimiter of an inline construct
	KindCodeText   // raw code inside a fence or code span
)

var kindNames = [...]string{
	KindDocument:      "Document",
	KindBlockQuote:    "BlockQuote",
	KindList:          "List",
	KindListItem:      "ListItem",
	KindParagraph:     "Paragraph",
	KindHeading:       "Heading",
	KindFencedCode:    "FencedCode",
	KindThematicBreak: "ThematicBreak",
	KindHTMLBlock:     "HTMLBlock",
	KindText:          "Text",
	KindCodeSpan:      "CodeSpan",
	KindWikiLink:      "WikiLink",
	KindLink:          "Link",
	KindEmphasis:      "Emphasis",
	KindStrong:        "Strong",
	KindMarker:        "Marker",
	KindPrefix:        "Prefix",
	KindBlankLine:     "BlankLine",
	KindLineEnding:    "LineEnding",
	KindSoftBreak:     "SoftBreak",
	KindDelimiter:     "Delimiter",
	KindCodeText:      "CodeText",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsBlock reports whether k is a block below the document root.
func (k Kind) IsBlock() bool {
	return k >= KindBlockQuote && k <= KindHTMLBlock
}

// IsContainer reports whether k holds other blocks.
func (k Kind) IsContainer() bool {
	switch k {
	case KindDocument, KindBlockQuote, KindList, KindListItem:
		return true
	}
	return false
}

// IsLeafBlock reports whether k is a block that holds no other blocks.
func (k Kind) IsLeafBlock() bool {
	return k >= KindParagraph && k <= KindHTMLBlock
}

// IsInline reports whether k is produced by the inline parser.
func (k Kind) IsInline() bool {
	return k >= KindText && k <= KindStrong
}

// IsSyntax reports whether k is a syntax token.
func (k Kind) IsSyntax() bool {
	return k >= KindMarker
}

// IsRaw reports whether the interior of k is never parsed further.
func (k Kind) IsRaw() bool {
	switch k {
	case KindCodeSpan, KindFencedCode, KindHTMLBlock:
		return true
	}
	return false
}
