package ast

// Syntax markers, grouped by the construct that owns them. Parsers and the
// command compiler refer to these instead of literals.

// BlockQuote.
const (
	BlockQuoteMarker = '>'
)

// List and ListItem.
const (
	BulletMarkers      = "-*+"
	OrderedDelimiters  = ".)"
	MaxOrderedDigits   = 9
	TaskUnchecked      = "[ ]"
	TaskCheckedMarkers = "xX"

	// ContentIndentLimit is the widest gap after a list marker that still
	// belongs to the marker; wider gaps leave one space in the marker.
	ContentIndentLimit = 4
)

// MaxBlockIndent is the indentation a block opener may carry before it stops
// being recognized.
const MaxBlockIndent = 3

// Indentation.
const (
	DefaultIndentUnit = "  "
	TabWidth          = 4
)

// Heading.
const (
	HeadingMarker   = '#'
	MaxHeadingLevel = 6
)

// FencedCode.
const (
	FenceBacktick  = '`'
	FenceTilde     = '~'
	MinFenceLength = 3
)

// ThematicBreak.
const (
	ThematicBreakChars = "-*_"
	MinThematicBreak   = 3
)

// HTMLBlock.
const (
	HTMLOpen = '<'
)

// CodeSpan.
const (
	CodeSpanDelimiter = '`'
)

// WikiLink.
const (
	WikiLinkOpen     = "[["
	WikiLinkClose    = "]]"
	WikiLinkAliasSep = '|'
)

// Link.
const (
	LinkLabelOpen  = '['
	LinkLabelClose = ']'
	LinkDestOpen   = '('
	LinkDestClose  = ')'
)

// Emphasis and Strong.
const (
	EmphasisDelimiter = "*"
	StrongDelimiter   = "**"
)

// Escape introduces a literal punctuation character in inline content.
const Escape = '\\'
