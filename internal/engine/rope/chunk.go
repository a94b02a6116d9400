package rope

import "strings"

// Chunk sizing. Leaves split chunks so that no chunk exceeds MaxChunkSize.
const (
	// MinChunkSize is the smallest chunk produced when splitting long text.
	MinChunkSize = 256

	// MaxChunkSize is the largest chunk stored in a leaf.
	MaxChunkSize = 1024

	// targetChunkSize is where splitIntoChunks starts looking for a boundary.
	targetChunkSize = (MinChunkSize + MaxChunkSize) / 2
)

// chunk is an immutable piece of text with its precomputed summary.
type chunk struct {
	text    string
	summary TextSummary
}

func newChunk(s string) chunk {
	return chunk{text: s, summary: summarize(s)}
}

func (c chunk) len() int {
	return len(c.text)
}

// splitAt splits the chunk at byte offset i.
func (c chunk) splitAt(i int) (chunk, chunk) {
	if i <= 0 {
		return chunk{}, c
	}
	if i >= len(c.text) {
		return c, chunk{}
	}
	return newChunk(c.text[:i]), newChunk(c.text[i:])
}

// nthNewline returns the index just past the n-th newline (1-based) in the chunk.
func (c chunk) nthNewline(n int) int {
	pos := 0
	for ; n > 0; n-- {
		i := strings.IndexByte(c.text[pos:], '\n')
		if i < 0 {
			return -1
		}
		pos += i + 1
	}
	return pos
}

// splitIntoChunks cuts s into chunks no larger than MaxChunkSize, preferring
// boundaries just after a newline and never cutting a UTF-8 sequence.
func splitIntoChunks(s string) []chunk {
	if len(s) == 0 {
		return nil
	}
	chunks := make([]chunk, 0, len(s)/targetChunkSize+1)
	for len(s) > MaxChunkSize {
		cut := chunkBoundary(s, targetChunkSize)
		chunks = append(chunks, newChunk(s[:cut]))
		s = s[cut:]
	}
	return append(chunks, newChunk(s))
}

// chunkBoundary finds a cut position near target.
func chunkBoundary(s string, target int) int {
	lo := target - MinChunkSize/2
	hi := target + MinChunkSize/2
	if hi > len(s) {
		hi = len(s)
	}
	for i := target; i < hi; i++ {
		if s[i] == '\n' {
			return i + 1
		}
	}
	for i := target - 1; i >= lo; i-- {
		if s[i] == '\n' {
			return i + 1
		}
	}
	pos := target
	for pos > 0 && !isRuneStart(s[pos]) {
		pos--
	}
	if pos == 0 {
		pos = target
		for pos < len(s) && !isRuneStart(s[pos]) {
			pos++
		}
	}
	return pos
}

// isRuneStart reports whether b begins a UTF-8 sequence (is not a continuation byte).
func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
