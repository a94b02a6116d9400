package rope

import (
	"math/rand"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	r := New()
	if r.Len() != 0 {
		t.Errorf("expected length 0, got %d", r.Len())
	}
	if !r.IsEmpty() {
		t.Error("expected empty rope")
	}
	if r.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", r.LineCount())
	}
	if r.String() != "" {
		t.Errorf("expected empty string, got %q", r.String())
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"single char", "a"},
		{"with newline", "# Title\nbody"},
		{"crlf kept", "a\r\nb\r\n"},
		{"unicode", "héllo 世界 🌍"},
		{"long", strings.Repeat("- item\n", 2000)},
		{"long no newline", strings.Repeat("x", 5000)},
		{"long multibyte", strings.Repeat("世", 3000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.input)
			if got := r.String(); got != tt.input {
				t.Errorf("expected %q, got %q", tt.input, got)
			}
			if r.Len() != len(tt.input) {
				t.Errorf("expected length %d, got %d", len(tt.input), r.Len())
			}
			if r.LineCount() != strings.Count(tt.input, "\n")+1 {
				t.Errorf("expected %d lines, got %d", strings.Count(tt.input, "\n")+1, r.LineCount())
			}
		})
	}
}

func TestChunksKeepRunes(t *testing.T) {
	s := strings.Repeat("世", 3000)
	for _, c := range splitIntoChunks(s) {
		if c.len() > MaxChunkSize {
			t.Errorf("chunk of %d bytes exceeds max", c.len())
		}
		if !isRuneStart(c.text[0]) {
			t.Errorf("chunk starts inside a rune")
		}
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name       string
		initial    string
		start, end int
		text       string
		expected   string
	}{
		{"insert at start", "world", 0, 0, "hello ", "hello world"},
		{"insert at end", "hello", 5, 5, " world", "hello world"},
		{"insert middle", "helloworld", 5, 5, " ", "hello world"},
		{"insert into empty", "", 0, 0, "x", "x"},
		{"delete middle", "hello world", 5, 6, "", "helloworld"},
		{"delete all", "hello", 0, 5, "", ""},
		{"replace", "- a\n", 0, 1, "*", "* a\n"},
		{"clamped end", "abc", 1, 99, "", "a"},
		{"noop", "abc", 1, 1, "", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.initial).Replace(tt.start, tt.end, tt.text)
			if got := r.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestImmutability(t *testing.T) {
	r1 := FromString("hello")
	r2 := r1.Insert(5, " world")
	r3 := r2.Delete(0, 6)

	if r1.String() != "hello" {
		t.Errorf("expected original unchanged, got %q", r1.String())
	}
	if r2.String() != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", r2.String())
	}
	if r3.String() != "world" {
		t.Errorf("expected %q, got %q", "world", r3.String())
	}
}

func TestSlice(t *testing.T) {
	text := strings.Repeat("0123456789\n", 500)
	r := FromString(text)
	cases := [][2]int{{0, 0}, {0, 10}, {5, 2000}, {1000, 5500}, {-3, 4}, {5490, 9999}}
	for _, c := range cases {
		lo, hi := max(c[0], 0), min(c[1], len(text))
		want := ""
		if lo < hi {
			want = text[lo:hi]
		}
		if got := r.Slice(c[0], c[1]); got != want {
			t.Errorf("Slice(%d, %d): expected %d bytes, got %d", c[0], c[1], len(want), len(got))
		}
	}
}

func TestLines(t *testing.T) {
	r := FromString("a\nbb\n\nccc")

	starts := []int{0, 2, 5, 6}
	for line, want := range starts {
		if got := r.LineStart(line); got != want {
			t.Errorf("LineStart(%d): expected %d, got %d", line, want, got)
		}
	}
	if got := r.LineStart(10); got != r.Len() {
		t.Errorf("expected past-end line to map to %d, got %d", r.Len(), got)
	}
	if got := r.LineEnd(1); got != 5 {
		t.Errorf("expected LineEnd(1) = 5, got %d", got)
	}
	if got := r.LineEnd(3); got != 9 {
		t.Errorf("expected LineEnd(3) = 9, got %d", got)
	}

	offsets := map[int]int{0: 0, 1: 0, 2: 1, 4: 1, 5: 2, 6: 3, 9: 3}
	for off, want := range offsets {
		if got := r.LineOf(off); got != want {
			t.Errorf("LineOf(%d): expected %d, got %d", off, want, got)
		}
	}
	if got := r.LineStartAt(4); got != 2 {
		t.Errorf("expected LineStartAt(4) = 2, got %d", got)
	}
}

func TestLinesAcrossChunks(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 3000; i++ {
		sb.WriteString(strings.Repeat("x", i%37))
		sb.WriteByte('\n')
	}
	text := sb.String()
	r := FromString(text)

	offset := 0
	for line := 0; line < 3000; line++ {
		if got := r.LineStart(line); got != offset {
			t.Fatalf("LineStart(%d): expected %d, got %d", line, offset, got)
		}
		if got := r.LineOf(offset); got != line {
			t.Fatalf("LineOf(%d): expected %d, got %d", offset, line, got)
		}
		offset += line%37 + 1
	}
}

func TestRandomEditsMatchString(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"a", "\n", "- item\n", "> quote ", "世界", "```\n", strings.Repeat("z", 700)}

	var model string
	r := New()
	for i := 0; i < 2000; i++ {
		start := 0
		if len(model) > 0 {
			start = rng.Intn(len(model) + 1)
		}
		end := start
		if rng.Intn(3) == 0 && start < len(model) {
			end = start + rng.Intn(min(len(model)-start, 50)+1)
		}
		text := ""
		if rng.Intn(4) != 0 {
			text = words[rng.Intn(len(words))]
		}
		model = model[:start] + text + model[end:]
		r = r.Replace(start, end, text)
	}

	if r.String() != model {
		t.Fatalf("rope diverged from model after random edits")
	}
	if r.LineCount() != strings.Count(model, "\n")+1 {
		t.Errorf("expected %d lines, got %d", strings.Count(model, "\n")+1, r.LineCount())
	}
	if r.Height() > 40 {
		t.Errorf("tree height %d is unexpectedly large", r.Height())
	}
}
