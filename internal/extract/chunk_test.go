package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		size  int
		want  int
		last  int // rune length of last chunk
	}{
		{"shorter than size", "hello", 100, 1, 5},
		{"exact size", strings.Repeat("a", 100), 100, 1, 100},
		{"one over", strings.Repeat("a", 101), 100, 2, 1},
		{"fifteen thousand", strings.Repeat("a", 15000), 6000, 3, 3000},
		{"multibyte runes", strings.Repeat("ü", 10), 4, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitChunks(tt.text, tt.size)
			if len(chunks) != tt.want {
				t.Fatalf("got %d chunks, want %d", len(chunks), tt.want)
			}
			for i, c := range chunks[:len(chunks)-1] {
				if n := utf8.RuneCountInString(c); n != tt.size {
					t.Errorf("chunk %d length %d, want %d", i, n, tt.size)
				}
			}
			if n := utf8.RuneCountInString(chunks[len(chunks)-1]); n != tt.last {
				t.Errorf("last chunk length %d, want %d", n, tt.last)
			}
			if strings.Join(chunks, "") != tt.text {
				t.Error("chunks do not reassemble the input")
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"mixed terminators",
			"One. Two! Three? Four.",
			[]string{"One.", "Two!", "Three?", "Four."},
		},
		{
			"no trailing terminator",
			"First sentence. trailing fragment",
			[]string{"First sentence.", "trailing fragment"},
		},
		{
			"terminator without whitespace does not split",
			"Version 2.5 shipped. Done.",
			[]string{"Version 2.5 shipped.", "Done."},
		},
		{
			"empty input",
			"   ",
			nil,
		},
		{
			"newline separated",
			"Alpha.\nBeta.",
			[]string{"Alpha.", "Beta."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sentences %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Water   Boils  ", "water boils"},
		{"water boils", "water boils"},
		{"WATER\t\nBOILS", "water boils"},
	}
	for _, tt := range tests {
		if got := normalizeContent(tt.in); got != tt.want {
			t.Errorf("normalizeContent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
