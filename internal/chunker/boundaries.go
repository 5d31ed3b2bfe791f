package chunker

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// SentenceBoundaries returns ascending byte offsets that sit immediately after
// sentence-ending punctuation (ASCII . ! ? ; and the full-width 。！？；).
// The text length is always the final element. Offsets never fall inside a
// multi-byte code point.
func SentenceBoundaries(text string) []int {
	var boundaries []int
	for i, r := range text {
		switch r {
		case '.', '!', '?', ';', '。', '！', '？', '；':
			boundaries = append(boundaries, i+utf8.RuneLen(r))
		}
	}
	if n := len(boundaries); n == 0 || boundaries[n-1] != len(text) {
		boundaries = append(boundaries, len(text))
	}
	return boundaries
}

// Sentences segments text on the same boundaries used for chunking. Pieces are
// trimmed and empty pieces are dropped.
func Sentences(text string) []string {
	var out []string
	prev := 0
	for _, b := range SentenceBoundaries(text) {
		if s := strings.TrimSpace(text[prev:b]); s != "" {
			out = append(out, s)
		}
		prev = b
	}
	return out
}

// lastBoundaryIn returns the largest boundary in (lo, hi].
func lastBoundaryIn(boundaries []int, lo, hi int) (int, bool) {
	// first index with boundary > hi
	i := sort.SearchInts(boundaries, hi+1)
	if i == 0 {
		return 0, false
	}
	if b := boundaries[i-1]; b > lo {
		return b, true
	}
	return 0, false
}

// firstBoundaryIn returns the smallest boundary in (lo, hi].
func firstBoundaryIn(boundaries []int, lo, hi int) (int, bool) {
	i := sort.SearchInts(boundaries, lo+1)
	if i < len(boundaries) && boundaries[i] <= hi {
		return boundaries[i], true
	}
	return 0, false
}

// alignCut moves a raw cut back to a rune start. A cut that collapses onto
// start is pushed forward past the rune at start so a chunk is never empty.
func alignCut(text string, start, cut int) int {
	if cut >= len(text) {
		return len(text)
	}
	for cut > start && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == start {
		_, size := utf8.DecodeRuneInString(text[start:])
		cut = start + size
	}
	return cut
}

// alignBack moves i back to the nearest rune start.
func alignBack(text string, i int) int {
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
