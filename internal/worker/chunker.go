package worker

import (
	"strings"
	"unicode"
)

// splitText partitions text into chunks of at most maxChars characters so
// each synthesis call stays inside the backend's per-request limit.
// Boundaries prefer sentence ends, then whitespace; a single over-long token
// is hard-cut. Operates on runes, never splitting mid-character.
func splitText(text string, maxChars int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= maxChars {
		return []string{string(runes)}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		// Skip whitespace left over from the previous cut
		for start < len(runes) && unicode.IsSpace(runes[start]) {
			start++
		}
		if start >= len(runes) {
			break
		}

		if len(runes)-start <= maxChars {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}

		end := start + maxChars
		cut := lastSentenceEnd(runes, start, end)
		if cut < 0 {
			cut = lastWhitespace(runes, start, end)
		}
		if cut < 0 {
			// One unbroken token longer than the limit
			cut = end
		}

		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = cut
	}

	return chunks
}

// lastSentenceEnd returns the index just past the last sentence terminator
// in runes[start:end], or -1 if there is none.
func lastSentenceEnd(runes []rune, start, end int) int {
	for i := end; i > start; i-- {
		switch runes[i-1] {
		case '.', '!', '?', '\n':
			return i
		}
	}
	return -1
}

// lastWhitespace returns the index of the last whitespace rune in
// runes[start:end], or -1 if there is none.
func lastWhitespace(runes []rune, start, end int) int {
	for i := end; i > start; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return -1
}
