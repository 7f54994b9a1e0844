// Package chunker splits document bodies into fixed-size overlapping
// text segments for embedding.
package chunker

import (
	"fmt"
	"strings"
)

// Split cuts text into sliding windows of up to size runes, each window
// starting overlap runes before the previous one ends. Leading and
// trailing whitespace is trimmed first; empty input yields no chunks.
// The final chunk may be shorter than size.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}, nil
	}

	step := size - overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out, nil
}
