package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	Chunk(text string) []string
}

// textChunker packs whole resume lines into chunks of at most maxRunes runes,
// repeating the last overlapLines lines of a chunk at the start of the next.
type textChunker struct {
	maxRunes     int
	overlapLines int
}

func NewTextChunker(maxRunes, overlapLines int) TextChunker {
	if maxRunes <= 0 {
		maxRunes = 1000
	}
	if overlapLines < 0 {
		overlapLines = 0
	}
	return &textChunker{maxRunes: maxRunes, overlapLines: overlapLines}
}

func (tc *textChunker) Chunk(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, splitRunes(line, tc.maxRunes)...)
	}

	var (
		chunks  []string
		current []string
		size    int
	)
	flush := func() {
		chunks = append(chunks, strings.Join(current, "\n"))
		carry := tail(current, tc.overlapLines)
		if len(carry) == len(current) {
			carry = nil
		}
		current = append([]string(nil), carry...)
		size = joinedLen(current)
	}

	for _, line := range lines {
		n := utf8.RuneCountInString(line)
		if len(current) > 0 && size+1+n > tc.maxRunes {
			flush()
			if len(current) > 0 && size+1+n > tc.maxRunes {
				current, size = nil, 0
			}
		}
		if len(current) > 0 {
			size++
		}
		size += n
		current = append(current, line)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}

func splitRunes(line string, max int) []string {
	runes := []rune(line)
	if len(runes) <= max {
		return []string{line}
	}
	var parts []string
	for len(runes) > max {
		parts = append(parts, string(runes[:max]))
		runes = runes[max:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

func tail(lines []string, n int) []string {
	if n <= 0 || len(lines) == 0 {
		return nil
	}
	if n > len(lines) {
		n = len(lines)
	}
	return lines[len(lines)-n:]
}

func joinedLen(lines []string) int {
	if len(lines) == 0 {
		return 0
	}
	size := len(lines) - 1
	for _, l := range lines {
		size += utf8.RuneCountInString(l)
	}
	return size
}
