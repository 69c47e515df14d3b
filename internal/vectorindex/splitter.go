package vectorindex

import (
	"strings"
	"unicode/utf8"
)

// Chunking defaults, measured in runes.
const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// chunkSeparators is ordered from coarse to fine. The empty separator is the
// terminal hard cut for text with no usable boundary.
var chunkSeparators = []string{"\n\n", "\n", " ", ""}

// splitText breaks text into chunks of at most size runes, preferring
// paragraph, then line, then word boundaries. Adjacent chunks share up to
// overlap runes of trailing context so a sentence cut at a boundary stays
// retrievable from both sides. Blank input yields no chunks.
func splitText(text string, size, overlap int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	if utf8.RuneCountInString(trimmed) <= size {
		return []string{trimmed}
	}
	return mergePieces(splitPieces(trimmed, size, chunkSeparators), size, overlap)
}

// splitPieces splits text on the first separator, descending to finer
// separators for pieces that still exceed size. Separators stay attached to
// the preceding piece so merging reproduces the original text.
func splitPieces(text string, size int, seps []string) []string {
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}
	sep, rest := seps[0], seps[1:]
	if sep == "" {
		return hardCut(text, size)
	}
	var out []string
	for _, p := range strings.SplitAfter(text, sep) {
		if p == "" {
			continue
		}
		if utf8.RuneCountInString(p) > size {
			out = append(out, splitPieces(p, size, rest)...)
		} else {
			out = append(out, p)
		}
	}
	return out
}

// hardCut slices text into size-rune pieces with no regard for boundaries.
func hardCut(text string, size int) []string {
	var out []string
	runes := []rune(text)
	for len(runes) > size {
		out = append(out, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// mergePieces packs adjacent pieces into chunks no longer than size runes,
// carrying the last overlap runes of each chunk into the next.
func mergePieces(pieces []string, size, overlap int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0
	for _, p := range pieces {
		pl := utf8.RuneCountInString(p)
		if curLen > 0 && curLen+pl > size {
			if c := strings.TrimSpace(cur.String()); c != "" {
				chunks = append(chunks, c)
			}
			tail := tailRunes(cur.String(), overlap)
			cur.Reset()
			curLen = utf8.RuneCountInString(tail)
			if curLen+pl > size {
				// The overlap would push the next chunk past size; drop it.
				curLen = 0
			} else {
				cur.WriteString(tail)
			}
		}
		cur.WriteString(p)
		curLen += pl
	}
	if c := strings.TrimSpace(cur.String()); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
