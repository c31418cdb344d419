package chunker

import (
	"strings"
	"unicode/utf8"
)

type Chunker interface {
	Chunk(text string, opts ChunkOptions) []TextChunk
}

type ChunkOptions struct {
	ChunkSize    int    // maximum chunk size in characters
	ChunkOverlap int    // characters carried over from the previous chunk
	Strategy     string // "recursive" or "fixed"
}

type TextChunk struct {
	Content string
	Index   int
	Start   int // byte offset into the source text, -1 if not located
}

// DefaultOptions matches the window used for legal documents.
func DefaultOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize:    2050,
		ChunkOverlap: 150,
		Strategy:     "recursive",
	}
}

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

type defaultChunker struct{}

func New() Chunker {
	return &defaultChunker{}
}

func (c *defaultChunker) Chunk(text string, opts ChunkOptions) []TextChunk {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultOptions().ChunkSize
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 0
	}

	var parts []string
	switch opts.Strategy {
	case "fixed":
		parts = splitFixed(text, opts.ChunkSize, opts.ChunkOverlap)
	default:
		parts = splitRecursive(text, defaultSeparators, opts.ChunkSize, opts.ChunkOverlap)
	}

	chunks := make([]TextChunk, 0, len(parts))
	searchFrom := 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		start := -1
		if pos := strings.Index(text[searchFrom:], p); pos >= 0 {
			start = searchFrom + pos
			searchFrom = start + 1
		}
		chunks = append(chunks, TextChunk{
			Content: p,
			Index:   len(chunks),
			Start:   start,
		})
	}
	return chunks
}

func splitFixed(text string, size, overlap int) []string {
	runes := []rune(text)
	step := size - overlap

	var out []string
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// splitRecursive splits on the first separator present in text, recursing
// into pieces that are still too large, then merges neighbouring pieces back
// into windows of at most size characters with overlap carried forward.
func splitRecursive(text string, separators []string, size, overlap int) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var out, small []string
	for _, piece := range strings.Split(text, sep) {
		if piece == "" {
			continue
		}
		if runeLen(piece) < size {
			small = append(small, piece)
			continue
		}
		if len(small) > 0 {
			out = append(out, merge(small, sep, size, overlap)...)
			small = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, splitRecursive(piece, rest, size, overlap)...)
		}
	}
	if len(small) > 0 {
		out = append(out, merge(small, sep, size, overlap)...)
	}
	return out
}

func merge(pieces []string, sep string, size, overlap int) []string {
	sepLen := runeLen(sep)

	var out, window []string
	total := 0
	for _, p := range pieces {
		l := runeLen(p)
		if len(window) > 0 && total+l+sepLen > size {
			out = append(out, strings.Join(window, sep))
			// Drop from the front until only the overlap remains and the
			// next piece fits.
			for len(window) > 0 && (total > overlap || total+l+sepLen > size) {
				total -= runeLen(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		if len(window) > 0 {
			total += sepLen
		}
		window = append(window, p)
		total += l
	}
	if len(window) > 0 {
		out = append(out, strings.Join(window, sep))
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
