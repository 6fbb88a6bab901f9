package chunker

import (
	"strings"

	"github.com/Chanu-03/Study-Mate/internal/domain"
)

// WindowChunker splits text into fixed-size rune windows that overlap by
// a fixed number of runes.
type WindowChunker struct {
	size    int
	overlap int
}

func NewWindowChunker(size, overlap int) *WindowChunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &WindowChunker{size: size, overlap: overlap}
}

func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	runes := []rune(document.Content)
	var chunks []domain.Chunk
	step := c.size - c.overlap
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		if text := strings.TrimSpace(string(runes[start:end])); text != "" {
			chunks = append(chunks, newChunk(document, len(chunks), text))
		}
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
