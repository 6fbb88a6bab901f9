package chunker

import (
	"regexp"
	"strings"

	"github.com/Chanu-03/Study-Mate/internal/domain"
)

// SentenceChunker splits text into sentence-based chunks with overlap.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?s)[^.!?]+(?:[.!?]+|$)`),
	}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	var sentences []string
	for _, s := range c.splitter.FindAllString(document.Content, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return nil, nil
	}
	var chunks []domain.Chunk
	i := 0
	for i < len(sentences) {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, newChunk(document, len(chunks), strings.Join(sentences[i:end], " ")))
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
	}
	return chunks, nil
}

func newChunk(document domain.Document, idx int, text string) domain.Chunk {
	return domain.Chunk{
		DocumentID:   document.ID,
		DocumentName: document.Name,
		Text:         text,
		Index:        idx,
	}
}
