// Package extractive answers questions offline by quoting the retrieved
// sentences that best match the question.
package extractive

import (
	"context"
	"strings"

	"github.com/Chanu-03/Study-Mate/internal/domain"
	"github.com/Chanu-03/Study-Mate/internal/generator"
	"github.com/Chanu-03/Study-Mate/internal/summarizer"
	"github.com/Chanu-03/Study-Mate/internal/textutil"
)

type Generator struct {
	ranker       *summarizer.FrequencySummarizer
	maxSentences int
}

func NewGenerator(maxSentences int) *Generator {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &Generator{ranker: summarizer.NewFrequencySummarizer(), maxSentences: maxSentences}
}

func (g *Generator) Name() string { return "extractive" }

// Answer joins the best sentences of the contexts and names the documents
// they were taken from.
func (g *Generator) Answer(ctx context.Context, question string, contexts []domain.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(contexts) == 0 {
		return generator.NoContextAnswer, nil
	}
	var sentences, sources []string
	sourceOf := make(map[string]string)
	seen := make(map[string]bool)
	for _, c := range contexts {
		for _, s := range textutil.Sentences(c.Text) {
			if _, dup := sourceOf[s]; dup {
				continue
			}
			sourceOf[s] = c.Source
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return generator.NoContextAnswer, nil
	}
	best := g.ranker.Top(sentences, question, g.maxSentences)
	for _, s := range best {
		if src := sourceOf[s]; !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return strings.Join(best, " ") + "\n\n(from " + strings.Join(sources, ", ") + ")", nil
}
