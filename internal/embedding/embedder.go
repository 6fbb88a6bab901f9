package embedding

import (
	"context"
	"fmt"

	"github.com/Chanu-03/Study-Mate/internal/domain"
)

// Embedder converts texts into numeric vectors of a fixed dimension.
type Embedder = domain.Embedder

// Embed embeds a single text, typically a question, as a batch of one.
func Embed(ctx context.Context, e Embedder, text string) ([]float64, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder %s returned %d vectors for 1 input", e.Name(), len(vecs))
	}
	return vecs[0], nil
}
