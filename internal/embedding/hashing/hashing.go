package hashing

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/Chanu-03/Study-Mate/internal/textutil"
)

// DefaultDimension is used when NewEmbedder is given a non-positive dimension.
const DefaultDimension = 512

// Embedder is a local bag-of-words embedder. Terms are hashed into a fixed
// number of buckets, weighted by sublinear term frequency and L2 normalized,
// so no corpus preparation is needed and the dimension never changes.
type Embedder struct {
	dimension int
}

// NewEmbedder creates a hashing embedder with the given dimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

func (e *Embedder) Name() string { return "hashing" }

func (e *Embedder) Dimension() int { return e.dimension }

// EmbedBatch embeds each text independently. Texts without any terms map to
// the zero vector.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *Embedder) embed(text string) []float64 {
	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	for _, tok := range textutil.Terms(text) {
		tf[int(xxhash.Sum64String(tok)%uint64(e.dimension))]++
	}
	if len(tf) == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = 1 + math.Log(float64(count))
	}
	// L2 normalize
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
