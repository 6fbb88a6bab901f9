package memory

import (
	"fmt"
	"math"
	"sort"

	"github.com/Chanu-03/Study-Mate/internal/domain"
)

// Storage is an append-only in-memory vector store using brute-force cosine
// similarity. It is not safe for concurrent use; callers sharing a Storage
// across goroutines must lock around it.
type Storage struct {
	dimension int
	entries   []entry
}

type entry struct {
	vector   []float64
	norm     float64
	metadata domain.Metadata
}

func NewStorage() *Storage { return &Storage{} }

// Add appends each (embedding, metadata) pair in order. The first successful
// Add fixes the store dimension until Reset. Inputs are validated before any
// entry is written, so a failed Add leaves the store unchanged.
func (s *Storage) Add(embeddings [][]float64, metadatas []domain.Metadata) error {
	if len(embeddings) != len(metadatas) {
		return fmt.Errorf("%w: %d != %d", domain.ErrLengthMismatch, len(embeddings), len(metadatas))
	}
	if len(embeddings) == 0 {
		return nil
	}
	dim := s.dimension
	if dim == 0 {
		dim = len(embeddings[0])
	}
	for i, v := range embeddings {
		if len(v) == 0 {
			return fmt.Errorf("%w at position %d", domain.ErrEmptyEmbedding, i)
		}
		if len(v) != dim {
			return fmt.Errorf("%w: position %d has %d, want %d", domain.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	for i, v := range embeddings {
		vec := append([]float64(nil), v...)
		s.entries = append(s.entries, entry{vector: vec, norm: norm(vec), metadata: metadatas[i]})
	}
	s.dimension = dim
	return nil
}

// Search returns the min(topK, Len()) entries most similar to query, by
// descending cosine similarity. Equal scores keep insertion order.
func (s *Storage) Search(query []float64, topK int) ([]domain.Hit, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, topK)
	}
	if len(s.entries) == 0 {
		return []domain.Hit{}, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d, store has %d", domain.ErrDimensionMismatch, len(query), s.dimension)
	}
	qn := norm(query)
	scores := make([]float64, len(s.entries))
	for i := range s.entries {
		scores[i] = cosine(query, qn, s.entries[i].vector, s.entries[i].norm)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	hits := make([]domain.Hit, 0, topK)
	for _, j := range idxs[:topK] {
		hits = append(hits, domain.Hit{Score: scores[j], Metadata: s.entries[j].metadata})
	}
	return hits, nil
}

// Reset discards every entry and the learned dimension.
func (s *Storage) Reset() {
	s.entries = nil
	s.dimension = 0
}

func (s *Storage) Len() int { return len(s.entries) }

// Dimension is 0 while the store is empty.
func (s *Storage) Dimension() int { return s.dimension }

// Cosine returns the cosine similarity of a and b, or 0 when either has
// zero norm. Vectors must have the same length.
func Cosine(a, b []float64) float64 {
	return cosine(a, norm(a), b, norm(b))
}

func cosine(a []float64, na float64, b []float64, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}

// argsortDesc orders indexes by descending value; ties keep index order.
func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
