package vectorstore

import "github.com/Chanu-03/Study-Mate/internal/domain"

// Storage holds embeddings with their metadata and supports similarity search.
type Storage interface {
	Add(embeddings [][]float64, metadatas []domain.Metadata) error
	Search(query []float64, topK int) ([]domain.Hit, error)
	Reset()
	Len() int
}
