package domain

import (
	"context"
	"time"
)

// File is an uploaded file: its original name and raw bytes.
type File struct {
	Name string
	Data []byte
}

// Document is the extracted text of one uploaded file.
type Document struct {
	ID      string
	Name    string
	Type    string
	Content string
}

// Chunk is a contiguous part of a document used for indexing.
type Chunk struct {
	DocumentID   string
	DocumentName string
	Text         string
	Index        int
}

// Metadata is attached to every stored embedding.
type Metadata struct {
	Document   string
	ChunkIndex int
	Text       string
}

// Hit is a stored chunk matching a query, with its cosine similarity.
type Hit struct {
	Score    float64
	Metadata Metadata
}

// Context is a retrieved passage handed to the answer generator.
type Context struct {
	Text   string
	Source string
}

// DocumentRecord summarizes a processed document for display.
type DocumentRecord struct {
	ID         string
	Name       string
	Type       string
	Length     int
	Chunks     int
	UploadedAt time.Time
}

// Extractor converts an uploaded file into plain text.
// It returns the text and the detected file type.
type Extractor interface {
	Extract(ctx context.Context, file File) (text string, fileType string, err error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Embedder converts texts into numeric vectors of a fixed dimension.
// The returned slice is positionally aligned with texts.
type Embedder interface {
	Name() string
	Dimension() int
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Generator produces an answer to a question from retrieved contexts.
type Generator interface {
	Name() string
	Answer(ctx context.Context, question string, contexts []Context) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
