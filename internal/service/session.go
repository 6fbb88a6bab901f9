// Package service wires extraction, chunking, embedding, storage and answer
// generation into one study session.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kart-io/logger"

	"github.com/Chanu-03/Study-Mate/internal/domain"
	"github.com/Chanu-03/Study-Mate/internal/embedding"
	"github.com/Chanu-03/Study-Mate/internal/generator"
	"github.com/Chanu-03/Study-Mate/internal/vectorstore"
)

const (
	DefaultMaxTopK          = 10
	DefaultSummarySentences = 3
)

// Options tunes a Session.
type Options struct {
	// MaxTopK caps the number of passages retrieved per question.
	MaxTopK int
	// SummarySentences bounds the summary returned by Ingest.
	SummarySentences int
}

// FileResult is the outcome of one uploaded file.
type FileResult struct {
	Name   string
	Record *domain.DocumentRecord
	Err    error
}

// OK reports whether the file was stored.
func (r FileResult) OK() bool { return r.Err == nil }

// Warning reports whether the file was skipped because it held no text.
func (r FileResult) Warning() bool { return errors.Is(r.Err, domain.ErrNoText) }

// BatchReport is the outcome of one upload batch.
type BatchReport struct {
	Results   []FileResult
	Processed int
	Total     int
	// Summary is a short extract of the text ingested by this batch.
	Summary string
}

// Answer is the outcome of one question.
type Answer struct {
	Question string
	Text     string
	Hits     []domain.Hit
	Contexts []domain.Context
	// NotFound is set when the store held nothing to search.
	NotFound bool
	// Err carries a generation failure; Text then holds generator.FailedAnswer.
	Err error
}

// Session owns one vector store, the processed document list and the
// collaborators used to fill and query it.
type Session struct {
	mu sync.Mutex

	extractor  domain.Extractor
	chunker    domain.Chunker
	embedder   domain.Embedder
	store      vectorstore.Storage
	generator  domain.Generator
	summarizer domain.Summarizer

	maxTopK          int
	summarySentences int

	documents []domain.DocumentRecord
	now       func() time.Time
}

// NewSession creates a session over the given collaborators.
func NewSession(
	extractor domain.Extractor,
	chunker domain.Chunker,
	embedder domain.Embedder,
	store vectorstore.Storage,
	gen domain.Generator,
	summarizer domain.Summarizer,
	opts Options,
) *Session {
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = DefaultMaxTopK
	}
	if opts.SummarySentences <= 0 {
		opts.SummarySentences = DefaultSummarySentences
	}
	return &Session{
		extractor:        extractor,
		chunker:          chunker,
		embedder:         embedder,
		store:            store,
		generator:        gen,
		summarizer:       summarizer,
		maxTopK:          opts.MaxTopK,
		summarySentences: opts.SummarySentences,
		now:              time.Now,
	}
}

// MaxTopK returns the largest top_k Ask honors.
func (s *Session) MaxTopK() int { return s.maxTopK }

type upload struct {
	file domain.File
	err  error
}

// Ingest processes files in order. A failing file is recorded in its
// FileResult and the batch continues with the next one.
func (s *Session) Ingest(ctx context.Context, files []domain.File) BatchReport {
	uploads := make([]upload, len(files))
	for i, f := range files {
		uploads[i] = upload{file: f}
	}
	return s.ingest(ctx, uploads)
}

// IngestPaths expands glob patterns, reads the matching files from disk and
// ingests them. Unreadable files are reported as extraction failures.
func (s *Session) IngestPaths(ctx context.Context, paths []string) BatchReport {
	var uploads []upload
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			data, err := os.ReadFile(m)
			uploads = append(uploads, upload{
				file: domain.File{Name: filepath.Base(m), Data: data},
				err:  err,
			})
		}
	}
	return s.ingest(ctx, uploads)
}

func (s *Session) ingest(ctx context.Context, uploads []upload) BatchReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := BatchReport{Total: len(uploads), Results: make([]FileResult, 0, len(uploads))}
	var texts []string
	for _, u := range uploads {
		res := FileResult{Name: u.file.Name}
		if u.err != nil {
			res.Err = domain.NewStageError(domain.StageExtract, u.file.Name, u.err)
		} else {
			var text string
			res.Record, text, res.Err = s.ingestFile(ctx, u.file)
			if res.Err == nil {
				texts = append(texts, text)
				report.Processed++
			}
		}
		switch {
		case res.Err == nil:
			logger.Infow("document ingested", "name", res.Name, "type", res.Record.Type, "chunks", res.Record.Chunks)
		case res.Warning():
			logger.Warnw("document skipped", "name", res.Name, "error", res.Err)
		default:
			logger.Errorw("document failed", "name", res.Name, "error", res.Err)
		}
		report.Results = append(report.Results, res)
	}

	if len(texts) > 0 && s.summarizer != nil {
		summary, err := s.summarizer.Summarize(strings.Join(texts, "\n"), s.summarySentences)
		if err != nil {
			logger.Warnw("summary failed", "error", err)
		}
		report.Summary = summary
	}
	logger.Infow("batch processed", "processed", report.Processed, "total", report.Total, "entries", s.store.Len())
	return report
}

func (s *Session) ingestFile(ctx context.Context, file domain.File) (*domain.DocumentRecord, string, error) {
	name := file.Name
	text, kind, err := s.extractor.Extract(ctx, file)
	if err != nil {
		return nil, "", domain.NewStageError(domain.StageExtract, name, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, "", domain.NewStageError(domain.StageExtract, name, domain.ErrNoText)
	}

	doc := domain.Document{ID: uuid.NewString(), Name: name, Type: kind, Content: text}
	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return nil, "", domain.NewStageError(domain.StageChunk, name, err)
	}
	if len(chunks) == 0 {
		return nil, "", domain.NewStageError(domain.StageChunk, name, domain.ErrNoText)
	}

	chunkTexts := make([]string, len(chunks))
	metadatas := make([]domain.Metadata, len(chunks))
	for i, ch := range chunks {
		chunkTexts[i] = ch.Text
		metadatas[i] = domain.Metadata{Document: name, ChunkIndex: ch.Index, Text: ch.Text}
	}
	vectors, err := s.embedder.EmbedBatch(ctx, chunkTexts)
	if err != nil {
		return nil, "", domain.NewStageError(domain.StageEmbed, name, err)
	}
	if len(vectors) != len(chunks) {
		err := fmt.Errorf("embedder %s returned %d vectors for %d chunks", s.embedder.Name(), len(vectors), len(chunks))
		return nil, "", domain.NewStageError(domain.StageEmbed, name, err)
	}
	if err := s.store.Add(vectors, metadatas); err != nil {
		return nil, "", domain.NewStageError(domain.StageStore, name, err)
	}

	record := domain.DocumentRecord{
		ID:         doc.ID,
		Name:       name,
		Type:       kind,
		Length:     utf8.RuneCountInString(text),
		Chunks:     len(chunks),
		UploadedAt: s.now(),
	}
	s.documents = append(s.documents, record)
	return &record, text, nil
}

// Ask retrieves up to topK passages for question and generates an answer
// from them. A generation failure is reported on Answer.Err, not as an error.
func (s *Session) Ask(ctx context.Context, question string, topK int) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if topK < 1 {
		return nil, domain.ErrInvalidTopK
	}
	if topK > s.maxTopK {
		topK = s.maxTopK
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ans := &Answer{Question: question}
	vec, err := embedding.Embed(ctx, s.embedder, question)
	if err != nil {
		return nil, domain.NewStageError(domain.StageEmbed, "", err)
	}
	hits, err := s.store.Search(vec, topK)
	if err != nil {
		return nil, domain.NewStageError(domain.StageSearch, "", err)
	}
	if len(hits) == 0 {
		ans.NotFound = true
		ans.Text = generator.NoContextAnswer
		logger.Infow("question without passages", "question", question)
		return ans, nil
	}

	ans.Hits = hits
	ans.Contexts = make([]domain.Context, len(hits))
	for i, h := range hits {
		ans.Contexts[i] = domain.Context{Text: h.Metadata.Text, Source: h.Metadata.Document}
	}
	text, err := s.generator.Answer(ctx, question, ans.Contexts)
	if err != nil {
		ans.Text = generator.FailedAnswer
		ans.Err = domain.NewStageError(domain.StageGenerate, s.generator.Name(), err)
		logger.Errorw("answer generation failed", "generator", s.generator.Name(), "error", err)
		return ans, nil
	}
	ans.Text = text
	logger.Infow("question answered", "top_k", topK, "hits", len(hits), "best_score", hits[0].Score)
	return ans, nil
}

// Reset drops every stored passage and processed document.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Reset()
	s.documents = nil
	logger.Infow("session reset")
}

// Documents returns a copy of the processed document records.
func (s *Session) Documents() []domain.DocumentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.DocumentRecord(nil), s.documents...)
}

// Size returns the number of stored passages.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}
