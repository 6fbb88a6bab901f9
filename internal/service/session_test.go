package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chanu-03/Study-Mate/internal/chunker"
	"github.com/Chanu-03/Study-Mate/internal/domain"
	"github.com/Chanu-03/Study-Mate/internal/embedding/hashing"
	"github.com/Chanu-03/Study-Mate/internal/extractor"
	"github.com/Chanu-03/Study-Mate/internal/generator"
	"github.com/Chanu-03/Study-Mate/internal/generator/extractive"
	"github.com/Chanu-03/Study-Mate/internal/summarizer"
	"github.com/Chanu-03/Study-Mate/internal/vectorstore/memory"
)

const (
	biology = "Mitochondria produce energy for the cell. The nucleus stores genetic material."
	history = "The Roman empire fell in 476. Julius Caesar crossed the Rubicon."
)

var errBoom = errors.New("boom")

// flakyEmbedder fails on any text containing "boom".
type flakyEmbedder struct {
	*hashing.Embedder
}

func (e flakyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	for _, t := range texts {
		if strings.Contains(t, "boom") {
			return nil, errBoom
		}
	}
	return e.Embedder.EmbedBatch(ctx, texts)
}

type brokenStore struct {
	*memory.Storage
	addErr, searchErr error
}

func (s *brokenStore) Add(embeddings [][]float64, metadatas []domain.Metadata) error {
	if s.addErr != nil {
		return s.addErr
	}
	return s.Storage.Add(embeddings, metadatas)
}

func (s *brokenStore) Search(query []float64, topK int) ([]domain.Hit, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.Storage.Search(query, topK)
}

type failingGenerator struct{}

func (failingGenerator) Name() string { return "failing" }

func (failingGenerator) Answer(context.Context, string, []domain.Context) (string, error) {
	return "", errBoom
}

type fixture struct {
	session *Session
	store   *brokenStore
}

func newFixture(t *testing.T, gen domain.Generator, opts Options) fixture {
	t.Helper()
	if gen == nil {
		gen = extractive.NewGenerator(2)
	}
	store := &brokenStore{Storage: memory.NewStorage()}
	s := NewSession(
		extractor.New(0),
		chunker.NewSentenceChunker(2, 0),
		flakyEmbedder{hashing.NewEmbedder(64)},
		store,
		gen,
		summarizer.NewFrequencySummarizer(),
		opts,
	)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return fixture{session: s, store: store}
}

func txt(name, content string) domain.File {
	return domain.File{Name: name, Data: []byte(content)}
}

func TestIngest_ContinuesPastFailingFiles(t *testing.T) {
	f := newFixture(t, nil, Options{})
	report := f.session.Ingest(context.Background(), []domain.File{
		txt("biology.txt", biology),
		{Name: "virus.exe", Data: []byte("MZ")},
		txt("blank.txt", "   \n "),
		txt("history.txt", history),
	})

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Processed)
	require.Len(t, report.Results, 4)

	assert.True(t, report.Results[0].OK())
	assert.ErrorIs(t, report.Results[1].Err, domain.ErrUnsupportedType)
	stage, ok := domain.StageOf(report.Results[1].Err)
	require.True(t, ok)
	assert.Equal(t, domain.StageExtract, stage)
	assert.True(t, report.Results[2].Warning())
	assert.True(t, report.Results[3].OK())
	assert.NotEmpty(t, report.Summary)

	docs := f.session.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "biology.txt", docs[0].Name)
	assert.Equal(t, "txt", docs[0].Type)
	assert.Equal(t, len([]rune(biology)), docs[0].Length)
	assert.Equal(t, 1, docs[0].Chunks)
	assert.NotEmpty(t, docs[0].ID)
	assert.NotEqual(t, docs[0].ID, docs[1].ID)
	assert.Equal(t, 2024, docs[0].UploadedAt.Year())
	assert.Equal(t, 2, f.session.Size())
}

func TestIngest_EmbedFailureLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t, nil, Options{})
	report := f.session.Ingest(context.Background(), []domain.File{txt("bad.txt", "This will boom.")})

	assert.Equal(t, 0, report.Processed)
	assert.ErrorIs(t, report.Results[0].Err, errBoom)
	stage, _ := domain.StageOf(report.Results[0].Err)
	assert.Equal(t, domain.StageEmbed, stage)
	assert.Equal(t, 0, f.session.Size())
	assert.Empty(t, f.session.Documents())
	assert.Empty(t, report.Summary)
}

func TestIngest_StoreFailure(t *testing.T) {
	f := newFixture(t, nil, Options{})
	f.store.addErr = domain.ErrDimensionMismatch

	report := f.session.Ingest(context.Background(), []domain.File{txt("biology.txt", biology)})
	var se *domain.StageError
	require.ErrorAs(t, report.Results[0].Err, &se)
	assert.Equal(t, domain.StageStore, se.Stage)
	assert.Equal(t, "biology.txt", se.Source)
	assert.Empty(t, f.session.Documents())
}

func TestIngestPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(biology), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte(history), 0o644))

	f := newFixture(t, nil, Options{})
	report := f.session.IngestPaths(context.Background(), []string{
		filepath.Join(dir, "*.txt"),
		filepath.Join(dir, "missing.pdf"),
	})

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, "a.txt", report.Results[0].Name)
	assert.Equal(t, "missing.pdf", report.Results[2].Name)
	assert.ErrorIs(t, report.Results[2].Err, os.ErrNotExist)
	stage, _ := domain.StageOf(report.Results[2].Err)
	assert.Equal(t, domain.StageExtract, stage)
}

func TestAsk_AnswersFromBestDocument(t *testing.T) {
	f := newFixture(t, nil, Options{})
	f.session.Ingest(context.Background(), []domain.File{
		txt("history.txt", history),
		txt("biology.txt", biology),
	})

	ans, err := f.session.Ask(context.Background(), "What do mitochondria produce?", 4)
	require.NoError(t, err)
	assert.False(t, ans.NotFound)
	assert.NoError(t, ans.Err)
	require.Len(t, ans.Hits, 2)
	assert.Equal(t, "biology.txt", ans.Hits[0].Metadata.Document)
	assert.GreaterOrEqual(t, ans.Hits[0].Score, ans.Hits[1].Score)
	assert.Equal(t, domain.Context{Text: biology, Source: "biology.txt"}, ans.Contexts[0])
	assert.Contains(t, ans.Text, "Mitochondria produce energy")
	assert.Contains(t, ans.Text, "biology.txt")
}

func TestAsk_EmptyStore(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ans, err := f.session.Ask(context.Background(), "anything?", 3)
	require.NoError(t, err)
	assert.True(t, ans.NotFound)
	assert.Equal(t, generator.NoContextAnswer, ans.Text)
	assert.Empty(t, ans.Hits)
}

func TestAsk_Validation(t *testing.T) {
	f := newFixture(t, nil, Options{})
	_, err := f.session.Ask(context.Background(), "  \t", 3)
	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)

	_, err = f.session.Ask(context.Background(), "why?", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidTopK)
}

func TestAsk_ClampsTopK(t *testing.T) {
	f := newFixture(t, nil, Options{MaxTopK: 1})
	f.session.Ingest(context.Background(), []domain.File{
		txt("history.txt", history),
		txt("biology.txt", biology),
	})
	ans, err := f.session.Ask(context.Background(), "Who crossed the Rubicon?", 5)
	require.NoError(t, err)
	require.Len(t, ans.Hits, 1)
	assert.Equal(t, "history.txt", ans.Hits[0].Metadata.Document)
}

func TestAsk_EmbedAndSearchFailures(t *testing.T) {
	f := newFixture(t, nil, Options{})
	f.session.Ingest(context.Background(), []domain.File{txt("biology.txt", biology)})

	_, err := f.session.Ask(context.Background(), "boom?", 2)
	assert.ErrorIs(t, err, errBoom)
	stage, _ := domain.StageOf(err)
	assert.Equal(t, domain.StageEmbed, stage)

	f.store.searchErr = domain.ErrDimensionMismatch
	_, err = f.session.Ask(context.Background(), "energy?", 2)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	stage, _ = domain.StageOf(err)
	assert.Equal(t, domain.StageSearch, stage)
}

func TestAsk_GenerationFailure(t *testing.T) {
	f := newFixture(t, failingGenerator{}, Options{})
	f.session.Ingest(context.Background(), []domain.File{txt("biology.txt", biology)})

	ans, err := f.session.Ask(context.Background(), "What stores genetic material?", 2)
	require.NoError(t, err)
	assert.Equal(t, generator.FailedAnswer, ans.Text)
	assert.ErrorIs(t, ans.Err, errBoom)
	stage, _ := domain.StageOf(ans.Err)
	assert.Equal(t, domain.StageGenerate, stage)
	assert.Len(t, ans.Hits, 1)
}

func TestReset(t *testing.T) {
	f := newFixture(t, nil, Options{})
	f.session.Ingest(context.Background(), []domain.File{txt("biology.txt", biology)})
	require.Equal(t, 1, f.session.Size())

	f.session.Reset()
	assert.Equal(t, 0, f.session.Size())
	assert.Empty(t, f.session.Documents())
	assert.Equal(t, 0, f.store.Dimension())

	ans, err := f.session.Ask(context.Background(), "energy?", 2)
	require.NoError(t, err)
	assert.True(t, ans.NotFound)
}

func TestDocuments_ReturnsCopy(t *testing.T) {
	f := newFixture(t, nil, Options{})
	f.session.Ingest(context.Background(), []domain.File{txt("biology.txt", biology)})

	docs := f.session.Documents()
	docs[0].Name = "changed"
	assert.Equal(t, "biology.txt", f.session.Documents()[0].Name)
}
