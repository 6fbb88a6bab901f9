package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "hashing", cfg.Embedder.Type)
	require.NotNil(t, cfg.Embedder.Hashing)
	assert.Equal(t, 512, cfg.Embedder.Hashing.Dimension)
	assert.Equal(t, "window", cfg.Chunker.Type)
	assert.Equal(t, 1000, cfg.Chunker.ChunkSize)
	assert.Equal(t, 200, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, "extractive", cfg.Generator.Type)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, 10, cfg.Retrieval.MaxTopK)
	assert.Equal(t, 400, cfg.Retrieval.PreviewLength)
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)
	require.NoError(t, cfg.Validate())
}

func TestParse_OpenAIDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
embedder:
  type: openai
  openai:
    base_url: http://localhost:11434/v1
    model: nomic-embed-text
    allow_empty_key: true
generator:
  type: openai
  openai:
    temperature: 0.2
chunker:
  type: sentence
  sentences_per_chunk: 4
  overlap_sentences: 1
`))
	require.NoError(t, err)

	e := cfg.Embedder.OpenAI
	require.NotNil(t, e)
	assert.Equal(t, "http://localhost:11434/v1", e.BaseURL)
	assert.Equal(t, "nomic-embed-text", e.Model)
	assert.Equal(t, "OPENAI_API_KEY", e.APIKeyEnv)
	assert.True(t, e.AllowEmptyKey)
	assert.Equal(t, 32, e.BatchSize)
	assert.Equal(t, 30, e.TimeoutSecs)

	g := cfg.Generator.OpenAI
	require.NotNil(t, g)
	assert.Equal(t, "gpt-4o-mini", g.Model)
	assert.InDelta(t, 0.2, g.Temperature, 1e-6)
	assert.Equal(t, 60, g.TimeoutSecs)

	assert.Equal(t, "sentence", cfg.Chunker.Type)
	assert.Equal(t, 4, cfg.Chunker.SentencesPerChunk)
}

func TestParse_DefaultTopKFollowsMax(t *testing.T) {
	cfg, err := Parse([]byte("retrieval:\n  max_top_k: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 3, cfg.Retrieval.MaxTopK)

	cfg, err = Parse([]byte("retrieval:\n  max_top_k: 20\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown embedder":  "embedder:\n  type: word2vec\n",
		"unknown chunker":   "chunker:\n  type: paragraph\n",
		"unknown generator": "generator:\n  type: llama\n",
		"top_k above max":   "retrieval:\n  top_k: 12\n  max_top_k: 10\n",
		"negative top_k":    "retrieval:\n  top_k: -1\n",
		"overlap too large": "chunker:\n  type: window\n  chunk_size: 100\n  chunk_overlap: 100\n",
		"bad base url":      "embedder:\n  type: openai\n  openai:\n    base_url: not a url\n",
		"bad log level":     "log:\n  level: LOUD\n",
		"broken yaml":       "embedder: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Retrieval.TopK = 6
	require.NoError(t, Save(path, cfg))

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadDefault_WritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "studymate", "config.yaml"), path)
	assert.Equal(t, "hashing", cfg.Embedder.Type)

	_, err = os.Stat(path)
	require.NoError(t, err)
}
