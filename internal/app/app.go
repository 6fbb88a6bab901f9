// Package app assembles a study session from the application configuration.
package app

import (
	"fmt"
	"time"

	"github.com/Chanu-03/Study-Mate/internal/chunker"
	"github.com/Chanu-03/Study-Mate/internal/config"
	"github.com/Chanu-03/Study-Mate/internal/domain"
	"github.com/Chanu-03/Study-Mate/internal/embedding"
	"github.com/Chanu-03/Study-Mate/internal/embedding/hashing"
	embopenai "github.com/Chanu-03/Study-Mate/internal/embedding/openai"
	"github.com/Chanu-03/Study-Mate/internal/extractor"
	"github.com/Chanu-03/Study-Mate/internal/generator/extractive"
	genopenai "github.com/Chanu-03/Study-Mate/internal/generator/openai"
	"github.com/Chanu-03/Study-Mate/internal/service"
	"github.com/Chanu-03/Study-Mate/internal/summarizer"
	"github.com/Chanu-03/Study-Mate/internal/vectorstore/memory"
)

// Build creates a session with the collaborators selected by cfg.
func Build(cfg *config.AppConfig) (*service.Session, error) {
	emb, err := NewEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	ch, err := NewChunker(cfg.Chunker)
	if err != nil {
		return nil, err
	}
	gen, err := NewGenerator(cfg.Generator)
	if err != nil {
		return nil, err
	}
	ext := extractor.New(int64(cfg.Extractor.MaxFileMB) << 20)

	return service.NewSession(ext, ch, emb, memory.NewStorage(), gen, summarizer.NewFrequencySummarizer(), service.Options{
		MaxTopK:          cfg.Retrieval.MaxTopK,
		SummarySentences: cfg.Retrieval.SummarySentences,
	}), nil
}

// NewEmbedder returns the embedder named by cfg.Type.
func NewEmbedder(cfg config.EmbedderConfig) (embedding.Embedder, error) {
	switch cfg.Type {
	case "hashing", "":
		dim := 0
		if cfg.Hashing != nil {
			dim = cfg.Hashing.Dimension
		}
		return hashing.NewEmbedder(dim), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		o := cfg.OpenAI
		client, err := embopenai.NewClient(embopenai.Config{
			BaseURL:       o.BaseURL,
			APIKeyEnv:     o.APIKeyEnv,
			Model:         o.Model,
			Timeout:       time.Duration(o.TimeoutSecs) * time.Second,
			BatchSize:     o.BatchSize,
			MaxRetries:    o.MaxRetries,
			Dimensions:    o.Dimensions,
			AllowEmptyKey: o.AllowEmptyKey,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

// NewChunker returns the chunker named by cfg.Type.
func NewChunker(cfg config.ChunkerConfig) (domain.Chunker, error) {
	switch cfg.Type {
	case "window", "":
		return chunker.NewWindowChunker(cfg.ChunkSize, cfg.ChunkOverlap), nil
	case "sentence":
		return chunker.NewSentenceChunker(cfg.SentencesPerChunk, cfg.OverlapSentences), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}

// NewGenerator returns the answer generator named by cfg.Type.
func NewGenerator(cfg config.GeneratorConfig) (domain.Generator, error) {
	switch cfg.Type {
	case "extractive", "":
		return extractive.NewGenerator(cfg.MaxSentences), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai generator config missing")
		}
		o := cfg.OpenAI
		gen, err := genopenai.NewGenerator(genopenai.Config{
			BaseURL:       o.BaseURL,
			APIKeyEnv:     o.APIKeyEnv,
			Model:         o.Model,
			Timeout:       time.Duration(o.TimeoutSecs) * time.Second,
			Temperature:   o.Temperature,
			MaxTokens:     o.MaxTokens,
			MaxRetries:    o.MaxRetries,
			SystemPrompt:  o.SystemPrompt,
			AllowEmptyKey: o.AllowEmptyKey,
		})
		if err != nil {
			return nil, fmt.Errorf("openai generator init failed: %w", err)
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
}
