package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kart-io/logger"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/Chanu-03/Study-Mate/internal/llmclient"
)

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
type Client struct {
	client     *goopenai.Client
	model      string
	dimensions int
	batchSize  int
	maxRetries int
	dimension  int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL       string
	APIKeyEnv     string
	Model         string
	Timeout       time.Duration
	BatchSize     int
	MaxRetries    int
	Dimensions    int
	AllowEmptyKey bool
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	c, err := llmclient.New(llmclient.Config{
		BaseURL:       cfg.BaseURL,
		APIKeyEnv:     cfg.APIKeyEnv,
		Timeout:       cfg.Timeout,
		AllowEmptyKey: cfg.AllowEmptyKey,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = string(goopenai.SmallEmbedding3)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		client:     c,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
		maxRetries: cfg.MaxRetries,
		dimension:  cfg.Dimensions,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Dimension returns the dimensionality of the produced vectors. Unless
// configured explicitly it is learned from the first response.
func (c *Client) Dimension() int { return c.dimension }

// EmbedBatch embeds texts in requests of at most BatchSize inputs.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := c.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding inputs %d-%d: %w", start, end-1, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (c *Client) embed(ctx context.Context, texts []string) ([][]float64, error) {
	req := goopenai.EmbeddingRequest{
		Input:      texts,
		Model:      goopenai.EmbeddingModel(c.model),
		Dimensions: c.dimensions,
	}
	var resp goopenai.EmbeddingResponse
	err := llmclient.Retry(ctx, "embeddings", c.maxRetries, func() error {
		var err error
		resp, err = c.client.CreateEmbeddings(ctx, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	data := append([]goopenai.Embedding(nil), resp.Data...)
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	vecs := make([][]float64, len(data))
	for i, d := range data {
		if d.Index != i {
			return nil, fmt.Errorf("openai embeddings returned indexes that are not 0..%d", len(texts)-1)
		}
		if len(d.Embedding) == 0 {
			return nil, errors.New("empty embedding")
		}
		v := make([]float64, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float64(x)
		}
		vecs[i] = v
	}
	if c.dimension == 0 {
		c.dimension = len(vecs[0])
		logger.Debugw("Learned embedding dimension", "model", c.model, "dimension", c.dimension)
	}
	return vecs, nil
}
