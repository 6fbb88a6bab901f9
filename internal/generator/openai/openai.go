package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/Chanu-03/Study-Mate/internal/domain"
	"github.com/Chanu-03/Study-Mate/internal/generator"
	"github.com/Chanu-03/Study-Mate/internal/llmclient"
)

// DefaultSystemPrompt is used when Config.SystemPrompt is empty. {{context}}
// is replaced with the numbered passages.
const DefaultSystemPrompt = `You are StudyMate, a study assistant. Answer the question using only the passages below.
If the passages do not contain the answer, say so. Cite passages as [n].

Passages:
{{context}}`

// Config configures the chat completion generator.
type Config struct {
	BaseURL       string
	APIKeyEnv     string
	Model         string
	Timeout       time.Duration
	Temperature   float32
	MaxTokens     int
	MaxRetries    int
	SystemPrompt  string
	AllowEmptyKey bool
}

// Generator answers questions through an OpenAI-compatible chat completion API.
type Generator struct {
	client *goopenai.Client
	cfg    Config
}

func NewGenerator(cfg Config) (*Generator, error) {
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
		cfg.Model = goopenai.GPT4oMini
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Generator{client: c, cfg: cfg}, nil
}

func (g *Generator) Name() string { return "openai" }

func (g *Generator) Answer(ctx context.Context, question string, contexts []domain.Context) (string, error) {
	if len(contexts) == 0 {
		return generator.NoContextAnswer, nil
	}
	req := goopenai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: BuildPrompt(g.cfg.SystemPrompt, contexts)},
			{Role: goopenai.ChatMessageRoleUser, Content: question},
		},
	}
	var resp goopenai.ChatCompletionResponse
	err := llmclient.Retry(ctx, "chat", g.cfg.MaxRetries, func() error {
		var err error
		resp, err = g.client.CreateChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no answer returned")
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("empty answer returned")
	}
	logger.Infow("LLM answer generated", "model", g.cfg.Model, "length", len(answer), "total_tokens", resp.Usage.TotalTokens)
	return answer, nil
}

// BuildPrompt numbers the contexts as "[i] From <source>:" blocks and
// substitutes them for {{context}} in template.
func BuildPrompt(template string, contexts []domain.Context) string {
	var b strings.Builder
	for i, c := range contexts {
		fmt.Fprintf(&b, "[%d] From %s:\n%s\n\n", i+1, c.Source, c.Text)
	}
	block := strings.TrimRight(b.String(), "\n")
	if !strings.Contains(template, "{{context}}") {
		return template + "\n\n" + block
	}
	return strings.ReplaceAll(template, "{{context}}", block)
}
