// Package llmclient builds clients for OpenAI-compatible APIs (OpenAI,
// Ollama, vLLM, ...) and retries their transient failures.
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/kart-io/logger"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultAPIKeyEnv  = "OPENAI_API_KEY"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 5
)

// Config configures an OpenAI-compatible client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
	// AllowEmptyKey permits servers that need no key, such as a local Ollama.
	AllowEmptyKey bool
}

// New creates a client, reading the API key from the configured environment variable.
func New(cfg Config) (*openai.Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = DefaultAPIKeyEnv
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && !cfg.AllowEmptyKey {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	t := cfg.Timeout
	if t == 0 {
		t = DefaultTimeout
	}
	oc := openai.DefaultConfig(key)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{Timeout: t}
	return openai.NewClientWithConfig(oc), nil
}

// Retry calls fn until it succeeds, fails with a non-retryable error, the
// context ends, or maxRetries retries have been spent.
func Retry(ctx context.Context, op string, maxRetries int, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= maxRetries || !Retryable(err) {
			return err
		}
		delay := retryDelay(attempt)
		logger.Warnw("Retrying OpenAI-compatible request", "op", op, "attempt", attempt+1, "delay", delay.String(), "error", err.Error())
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-time.After(delay):
		}
	}
}

// Retryable reports whether err is a rate limit, a server error or a
// transport failure.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// retryDelay grows exponentially from 200ms, capped at 5s.
func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 10 {
		attempt = 10
	}
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
