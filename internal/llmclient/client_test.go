package llmclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}))
	assert.True(t, Retryable(&openai.APIError{HTTPStatusCode: http.StatusBadGateway}))
	assert.False(t, Retryable(&openai.APIError{HTTPStatusCode: http.StatusUnauthorized}))
	assert.False(t, Retryable(&openai.RequestError{HTTPStatusCode: http.StatusBadRequest}))
	assert.True(t, Retryable(&url.Error{Op: "Post", URL: "http://x", Err: errors.New("connection reset")}))
	assert.True(t, Retryable(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}))
	assert.True(t, Retryable(io.ErrUnexpectedEOF))
	assert.False(t, Retryable(errors.New("invalid character '<' looking for beginning of value")))
	assert.False(t, Retryable(context.Canceled))
	assert.False(t, Retryable(&url.Error{Op: "Post", URL: "http://x", Err: context.DeadlineExceeded}))
}

func TestRetry_DoesNotRetryDecodeErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "test", 5, func() error {
		calls++
		return errors.New("unexpected end of JSON input")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "test", 5, func() error {
		calls++
		return &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, "test", 5, func() error {
		calls++
		cancel()
		return &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset")}
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(0))
	assert.Equal(t, 400*time.Millisecond, retryDelay(1))
	assert.Equal(t, 5*time.Second, retryDelay(8))
	assert.Equal(t, 5*time.Second, retryDelay(50))
}

func TestNew(t *testing.T) {
	t.Setenv("STUDYMATE_LLM_KEY", "")
	_, err := New(Config{APIKeyEnv: "STUDYMATE_LLM_KEY"})
	require.Error(t, err)

	t.Setenv("STUDYMATE_LLM_KEY", "k")
	c, err := New(Config{APIKeyEnv: "STUDYMATE_LLM_KEY"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
