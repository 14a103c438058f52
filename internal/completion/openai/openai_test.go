package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestCompleter(t *testing.T, handler http.HandlerFunc) *Completer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewCompleter(Config{BaseURL: srv.URL, APIKey: "test-key", Model: "test-chat"})
	require.NoError(t, err)
	return c
}

func TestCompleteSendsMessagesInOrder(t *testing.T) {
	var got chatRequest
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"test-chat","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  It is B.  "}}]}`))
	})

	out, err := c.Complete(context.Background(), []domain.Message{
		{Role: domain.RoleAssistant, Content: "earlier"},
		{Role: domain.RoleSystem, Content: "B"},
		{Role: domain.RoleUser, Content: "what?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "  It is B.  ", out)

	assert.Equal(t, "test-chat", got.Model)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[0].Role)
	assert.Equal(t, "system", got.Messages[1].Role)
	assert.Equal(t, "B", got.Messages[1].Content)
	assert.Equal(t, "user", got.Messages[2].Role)
	assert.Equal(t, "what?", got.Messages[2].Content)
}

func TestCompleteWrapsServiceErrors(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	})

	_, err := c.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, domain.ErrCompletionFailed)
}

func TestCompleteWithoutChoices(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"test-chat","choices":[]}`))
	})

	_, err := c.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, domain.ErrCompletionFailed)
}

func TestNewCompleterRequiresKey(t *testing.T) {
	t.Setenv("DOCQA_TEST_MISSING_KEY", "")
	_, err := NewCompleter(Config{APIKeyEnv: "DOCQA_TEST_MISSING_KEY"})
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}
