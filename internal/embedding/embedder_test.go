package embedding

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/domain"
)

func TestNewSelectsImplementation(t *testing.T) {
	emb, err := New(config.EmbedderConfig{Type: "lexical", Lexical: config.LexicalConfig{Dimension: 16}})
	require.NoError(t, err)
	assert.Equal(t, "lexical", emb.Name())

	t.Setenv("DOCQA_EMBED_KEY", "k")
	emb, err = New(config.EmbedderConfig{Type: "openai", OpenAI: config.OpenAIConfig{APIKeyEnv: "DOCQA_EMBED_KEY"}})
	require.NoError(t, err)
	assert.Equal(t, "openai", emb.Name())

	_, err = New(config.EmbedderConfig{Type: "word2vec"})
	assert.Error(t, err)
}

type failingEmbedder struct{}

func (failingEmbedder) Name() string { return "failing" }
func (failingEmbedder) Embed(context.Context, string) ([]float64, error) {
	return nil, errors.Join(domain.ErrEmbeddingFailed, errors.New("down"))
}

func TestWithLoggingPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	emb, err := New(config.EmbedderConfig{Type: "lexical", Lexical: config.LexicalConfig{Dimension: 8}})
	require.NoError(t, err)
	wrapped := WithLogging(emb, logger)

	vec, err := wrapped.Embed(context.Background(), "cats")
	require.NoError(t, err)
	assert.Len(t, vec, 8)
	assert.Equal(t, "lexical", wrapped.Name())
	assert.Contains(t, buf.String(), "embedding call finished")

	_, err = WithLogging(failingEmbedder{}, logger).Embed(context.Background(), "cats")
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
	assert.Contains(t, buf.String(), "embedding call failed")
}
