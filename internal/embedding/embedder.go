package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/embedding/lexical"
	"docqa/internal/embedding/openai"
)

// New builds the embedder selected by cfg.Type.
func New(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "", "openai":
		return openai.NewEmbedder(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKeyEnv:  cfg.OpenAI.APIKeyEnv,
			Model:      cfg.OpenAI.Model,
			Timeout:    cfg.OpenAI.Timeout(),
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
	case "lexical":
		return lexical.NewEmbedder(cfg.Lexical.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedder type: %s", cfg.Type)
	}
}

type logged struct {
	next   domain.Embedder
	logger *slog.Logger
}

// WithLogging wraps emb so every call is logged at debug level with its
// duration, and failures at warn level.
func WithLogging(emb domain.Embedder, logger *slog.Logger) domain.Embedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &logged{next: emb, logger: logger}
}

func (l *logged) Name() string { return l.next.Name() }

func (l *logged) Embed(ctx context.Context, text string) ([]float64, error) {
	start := time.Now()
	vec, err := l.next.Embed(ctx, text)
	if err != nil {
		l.logger.Warn("embedding call failed",
			"embedder", l.next.Name(),
			"chars", len(text),
			"error", err,
		)
		return nil, err
	}
	l.logger.Debug("embedding call finished",
		"embedder", l.next.Name(),
		"chars", len(text),
		"dimension", len(vec),
		"duration", time.Since(start),
	)
	return vec, nil
}
