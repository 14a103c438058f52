package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"docqa/internal/completion/openai"
	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/embedding"
	"docqa/internal/logger"
	"docqa/internal/retrieval"
	"docqa/internal/segmenter"
	"docqa/internal/service"
	"docqa/internal/summarizer"
)

// appContext holds the components shared by the commands.
type appContext struct {
	cfg     *config.AppConfig
	service *service.AnswerService
	logger  *slog.Logger
}

func loadConfig(cmd *cli.Command) (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if path := cmd.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

func newLogger(cfg *config.AppConfig, out io.Writer) *slog.Logger {
	return logger.New(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: out,
	})
}

func newSegmenter(cfg *config.AppConfig, log *slog.Logger) (*segmenter.TokenSegmenter, error) {
	seg, err := segmenter.NewForModel(cfg.Segmenter.EncodingModel,
		segmenter.WithMaxTokens(cfg.Segmenter.MaxTokens),
		segmenter.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("segmenter init failed: %w", err)
	}
	return seg, nil
}

// newAppContext loads the config and assembles the pipeline. Logs go to out.
func newAppContext(cmd *cli.Command, out io.Writer) (*appContext, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg, out)

	seg, err := newSegmenter(cfg, log)
	if err != nil {
		return nil, err
	}

	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("embedder init failed: %w", err)
	}
	emb = embedding.WithLogging(emb, log)

	comp, err := newCompleter(cfg.Completion)
	if err != nil {
		return nil, fmt.Errorf("completion init failed: %w", err)
	}

	selector := retrieval.NewSelector(emb,
		retrieval.WithThreshold(*cfg.Retrieval.Threshold),
		retrieval.WithConcurrency(cfg.Retrieval.Concurrency),
		retrieval.WithLogger(log),
	)
	svc := service.NewAnswerService(seg, selector, comp,
		service.WithSummarizer(summarizer.NewFrequencySummarizer()),
		service.WithMaxTokens(cfg.Segmenter.MaxTokens),
		service.WithSummarySentences(cfg.Summary.MaxSentences),
		service.WithLogger(log),
	)

	log.Debug("pipeline assembled",
		"embedder", emb.Name(),
		"threshold", *cfg.Retrieval.Threshold,
		"maxTokens", cfg.Segmenter.MaxTokens,
	)
	return &appContext{cfg: cfg, service: svc, logger: log}, nil
}

func newCompleter(cfg config.CompletionConfig) (domain.Completer, error) {
	switch cfg.Type {
	case "openai", "":
		return openai.NewCompleter(openai.Config{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
			Model:       cfg.OpenAI.Model,
			Timeout:     cfg.OpenAI.Timeout(),
			MaxRetries:  cfg.OpenAI.MaxRetries,
			Temperature: cfg.OpenAI.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown completion type: %s", cfg.Type)
	}
}
