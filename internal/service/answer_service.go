package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docqa/internal/domain"
	"docqa/internal/retrieval"
)

// Fixed replies returned instead of errors.
const (
	FallbackNoRelevantInfo  = "Sorry, I could not find relevant information to answer your question."
	FallbackNoContext       = "No relevant context was found for the question."
	FallbackCompletionError = "Error generating the answer."
)

// SegmentSelector picks the segment most relevant to a query.
type SegmentSelector interface {
	Select(ctx context.Context, query string, segments []string) retrieval.Selection
}

// Reply is the outcome of one question.
type Reply struct {
	Text      string
	Selection retrieval.Selection
	// Fallback is true when Text is one of the fixed fallback replies.
	Fallback bool
}

// Upload is the result of ingesting a document.
type Upload struct {
	Segments []string
	Summary  string
}

// AnswerService segments documents and answers questions over their segments.
// It keeps no session state; callers hold the segments between requests.
type AnswerService struct {
	segmenter        domain.Segmenter
	selector         SegmentSelector
	completer        domain.Completer
	summarizer       domain.Summarizer
	maxTokens        int
	summarySentences int
	logger           *slog.Logger
}

// Option configures an AnswerService.
type Option func(*AnswerService)

// WithSummarizer enables a document preview summary on Ingest.
func WithSummarizer(s domain.Summarizer) Option {
	return func(a *AnswerService) {
		a.summarizer = s
	}
}

// WithMaxTokens sets the per-segment token budget.
func WithMaxTokens(n int) Option {
	return func(a *AnswerService) {
		a.maxTokens = n
	}
}

// WithSummarySentences sets the length of the preview summary.
func WithSummarySentences(n int) Option {
	return func(a *AnswerService) {
		a.summarySentences = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *AnswerService) {
		a.logger = logger
	}
}

// NewAnswerService creates the service.
func NewAnswerService(segmenter domain.Segmenter, selector SegmentSelector, completer domain.Completer, opts ...Option) *AnswerService {
	a := &AnswerService{
		segmenter:        segmenter,
		selector:         selector,
		completer:        completer,
		maxTokens:        1000,
		summarySentences: 3,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Ingest segments extracted document text. Empty or whitespace-only text
// is rejected with domain.ErrNoExtractableText.
func (a *AnswerService) Ingest(text string) (Upload, error) {
	if strings.TrimSpace(text) == "" {
		return Upload{}, domain.ErrNoExtractableText
	}
	segments, err := a.segmenter.Segment(text, a.maxTokens)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to segment text: %w", err)
	}
	if len(segments) == 0 {
		return Upload{}, domain.ErrNoExtractableText
	}

	var summary string
	if a.summarizer != nil {
		summary, err = a.summarizer.Summarize(text, a.summarySentences)
		if err != nil {
			// The preview is optional.
			a.logger.Warn("summary failed", "error", err)
			summary = ""
		}
	}

	a.logger.Info("document ingested",
		"chars", len(text),
		"segments", len(segments),
		"maxTokens", a.maxTokens,
	)
	return Upload{Segments: segments, Summary: summary}, nil
}

// Answer returns the answer text for query, or one of the fallback replies.
func (a *AnswerService) Answer(ctx context.Context, query string, history []domain.Message, segments []string) string {
	return a.Respond(ctx, query, history, segments).Text
}

// Respond answers query grounded on the most relevant segment and reports
// which segment was used. It never returns an error: every failure maps to
// a fallback reply.
func (a *AnswerService) Respond(ctx context.Context, query string, history []domain.Message, segments []string) Reply {
	start := time.Now()

	if len(segments) == 0 {
		a.logger.Info("question without context")
		return Reply{
			Text:      FallbackNoContext,
			Selection: retrieval.Selection{Index: -1, Reason: retrieval.ReasonNoSegments},
			Fallback:  true,
		}
	}

	sel := a.selector.Select(ctx, query, segments)
	if !sel.Found() {
		a.logger.Info("no relevant segment",
			"reason", sel.Reason.String(),
			"bestScore", sel.Score,
		)
		return Reply{Text: FallbackNoRelevantInfo, Selection: sel, Fallback: true}
	}

	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages,
		domain.Message{Role: domain.RoleSystem, Content: sel.Segment},
		domain.Message{Role: domain.RoleUser, Content: query},
	)

	out, err := a.completer.Complete(ctx, messages)
	if err != nil {
		a.logger.Error("completion failed", "error", err)
		return Reply{Text: FallbackCompletionError, Selection: sel, Fallback: true}
	}

	a.logger.Info("question answered",
		"segmentIndex", sel.Index,
		"score", sel.Score,
		"historyLen", len(history),
		"duration", time.Since(start),
	)
	return Reply{Text: strings.TrimSpace(out), Selection: sel}
}
