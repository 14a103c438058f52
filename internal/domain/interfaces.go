package domain

import "context"

// Role tags a conversation message for the completion service.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Embedder converts free text into a numeric vector representation.
// Failures are reported as errors wrapping ErrEmbeddingFailed.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Completer generates a reply for an ordered conversation.
// Failures are reported as errors wrapping ErrCompletionFailed.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Segmenter splits document text into token-bounded segments.
type Segmenter interface {
	Segment(text string, maxTokens int) ([]string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
