package segmenter

import (
	"fmt"
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// BPE ranks ship with the binary so segmentation never touches the network.
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

const (
	// DefaultMaxTokens is the segment budget used when none is given.
	DefaultMaxTokens = 1000

	// DefaultEncodingModel selects the tokenizer of the embedding model.
	DefaultEncodingModel = "text-embedding-ada-002"

	fallbackEncoding = "cl100k_base"
)

// Tokenizer converts between text and model tokens.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

func (t tiktokenTokenizer) Encode(text string) []int   { return t.enc.Encode(text, nil, nil) }
func (t tiktokenTokenizer) Decode(tokens []int) string { return t.enc.Decode(tokens) }

// NewTiktokenizer returns the tokenizer tiktoken uses for model,
// falling back to cl100k_base for unknown model names.
func NewTiktokenizer(model string) (Tokenizer, error) {
	if model == "" {
		model = DefaultEncodingModel
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
		}
	}
	return tiktokenTokenizer{enc: enc}, nil
}

// TokenSegmenter cuts text into contiguous windows of a fixed token count.
type TokenSegmenter struct {
	tokenizer Tokenizer
	maxTokens int
	logger    *slog.Logger
}

// Option configures a TokenSegmenter.
type Option func(*TokenSegmenter)

// WithMaxTokens sets the budget applied when Segment is called with maxTokens <= 0.
func WithMaxTokens(n int) Option {
	return func(s *TokenSegmenter) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *TokenSegmenter) {
		s.logger = logger
	}
}

// New creates a segmenter over the given tokenizer.
func New(tokenizer Tokenizer, opts ...Option) *TokenSegmenter {
	s := &TokenSegmenter{
		tokenizer: tokenizer,
		maxTokens: DefaultMaxTokens,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// NewForModel creates a segmenter using the tiktoken encoding of model.
func NewForModel(model string, opts ...Option) (*TokenSegmenter, error) {
	tok, err := NewTiktokenizer(model)
	if err != nil {
		return nil, err
	}
	return New(tok, opts...), nil
}

// Segment splits text into windows of exactly maxTokens tokens; the last
// window may be shorter. Text that encodes to no tokens yields no segments.
func (s *TokenSegmenter) Segment(text string, maxTokens int) ([]string, error) {
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}
	tokens := s.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return []string{}, nil
	}
	segments := make([]string, 0, (len(tokens)+maxTokens-1)/maxTokens)
	for start := 0; start < len(tokens); start += maxTokens {
		end := min(start+maxTokens, len(tokens))
		segments = append(segments, s.tokenizer.Decode(tokens[start:end]))
	}
	s.logger.Debug("text segmented",
		"tokens", len(tokens),
		"maxTokens", maxTokens,
		"segments", len(segments),
	)
	return segments, nil
}

// CountTokens returns the number of tokens text encodes to.
func (s *TokenSegmenter) CountTokens(text string) int {
	return len(s.tokenizer.Encode(text))
}
