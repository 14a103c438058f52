package lexical

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/textutil"
)

// DefaultDimension is the vector size used when none is given.
const DefaultDimension = 512

// Embedder is an offline term-frequency embedder. Words are hashed into a
// fixed number of buckets, so no vocabulary has to be prepared up front.
type Embedder struct {
	dimension int
}

// NewEmbedder creates a hashing embedder producing vectors of size dimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "lexical" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the L2-normalized hashed term-frequency vector of text.
// Text made only of stopwords is embedded from its stopwords.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", domain.ErrEmbeddingFailed)
	}
	words := textutil.ContentWords(text)
	if len(words) == 0 {
		words = textutil.Words(text)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: no words in input", domain.ErrEmbeddingFailed)
	}

	vec := make([]float64, e.dimension)
	for _, w := range words {
		vec[e.bucket(w)]++
	}
	// L2 normalize
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

func (e *Embedder) bucket(word string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return int(h.Sum32() % uint32(e.dimension))
}

var _ domain.Embedder = (*Embedder)(nil)
