package lexical

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func TestEmbedIsNormalizedAndDeterministic(t *testing.T) {
	e := NewEmbedder(64)
	a, err := e.Embed(context.Background(), "Dogs bark at the mailman")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "Dogs bark at the mailman")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, norm(a), 1e-9)
	assert.Equal(t, a, b)
}

func TestEmbedIgnoresCaseAndStopwords(t *testing.T) {
	e := NewEmbedder(0)
	a, err := e.Embed(context.Background(), "The DOG")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "dog")
	require.NoError(t, err)
	assert.Equal(t, DefaultDimension, e.Dimension())
	assert.Equal(t, a, b)
}

func TestEmbedStopwordOnlyText(t *testing.T) {
	e := NewEmbedder(32)
	v, err := e.Embed(context.Background(), "the and of")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, norm(v), 1e-9)
}

func TestEmbedFailures(t *testing.T) {
	e := NewEmbedder(32)

	_, err := e.Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	_, err = e.Embed(context.Background(), "!!! ???")
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Embed(ctx, "dog")
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
}
