package retrieval

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"docqa/internal/domain"
)

const (
	// DefaultThreshold is the minimum similarity for a segment to be used.
	DefaultThreshold = 0.2

	// DefaultConcurrency bounds concurrent segment embedding calls.
	DefaultConcurrency = 4
)

// Reason explains why no segment was selected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoSegments
	ReasonQueryEmbeddingFailed
	ReasonNoSegmentEmbeddings
	ReasonBelowThreshold
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoSegments:
		return "no_segments"
	case ReasonQueryEmbeddingFailed:
		return "query_embedding_failed"
	case ReasonNoSegmentEmbeddings:
		return "no_segment_embeddings"
	case ReasonBelowThreshold:
		return "below_threshold"
	default:
		return "unknown"
	}
}

// Scored is the similarity of one segment to the query.
type Scored struct {
	Index int
	Score float64
}

// Selection is the outcome of a relevance search.
type Selection struct {
	Segment string
	Index   int     // -1 when nothing was selected
	Score   float64 // best score seen, also set for ReasonBelowThreshold
	Reason  Reason
	// Ranking holds every embedded segment, best first.
	Ranking []Scored
	// Embedded counts segments whose embedding succeeded.
	Embedded int
}

// Found reports whether a segment was selected.
func (s Selection) Found() bool { return s.Reason == ReasonNone }

// Selector picks the segment most similar to a query.
// It holds no per-request state and is safe for concurrent use.
type Selector struct {
	embedder    domain.Embedder
	threshold   float64
	concurrency int
	logger      *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithThreshold sets the minimum similarity.
func WithThreshold(t float64) Option {
	return func(s *Selector) {
		s.threshold = t
	}
}

// WithConcurrency bounds concurrent segment embedding calls. 1 embeds sequentially.
func WithConcurrency(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

// NewSelector creates a selector that embeds through embedder.
func NewSelector(embedder domain.Embedder, opts ...Option) *Selector {
	s := &Selector{
		embedder:    embedder,
		threshold:   DefaultThreshold,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Threshold returns the configured minimum similarity.
func (s *Selector) Threshold() float64 { return s.threshold }

// Select embeds query and every segment and returns the segment with the
// highest cosine similarity, if it reaches the threshold. Segments whose
// embedding fails are left out of the ranking. Ties go to the lower index.
func (s *Selector) Select(ctx context.Context, query string, segments []string) Selection {
	start := time.Now()
	none := Selection{Index: -1}

	if len(segments) == 0 {
		none.Reason = ReasonNoSegments
		s.logger.Info("no segments to search")
		return none
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err == nil && math.IsNaN(maxAbs(qvec)) {
		err = ErrNonFinite
	}
	if err != nil || len(qvec) == 0 {
		none.Reason = ReasonQueryEmbeddingFailed
		s.logger.Warn("query embedding failed", "error", err)
		return none
	}

	vectors := s.embedSegments(ctx, segments)

	ranking := make([]Scored, 0, len(segments))
	for i, vec := range vectors {
		if vec == nil {
			continue
		}
		score, err := CosineSimilarity(qvec, vec)
		if err != nil {
			s.logger.Warn("segment skipped",
				"index", i,
				"queryDim", len(qvec),
				"segmentDim", len(vec),
				"error", err,
			)
			continue
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			s.logger.Warn("segment skipped", "index", i, "score", score)
			continue
		}
		ranking = append(ranking, Scored{Index: i, Score: score})
	}
	none.Embedded = len(ranking)

	if len(ranking) == 0 {
		none.Reason = ReasonNoSegmentEmbeddings
		s.logger.Warn("no segment embeddings", "segments", len(segments))
		return none
	}

	slices.SortStableFunc(ranking, func(a, b Scored) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	best := ranking[0]

	s.logger.Debug("segments ranked",
		"segments", len(segments),
		"embedded", len(ranking),
		"bestIndex", best.Index,
		"bestScore", best.Score,
		"threshold", s.threshold,
		"duration", time.Since(start),
	)

	if best.Score < s.threshold {
		none.Reason = ReasonBelowThreshold
		none.Score = best.Score
		none.Ranking = ranking
		s.logger.Info("best segment below threshold",
			"bestScore", best.Score,
			"threshold", s.threshold,
		)
		return none
	}

	return Selection{
		Segment:  segments[best.Index],
		Index:    best.Index,
		Score:    best.Score,
		Reason:   ReasonNone,
		Ranking:  ranking,
		Embedded: len(ranking),
	}
}

// embedSegments returns one vector per segment, nil where embedding failed.
func (s *Selector) embedSegments(ctx context.Context, segments []string) [][]float64 {
	vectors := make([][]float64, len(segments))
	sem := semaphore.NewWeighted(int64(s.concurrency))
	var wg sync.WaitGroup

	for i, seg := range segments {
		if ctx.Err() != nil {
			s.logger.Warn("segment embedding aborted", "index", i, "error", ctx.Err())
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			s.logger.Warn("segment embedding aborted", "index", i, "error", err)
			break
		}
		wg.Add(1)
		go func(i int, seg string) {
			defer wg.Done()
			defer sem.Release(1)
			vec, err := s.embedder.Embed(ctx, seg)
			if err != nil || len(vec) == 0 {
				s.logger.Warn("segment embedding failed", "index", i, "error", err)
				return
			}
			vectors[i] = vec
		}(i, seg)
	}
	wg.Wait()
	return vectors
}
