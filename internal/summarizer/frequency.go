package summarizer

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/textutil"
)

// DefaultMaxSentences is used when Summarize is called with maxSentences <= 0.
const DefaultMaxSentences = 3

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered).
type FrequencySummarizer struct{}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{}
}

// Summarize returns the highest scoring sentences of text in their
// original order.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	sentences := textutil.Sentences(text)
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " "), nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, w := range textutil.ContentWords(sent) {
			freq[w]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		words := textutil.Words(sent)
		sum := 0.0
		for _, w := range words {
			sum += freq[w]
		}
		// Normalize by sentence length to avoid bias
		if len(words) > 0 {
			sum /= math.Sqrt(float64(len(words)))
		}
		scores[i] = scored{i, sum}
	}
	slices.SortStableFunc(scores, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	slices.Sort(selected)

	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, sentences[idx])
	}
	return strings.Join(out, " "), nil
}

var _ domain.Summarizer = (*FrequencySummarizer)(nil)
