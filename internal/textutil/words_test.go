package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentencesKeepsTrailingFragment(t *testing.T) {
	got := Sentences("Cats purr. Dogs bark!  And birds")
	assert.Equal(t, []string{"Cats purr.", "Dogs bark!", "And birds"}, got)
}

func TestSentencesEmpty(t *testing.T) {
	assert.Empty(t, Sentences("   "))
}

func TestContentWordsDropsStopwords(t *testing.T) {
	assert.Equal(t, []string{"cat", "sat", "mat", "2024"}, ContentWords("The cat sat on the mat in 2024"))
}

func TestWordSet(t *testing.T) {
	set := WordSet("Dog dog DOG cat")
	assert.Len(t, set, 2)
	assert.Contains(t, set, "dog")
	assert.Contains(t, set, "cat")
}
