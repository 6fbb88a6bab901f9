package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chanu-03/Study-Mate/internal/domain"
)

var _ domain.Summarizer = (*FrequencySummarizer)(nil)

const text = "Cells need energy. Mitochondria produce energy for cells. " +
	"The weather was nice. Energy in cells is stored as ATP."

func TestSummarize_KeepsOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	got, err := s.Summarize(text, 3)
	require.NoError(t, err)
	assert.Equal(t, "Cells need energy. Mitochondria produce energy for cells. Energy in cells is stored as ATP.", got)
}

func TestSummarize_NoSentences(t *testing.T) {
	got, err := NewFrequencySummarizer().Summarize("   ", 3)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestTop_PrefersQueryTerms(t *testing.T) {
	s := NewFrequencySummarizer()
	sentences := []string{
		"Cells need energy.",
		"The weather was nice.",
		"Weather forecasts use satellites.",
	}
	got := s.Top(sentences, "How is the weather predicted?", 5)
	assert.Equal(t, []string{"The weather was nice.", "Weather forecasts use satellites."}, got)
}

func TestTop_FallsBackWhenNothingMatches(t *testing.T) {
	s := NewFrequencySummarizer()
	got := s.Top([]string{"Alpha beta.", "Gamma delta."}, "zeta", 1)
	assert.Len(t, got, 1)
}
