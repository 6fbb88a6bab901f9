package summarizer

import (
	"math"
	"sort"
	"strings"

	"github.com/Chanu-03/Study-Mate/internal/textutil"
)

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered).
type FrequencySummarizer struct {
	// QueryBoost multiplies the weight of terms that also appear in the query.
	QueryBoost float64
}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{QueryBoost: 4}
}

// Summarize returns a short summary by ranking sentences using token frequency.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	sentences := textutil.Sentences(text)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}
	return strings.Join(s.Top(sentences, "", maxSentences), " "), nil
}

// Top returns the maxSentences best sentences in their original order.
// When query is not empty, sentences sharing terms with it are preferred
// and sentences sharing none are dropped unless nothing matches.
func (s *FrequencySummarizer) Top(sentences []string, query string, maxSentences int) []string {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	if len(sentences) == 0 {
		return nil
	}
	qset := textutil.TermSet(query)
	// Compute word frequencies
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range textutil.Terms(sent) {
			freq[tok]++
		}
	}
	// Normalize frequencies
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, 0, len(sentences))
	for i, sent := range sentences {
		if len(qset) > 0 && textutil.Overlap(qset, sent) == 0 {
			continue
		}
		tokens := textutil.Terms(sent)
		sscore := 0.0
		for _, tok := range tokens {
			w := freq[tok]
			if _, ok := qset[tok]; ok {
				w *= s.QueryBoost
			}
			sscore += w
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(tokens)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores = append(scores, pair{i, sscore})
	}
	if len(scores) == 0 {
		return s.Top(sentences, "", maxSentences)
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	// Keep original order among selected
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, sentences[idx])
	}
	return out
}
