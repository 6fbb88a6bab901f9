// Package textutil holds the tokenizer shared by the embedder, the
// summarizer and the terminal UI.
package textutil

import (
	"regexp"
	"strings"
)

var (
	wordRe     = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)
	sentenceRe = regexp.MustCompile(`(?s)[^.!?\n]+(?:[.!?]+|\n|$)`)
	stopwords  = func() map[string]struct{} {
		words := []string{
			"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
			"what", "which", "who", "whom", "how", "why", "when", "where", "do", "does", "did",
		}
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			m[w] = struct{}{}
		}
		return m
	}()
)

// Words returns the lower-cased word tokens of text.
func Words(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// Terms returns the lower-cased word tokens of text minus stop-words.
func Terms(text string) []string {
	raw := Words(text)
	out := raw[:0]
	for _, t := range raw {
		if IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TermSet returns the distinct terms of text.
func TermSet(text string) map[string]struct{} {
	terms := Terms(text)
	m := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		m[t] = struct{}{}
	}
	return m
}

func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// Sentences splits text on sentence punctuation and line breaks. Returned
// sentences are trimmed; empty ones are dropped.
func Sentences(text string) []string {
	var out []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Overlap counts the distinct terms of sentence present in query.
func Overlap(query map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range Terms(sentence) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := query[t]; ok {
			score++
		}
	}
	return score
}
