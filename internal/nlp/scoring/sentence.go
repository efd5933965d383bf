// Package scoring computes per-sentence lexicon scores
package scoring

import (
	"finsentiment/internal/nlp/lexicon"
	"finsentiment/internal/nlp/textproc"
)

// SentenceScorer averages lexicon weights over the words of a sentence
type SentenceScorer struct {
	lexicon *lexicon.Lexicon
}

// NewSentenceScorer creates a scorer backed by lex
func NewSentenceScorer(lex *lexicon.Lexicon) *SentenceScorer {
	return &SentenceScorer{lexicon: lex}
}

// Score returns the mean weight of the sentence's lexicon words, or exactly 0
// when none match
func (s *SentenceScorer) Score(sentence string) float64 {
	var (
		sum     float64
		matched int
	)
	for _, word := range textproc.Words(sentence) {
		if w, ok := s.lexicon.Weight(word); ok {
			sum += w
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	return sum / float64(matched)
}

// ScoreAll scores each sentence in order
func (s *SentenceScorer) ScoreAll(sentences []string) []float64 {
	scores := make([]float64, len(sentences))
	for i, sentence := range sentences {
		scores[i] = s.Score(sentence)
	}
	return scores
}
