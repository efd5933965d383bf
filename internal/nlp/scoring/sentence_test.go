package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finsentiment/internal/nlp/lexicon"
)

func TestSentenceScorer_Score(t *testing.T) {
	s := NewSentenceScorer(lexicon.Default())

	tests := []struct {
		name     string
		sentence string
		want     float64
	}{
		{name: "no lexicon words", sentence: "The meeting is on Tuesday.", want: 0},
		{name: "empty", sentence: "", want: 0},
		{name: "single positive", sentence: "A bullish session.", want: 0.8},
		{name: "mixed average", sentence: "Strong rally despite weak demand", want: (0.6 + 0.7 - 0.6) / 3},
		{name: "neutral terms count toward the average", sentence: "Bullish but flat", want: 0.4},
		{name: "case insensitive", sentence: "CRASH", want: -0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Score(tt.sentence), 1e-9)
		})
	}
}

func TestSentenceScorer_ScoreAll(t *testing.T) {
	s := NewSentenceScorer(lexicon.Default())

	scores := s.ScoreAll([]string{"Bullish.", "Nothing here.", "Crash."})
	assert.Len(t, scores, 3)
	assert.InDelta(t, 0.8, scores[0], 1e-9)
	assert.Equal(t, 0.0, scores[1])
	assert.InDelta(t, -0.9, scores[2], 1e-9)

	assert.Empty(t, s.ScoreAll(nil))
}
