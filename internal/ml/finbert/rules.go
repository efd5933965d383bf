package finbert

import (
	"math"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/nlp/textproc"
)

const (
	noSignalConfidence = 0.5
	balancedConfidence = 0.6
	maxRuleConfidence  = 0.9
)

var positiveWords = wordSet(
	"bullish", "strong", "stronger", "growth", "grow", "growing", "rising", "rise", "rose",
	"gain", "gains", "gained", "profit", "profits", "profitable", "beat", "beats",
	"surge", "surged", "rally", "rallied", "upgrade", "upgraded", "outperform",
	"record", "exceeded", "optimistic", "boost", "recovery", "expansion",
)

var negativeWords = wordSet(
	"bearish", "weak", "weaker", "decline", "declined", "declining", "falling", "fall", "fell",
	"loss", "losses", "drop", "dropped", "plunge", "plunged", "crash", "slump",
	"downgrade", "downgraded", "underperform", "miss", "missed", "recession",
	"bankruptcy", "layoffs", "pessimistic", "contraction",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// RuleClassifier is the deterministic fallback path. It counts curated
// positive and negative words and never fails.
type RuleClassifier struct{}

// NewRuleClassifier creates the fallback path
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify counts word hits. The winner gets confidence
// min(0.9, 0.5 + |pos-neg|/(pos+neg)); no hits give neutral at 0.5 and a
// nonzero tie gives neutral at 0.6.
func (RuleClassifier) Classify(text string) Output {
	var pos, neg int
	for _, w := range textproc.Words(text) {
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}

	var (
		class      sentiment.Class
		confidence float64
	)
	switch {
	case pos == 0 && neg == 0:
		class, confidence = sentiment.Neutral, noSignalConfidence
	case pos > neg:
		class = sentiment.Bullish
		confidence = math.Min(maxRuleConfidence, 0.5+float64(pos-neg)/float64(pos+neg))
	case neg > pos:
		class = sentiment.Bearish
		confidence = math.Min(maxRuleConfidence, 0.5+float64(neg-pos)/float64(pos+neg))
	default:
		class, confidence = sentiment.Neutral, balancedConfidence
	}

	return Output{
		Sentiment:   class,
		Confidence:  confidence,
		Probability: synthesize(class, confidence),
		Path:        sentiment.PathRules,
	}
}

// synthesize gives the winner its confidence and splits the rest evenly
func synthesize(winner sentiment.Class, confidence float64) sentiment.Probability {
	rest := (1 - confidence) / 2
	p := sentiment.Probability{Bullish: rest, Bearish: rest, Neutral: rest}
	switch winner {
	case sentiment.Bullish:
		p.Bullish = confidence
	case sentiment.Bearish:
		p.Bearish = confidence
	default:
		p.Neutral = confidence
	}
	return p
}
