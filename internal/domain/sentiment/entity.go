package sentiment

import "time"

// Class is the market direction a text expresses
type Class string

const (
	Bullish Class = "bullish"
	Bearish Class = "bearish"
	Neutral Class = "neutral"
)

// Valid reports whether c is one of the three known classes
func (c Class) Valid() bool {
	switch c {
	case Bullish, Bearish, Neutral:
		return true
	}
	return false
}

func (c Class) String() string {
	return string(c)
}

// Trend is the discretized direction of sentence-score momentum
type Trend string

const (
	TrendUp       Trend = "up"
	TrendDown     Trend = "down"
	TrendSideways Trend = "sideways"
)

// Path identifies which classifier produced a result
type Path string

const (
	PathModel Path = "model"
	PathRules Path = "rules"
)

// Probability holds per-class probabilities. After confidence adjustment the
// three values are not renormalized and need not sum to exactly 1.
type Probability struct {
	Bullish float64 `json:"bullish"`
	Bearish float64 `json:"bearish"`
	Neutral float64 `json:"neutral"`
}

// Of returns the probability assigned to class c
func (p Probability) Of(c Class) float64 {
	switch c {
	case Bullish:
		return p.Bullish
	case Bearish:
		return p.Bearish
	default:
		return p.Neutral
	}
}

// ArgMax returns the most probable class. A directional class must beat
// both others strictly; every tie resolves to neutral.
func (p Probability) ArgMax() Class {
	switch {
	case p.Bullish > p.Bearish && p.Bullish > p.Neutral:
		return Bullish
	case p.Bearish > p.Bullish && p.Bearish > p.Neutral:
		return Bearish
	default:
		return Neutral
	}
}

// TechnicalIndicators are statistics over the per-sentence score series
type TechnicalIndicators struct {
	Volatility float64 `json:"volatility"` // population std dev, >= 0
	Momentum   float64 `json:"momentum"`   // mean successive delta
	Trend      Trend   `json:"trend"`
}

// Result is the engine's verdict for one text. Confidence may exceed 1 on
// the model path (context boost up to 1.2x); presentation code clamps it.
type Result struct {
	Sentiment           Class                `json:"sentiment"`
	Confidence          float64              `json:"confidence"`
	Probability         Probability          `json:"probability"`
	Entities            []string             `json:"entities"`
	Keywords            []string             `json:"keywords"`
	SentenceScores      []float64            `json:"sentenceScores"`
	OverallScore        float64              `json:"overallScore"`
	TechnicalIndicators *TechnicalIndicators `json:"technicalIndicators,omitempty"`
	Path                Path                 `json:"path"`
}

// ServiceStats describes the engine to health and stats endpoints
type ServiceStats struct {
	IsInitialized      bool     `json:"isInitialized"`
	Accuracy           float64  `json:"accuracy"`
	ModelComplexity    string   `json:"modelComplexity"`
	SupportedLanguages []string `json:"supportedLanguages"`
	ActivePath         Path     `json:"activePath"`
}

// Article is an upstream news item as delivered by the news feed
type Article struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Text returns the input the engine scores for this article
func (a Article) Text() string {
	switch {
	case a.Summary == "":
		return a.Title
	case a.Title == "":
		return a.Summary
	}
	return a.Title + ". " + a.Summary
}

// ScoredArticle is an article together with its sentiment verdict, as stored
// in ClickHouse
type ScoredArticle struct {
	ID           string    `ch:"id" json:"id"`
	Fingerprint  string    `ch:"fingerprint" json:"fingerprint"`
	Source       string    `ch:"source" json:"source"`
	Title        string    `ch:"title" json:"title"`
	Summary      string    `ch:"summary" json:"summary"`
	URL          string    `ch:"url" json:"url"`
	Sentiment    string    `ch:"sentiment" json:"sentiment"`
	Confidence   float64   `ch:"confidence" json:"confidence"`
	OverallScore float64   `ch:"overall_score" json:"overallScore"`
	Bullish      float64   `ch:"prob_bullish" json:"bullish"`
	Bearish      float64   `ch:"prob_bearish" json:"bearish"`
	Neutral      float64   `ch:"prob_neutral" json:"neutral"`
	Entities     []string  `ch:"entities" json:"entities"`
	Keywords     []string  `ch:"keywords" json:"keywords"`
	Volatility   float64   `ch:"volatility" json:"volatility"`
	Momentum     float64   `ch:"momentum" json:"momentum"`
	Trend        string    `ch:"trend" json:"trend"`
	Path         string    `ch:"path" json:"path"`
	PublishedAt  time.Time `ch:"published_at" json:"publishedAt"`
	ScoredAt     time.Time `ch:"scored_at" json:"scoredAt"`
}

// SourceSummary aggregates scored articles of one source over a window
type SourceSummary struct {
	Source        string  `ch:"source" json:"source"`
	Articles      uint64  `ch:"articles" json:"articles"`
	BullishCount  uint64  `ch:"bullish_count" json:"bullishCount"`
	BearishCount  uint64  `ch:"bearish_count" json:"bearishCount"`
	NeutralCount  uint64  `ch:"neutral_count" json:"neutralCount"`
	AvgScore      float64 `ch:"avg_score" json:"avgScore"`
	AvgConfidence float64 `ch:"avg_confidence" json:"avgConfidence"`
}
