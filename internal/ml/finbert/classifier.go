package finbert

import (
	"strings"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/ml"
	"finsentiment/pkg/errors"
)

// Model produces raw class probabilities for an encoded sequence, ordered
// bearish, neutral, bullish. ml.SequenceModel implements it.
type Model interface {
	Predict(ids []int64) ([]float32, error)
}

// Output is a classifier verdict before text-level enrichment
type Output struct {
	Sentiment   sentiment.Class
	Confidence  float64
	Probability sentiment.Probability
	Path        sentiment.Path
}

// ModelClassifier is the primary classification path backed by a sequence
// model
type ModelClassifier struct {
	model   Model
	encoder *Encoder
}

// NewModelClassifier creates the model path. A nil model is allowed: every
// Classify call then reports ErrModelUnavailable.
func NewModelClassifier(model Model, encoder *Encoder) *ModelClassifier {
	return &ModelClassifier{model: model, encoder: encoder}
}

// Available reports whether a model is attached
func (c *ModelClassifier) Available() bool {
	return c != nil && c.model != nil
}

// Classify encodes text, runs the model and scales the winning probability by
// ContextMultiplier. Confidence is not clamped to 1. Any failure is returned
// as an error for the caller to fall back on.
func (c *ModelClassifier) Classify(text string) (out Output, err error) {
	if !c.Available() {
		return Output{}, errors.ErrModelUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return Output{}, errors.ErrEmptyInput
	}

	defer func() {
		if r := recover(); r != nil {
			out = Output{}
			err = errors.Wrapf(errors.ErrInference, "model panicked: %v", r)
		}
	}()

	raw, err := c.model.Predict(c.encoder.Encode(text))
	if err != nil {
		return Output{}, errors.Wrap(err, "model prediction failed")
	}
	if err := ml.ValidateProbabilities(raw); err != nil {
		return Output{}, err
	}

	probs := sentiment.Probability{
		Bearish: float64(raw[0]),
		Neutral: float64(raw[1]),
		Bullish: float64(raw[2]),
	}
	class := probs.ArgMax()

	return Output{
		Sentiment:   class,
		Confidence:  probs.Of(class) * ContextMultiplier(text),
		Probability: probs,
		Path:        sentiment.PathModel,
	}, nil
}
