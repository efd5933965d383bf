package finbert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/pkg/errors"
)

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	enc, err := NewEncoder(10000, 128)
	require.NoError(t, err)
	return enc
}

func TestModelClassifier_Classify(t *testing.T) {
	model := &fakeModel{probs: []float32{0.1, 0.2, 0.7}}
	c := NewModelClassifier(model, newTestEncoder(t))

	text := strings.Repeat("Apple earnings beat and revenue guidance raised. ", 25)
	out, err := c.Classify(text)
	require.NoError(t, err)

	assert.Equal(t, sentiment.Bullish, out.Sentiment)
	assert.Equal(t, sentiment.PathModel, out.Path)
	assert.InDelta(t, 0.1, out.Probability.Bearish, 1e-6)
	assert.InDelta(t, 0.2, out.Probability.Neutral, 1e-6)
	assert.InDelta(t, 0.7, out.Probability.Bullish, 1e-6)
	assert.InDelta(t, 0.7*ContextMultiplier(text), out.Confidence, 1e-6)
	assert.Equal(t, int64(128), model.lastLen.Load())
}

func TestModelClassifier_ConfidenceMayExceedOne(t *testing.T) {
	model := &fakeModel{probs: []float32{0.0, 0.05, 0.95}}
	c := NewModelClassifier(model, newTestEncoder(t))

	text := strings.Repeat("earnings revenue profit eps guidance outlook ", 40)
	out, err := c.Classify(text)
	require.NoError(t, err)

	assert.InDelta(t, 0.95*1.2, out.Confidence, 1e-6)
	assert.Greater(t, out.Confidence, 1.0)
}

func TestModelClassifier_Failures(t *testing.T) {
	enc := newTestEncoder(t)

	tests := []struct {
		name    string
		model   Model
		text    string
		wantErr error
	}{
		{name: "no model", model: nil, text: "Stocks rallied", wantErr: errors.ErrModelUnavailable},
		{name: "empty input", model: &fakeModel{probs: []float32{0.3, 0.3, 0.4}}, text: "  \n", wantErr: errors.ErrEmptyInput},
		{name: "wrong output width", model: &fakeModel{probs: []float32{0.5, 0.5}}, text: "Stocks rallied", wantErr: errors.ErrShapeMismatch},
		{name: "negative probability", model: &fakeModel{probs: []float32{-1, 1, 1}}, text: "Stocks rallied", wantErr: errors.ErrInference},
		{name: "backend error", model: &fakeModel{err: errBackend}, text: "Stocks rallied", wantErr: errBackend},
		{name: "backend panic", model: &fakeModel{panics: true}, text: "Stocks rallied", wantErr: errors.ErrInference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewModelClassifier(tt.model, enc)

			out, err := c.Classify(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), err.Error())
			assert.Equal(t, Output{}, out)
		})
	}
}

func TestModelClassifier_NilReceiver(t *testing.T) {
	var c *ModelClassifier
	assert.False(t, c.Available())

	_, err := c.Classify("Stocks rallied")
	assert.True(t, errors.Is(err, errors.ErrModelUnavailable))
}
