package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbability_ArgMax(t *testing.T) {
	tests := []struct {
		name string
		p    Probability
		want Class
	}{
		{name: "bullish", p: Probability{Bullish: 0.7, Bearish: 0.1, Neutral: 0.2}, want: Bullish},
		{name: "bearish", p: Probability{Bullish: 0.1, Bearish: 0.6, Neutral: 0.3}, want: Bearish},
		{name: "neutral", p: Probability{Bullish: 0.2, Bearish: 0.2, Neutral: 0.6}, want: Neutral},
		{name: "directional tie", p: Probability{Bullish: 0.45, Bearish: 0.45, Neutral: 0.1}, want: Neutral},
		{name: "tie with neutral", p: Probability{Bullish: 0.4, Bearish: 0.2, Neutral: 0.4}, want: Neutral},
		{name: "all zero", p: Probability{}, want: Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.ArgMax()
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestProbability_Of(t *testing.T) {
	p := Probability{Bullish: 0.5, Bearish: 0.3, Neutral: 0.2}
	assert.Equal(t, 0.5, p.Of(Bullish))
	assert.Equal(t, 0.3, p.Of(Bearish))
	assert.Equal(t, 0.2, p.Of(Neutral))
}

func TestArticle_Text(t *testing.T) {
	a := Article{Title: "Apple beats estimates", Summary: "Revenue rose 8%"}
	assert.Equal(t, "Apple beats estimates. Revenue rose 8%", a.Text())

	a.Summary = ""
	assert.Equal(t, "Apple beats estimates", a.Text())

	a.Title, a.Summary = "", "Revenue rose 8%"
	assert.Equal(t, "Revenue rose 8%", a.Text())
}

func TestClass_Valid(t *testing.T) {
	assert.False(t, Class("sideways").Valid())
	assert.Equal(t, "bullish", Bullish.String())
}
