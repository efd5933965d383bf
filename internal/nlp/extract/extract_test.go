package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finsentiment/internal/nlp/lexicon"
)

func TestEntities_TickerMoneyPercent(t *testing.T) {
	got := Entities("AAPL rose to $185.45, up 1.28% today")
	assert.Equal(t, []string{"AAPL", "$185.45", "1.28%"}, got)
}

func TestEntities(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "thousands separators",
			text: "MSFT raised $1,250,000.50 in bonds",
			want: []string{"MSFT", "$1,250,000.50"},
		},
		{
			name: "deduplicated in first-appearance order",
			text: "5% gain for TSLA, NVDA and TSLA again at 5%",
			want: []string{"5%", "TSLA", "NVDA"},
		},
		{
			name: "over-matches abbreviations",
			text: "The CEO said Q3 was fine",
			want: []string{"CEO"},
		},
		{
			name: "long upper-case words are not tickers",
			text: "BREAKING news",
			want: []string{},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Entities(tt.text))
		})
	}
}

func TestKeywords(t *testing.T) {
	e := New(lexicon.Default())

	got := e.Keywords("Strong growth, record profit; growth outlook STABLE despite debt")
	assert.Equal(t, []string{"strong", "growth", "record", "profit", "outlook", "stable", "debt"}, got)

	// Inflections are not exact entries
	assert.Empty(t, e.Keywords("profits gains"))
	assert.Empty(t, e.Keywords(""))
}
