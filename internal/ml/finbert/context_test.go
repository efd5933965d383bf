package finbert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextMultiplier_CapAtOnePointTwo(t *testing.T) {
	text := strings.Repeat("Earnings, revenue, profit, EPS, guidance and outlook all improved. ", 20)
	assert.GreaterOrEqual(t, len(text), 1000)

	m := ContextMultiplier(text)
	assert.InDelta(t, 1.2, m, 1e-9)
	assert.LessOrEqual(t, m, 1.2)
}

func TestContextMultiplier_ShortTextPenalized(t *testing.T) {
	// Strong signal in a short headline still scales confidence down
	text := "Record earnings and revenue"
	want := (1.0 + 2*0.05) * float64(len(text)) / 1000
	assert.InDelta(t, want, ContextMultiplier(text), 1e-9)
	assert.Less(t, ContextMultiplier(text), 0.1)
}

func TestContextMultiplier_TermsCountOnce(t *testing.T) {
	base := strings.Repeat("x", 1000)
	assert.InDelta(t, 1.0, ContextMultiplier(base), 1e-9)
	assert.InDelta(t, 1.05*1.0, ContextMultiplier("EARNINGS earnings "+base[18:]), 1e-9)
}

func TestContextMultiplier_LengthFactorCapped(t *testing.T) {
	// Length factor stops at 1.2 for texts over 1200 characters
	assert.InDelta(t, 1.2, ContextMultiplier(strings.Repeat("a", 5000)), 1e-9)
	assert.InDelta(t, 0.5, ContextMultiplier(strings.Repeat("a", 500)), 1e-9)
	assert.Equal(t, 0.0, ContextMultiplier(""))
}

func TestContextMultiplier_CountsRunes(t *testing.T) {
	text := strings.Repeat("é", 500)
	assert.InDelta(t, 0.5, ContextMultiplier(text), 1e-9)
}
