package finbert

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	maxMultiplier  = 1.2
	boostPerTerm   = 0.05
	fullLengthText = 1000.0
)

// High-signal financial terms, matched as case-insensitive substrings
var boostTerms = []string{"earnings", "revenue", "profit", "eps", "guidance", "outlook"}

// ContextMultiplier scales model confidence by how much financial context the
// text carries. Each boost term adds 5%, then a length factor of
// min(runes/1000, 1.2) applies, so short texts are penalized even when they
// carry strong signal. The result never exceeds 1.2.
func ContextMultiplier(text string) float64 {
	lower := strings.ToLower(text)

	m := 1.0
	for _, term := range boostTerms {
		if strings.Contains(lower, term) {
			m += boostPerTerm
		}
	}

	lengthFactor := math.Min(float64(utf8.RuneCountInString(text))/fullLengthText, maxMultiplier)
	return math.Min(m*lengthFactor, maxMultiplier)
}
