// Package textproc prepares financial text for the sentiment engine: the
// placeholder and synonym normalization passes, word tokenization with
// stemming, and sentence segmentation.
package textproc

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

// Placeholder tokens emitted by Normalize. They are upper-case so the
// lower-case patterns never re-match them.
const (
	PlaceholderPrice      = "PRICE"
	PlaceholderPercentage = "PERCENTAGE"
	PlaceholderQuarter    = "QUARTER"
	PlaceholderTicker     = "TICKER"
)

// Canonical markers emitted by Canonicalize
const (
	MarkerRevenue  = "REVENUE"
	MarkerProfit   = "PROFIT"
	MarkerPositive = "POSITIVE"
	MarkerNegative = "NEGATIVE"
)

var (
	pricePattern      = regexp.MustCompile(`\$\d+(?:[.,]\d+)*[kmb]?`)
	percentagePattern = regexp.MustCompile(`\d+(?:\.\d+)?%`)
	quarterPattern    = regexp.MustCompile(`\bq[1-4]\b`)
	// Catches ordinary short words too; masking favours recall over precision.
	tickerPattern = regexp.MustCompile(`\b[a-z]{1,5}\b`)

	synonymPasses = []struct {
		pattern *regexp.Regexp
		marker  string
	}{
		{regexp.MustCompile(`\b(?:revenue|sales|income)\b`), MarkerRevenue},
		{regexp.MustCompile(`\b(?:profit|earnings|eps)\b`), MarkerProfit},
		{regexp.MustCompile(`\b(?:growth|increase|rise)\b`), MarkerPositive},
		{regexp.MustCompile(`\b(?:decline|decrease|fall|drop)\b`), MarkerNegative},
	}

	wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

	reserved = map[string]bool{
		PlaceholderPrice:      true,
		PlaceholderPercentage: true,
		PlaceholderQuarter:    true,
		PlaceholderTicker:     true,
		MarkerRevenue:         true,
		MarkerProfit:          true,
		MarkerPositive:        true,
		MarkerNegative:        true,
	}
)

// Normalize lower-cases text and masks prices, percentages, quarter
// references and short alphabetic runs with placeholder tokens, in that order.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = pricePattern.ReplaceAllString(s, " "+PlaceholderPrice+" ")
	s = percentagePattern.ReplaceAllString(s, " "+PlaceholderPercentage+" ")
	s = quarterPattern.ReplaceAllString(s, PlaceholderQuarter)
	s = tickerPattern.ReplaceAllString(s, PlaceholderTicker)
	return collapseSpaces(s)
}

// Canonicalize lower-cases text and replaces domain synonyms with canonical
// markers. It is independent of Normalize and feeds the model encoder only.
func Canonicalize(text string) string {
	s := strings.ToLower(text)
	for _, pass := range synonymPasses {
		s = pass.pattern.ReplaceAllString(s, pass.marker)
	}
	return s
}

// Words splits text into lower-cased word tokens without stemming
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Tokenize splits text into word tokens and stems each one. Placeholder and
// marker tokens pass through unchanged.
func Tokenize(text string) []string {
	raw := wordPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if reserved[tok] {
			tokens = append(tokens, tok)
			continue
		}
		if stem := Stem(tok); stem != "" {
			tokens = append(tokens, stem)
		}
	}
	return tokens
}

// Stem reduces a word to its Porter2 (snowball English) stem
func Stem(word string) string {
	return english.Stem(strings.ToLower(word), true)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
