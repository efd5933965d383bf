// Package extract pulls entities (tickers, money amounts, percentages) and
// lexicon keywords out of raw financial text.
package extract

import (
	"regexp"
	"sort"

	"finsentiment/internal/nlp/lexicon"
	"finsentiment/internal/nlp/textproc"
)

var (
	// Upper-case runs also catch abbreviations such as CEO or a leading "A".
	tickerPattern     = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
	moneyPattern      = regexp.MustCompile(`\$\d{1,3}(?:,\d{3})+(?:\.\d+)?|\$\d+(?:\.\d+)?`)
	percentagePattern = regexp.MustCompile(`\d+(?:\.\d+)?%`)

	entityPatterns = []*regexp.Regexp{tickerPattern, moneyPattern, percentagePattern}
)

// Extractor finds lexicon keywords. Entity extraction needs no state.
type Extractor struct {
	lexicon *lexicon.Lexicon
}

// New creates an extractor over lex
func New(lex *lexicon.Lexicon) *Extractor {
	return &Extractor{lexicon: lex}
}

type match struct {
	pos  int
	text string
}

// Entities returns tickers, money amounts and percentages found in the
// unmodified text, deduplicated in order of first appearance.
func Entities(text string) []string {
	var matches []match
	for _, pattern := range entityPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			matches = append(matches, match{pos: loc[0], text: text[loc[0]:loc[1]]})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	entities := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if seen[m.text] {
			continue
		}
		seen[m.text] = true
		entities = append(entities, m.text)
	}
	return entities
}

// Keywords returns the words of text that are exact lexicon entries,
// deduplicated in order of first appearance
func (e *Extractor) Keywords(text string) []string {
	words := textproc.Words(text)
	keywords := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if seen[w] || !e.lexicon.Has(w) {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}
