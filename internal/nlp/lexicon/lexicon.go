// Package lexicon holds the curated financial term weights used for keyword
// extraction and sentence scoring.
package lexicon

import (
	"math"
	"sort"
	"strings"

	"finsentiment/internal/nlp/textproc"
	"finsentiment/pkg/errors"
)

// neutralBand bounds the weight of neutral terms
const neutralBand = 0.1

// Lexicon maps lower-cased terms to weights in [-1, 1]. It is immutable after
// construction and safe for concurrent use.
type Lexicon struct {
	weights  map[string]float64
	stems    map[string]float64
	positive []string
	negative []string
	neutral  []string
}

// New combines the three term sets into one lexicon. A term may appear in only
// one set with one weight; weights must match the polarity of their set.
func New(positive, negative, neutral map[string]float64) (*Lexicon, error) {
	l := &Lexicon{weights: make(map[string]float64, len(positive)+len(negative)+len(neutral))}

	var errs errors.MultiError
	errs.Add(l.addSet("positive", positive, func(w float64) bool { return w > 0 && w <= 1 }, &l.positive))
	errs.Add(l.addSet("negative", negative, func(w float64) bool { return w < 0 && w >= -1 }, &l.negative))
	errs.Add(l.addSet("neutral", neutral, func(w float64) bool { return math.Abs(w) <= neutralBand }, &l.neutral))
	if err := errs.ToError(); err != nil {
		return nil, err
	}

	l.buildStemIndex()
	return l, nil
}

func (l *Lexicon) addSet(name string, set map[string]float64, valid func(float64) bool, dst *[]string) error {
	var errs errors.MultiError
	for term, weight := range set {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" {
			errs.Add(errors.NewValidationError(name, "empty term", term))
			continue
		}
		if !valid(weight) {
			errs.Add(errors.NewValidationError(name, "weight out of range for set", weight))
			continue
		}
		if existing, ok := l.weights[key]; ok {
			if existing != weight {
				errs.Add(errors.Wrapf(errors.ErrLexiconConflict, "%q declared as %v and %v", key, existing, weight))
			} else {
				errs.Add(errors.Wrapf(errors.ErrLexiconConflict, "%q appears in more than one set", key))
			}
			continue
		}
		l.weights[key] = weight
		*dst = append(*dst, key)
	}
	sort.Strings(*dst)
	return errs.ToError()
}

// buildStemIndex maps stems to weights. Stems shared by terms of different
// weights are left out; exact lookups still resolve those terms.
func (l *Lexicon) buildStemIndex() {
	l.stems = make(map[string]float64, len(l.weights))
	ambiguous := make(map[string]bool)
	for term, weight := range l.weights {
		stem := textproc.Stem(term)
		if existing, ok := l.stems[stem]; ok && existing != weight {
			ambiguous[stem] = true
			continue
		}
		l.stems[stem] = weight
	}
	for stem := range ambiguous {
		delete(l.stems, stem)
	}
}

// Weight returns the weight of term, matching the exact lower-cased term first
// and its stem second
func (l *Lexicon) Weight(term string) (float64, bool) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return 0, false
	}
	if w, ok := l.weights[key]; ok {
		return w, true
	}
	w, ok := l.stems[textproc.Stem(key)]
	return w, ok
}

// Has reports whether term is an exact (case-insensitive) lexicon entry
func (l *Lexicon) Has(term string) bool {
	_, ok := l.weights[strings.ToLower(strings.TrimSpace(term))]
	return ok
}

// Len returns the number of entries
func (l *Lexicon) Len() int {
	return len(l.weights)
}

// Positive returns the sorted positive terms
func (l *Lexicon) Positive() []string {
	return append([]string(nil), l.positive...)
}

// Negative returns the sorted negative terms
func (l *Lexicon) Negative() []string {
	return append([]string(nil), l.negative...)
}

// Neutral returns the sorted neutral terms
func (l *Lexicon) Neutral() []string {
	return append([]string(nil), l.neutral...)
}
