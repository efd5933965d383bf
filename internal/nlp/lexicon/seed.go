package lexicon

import "sync"

// Seed term sets. Inflections sharing a stem carry the same weight.
var (
	seedPositive = map[string]float64{
		"bullish":      0.8,
		"growth":       0.6,
		"profit":       0.7,
		"profitable":   0.7,
		"gain":         0.6,
		"surge":        0.8,
		"rally":        0.7,
		"beat":         0.6,
		"outperform":   0.7,
		"upgrade":      0.7,
		"strong":       0.6,
		"record":       0.5,
		"rise":         0.5,
		"rising":       0.5,
		"expansion":    0.5,
		"exceed":       0.6,
		"optimistic":   0.6,
		"boost":        0.5,
		"recovery":     0.5,
		"dividend":     0.3,
		"positive":     0.5,
		"breakthrough": 0.7,
	}

	seedNegative = map[string]float64{
		"bearish":      -0.8,
		"decline":      -0.6,
		"loss":         -0.7,
		"losses":       -0.7,
		"plunge":       -0.8,
		"crash":        -0.9,
		"downgrade":    -0.7,
		"underperform": -0.7,
		"weak":         -0.6,
		"miss":         -0.6,
		"fall":         -0.5,
		"falling":      -0.5,
		"drop":         -0.5,
		"recession":    -0.8,
		"bankruptcy":   -0.9,
		"layoffs":      -0.6,
		"lawsuit":      -0.5,
		"slump":        -0.7,
		"debt":         -0.4,
		"risk":         -0.3,
		"negative":     -0.5,
		"volatile":     -0.3,
	}

	seedNeutral = map[string]float64{
		"stable":    0.0,
		"unchanged": 0.0,
		"flat":      0.0,
		"steady":    0.0,
		"hold":      0.0,
		"maintain":  0.0,
		"guidance":  0.0,
		"outlook":   0.0,
		"forecast":  0.0,
		"quarter":   0.0,
	}

	defaultOnce    sync.Once
	defaultLexicon *Lexicon
)

// Default returns the shared seed lexicon. It panics if the seed data is
// inconsistent, which the package tests rule out.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		l, err := New(seedPositive, seedNegative, seedNeutral)
		if err != nil {
			panic("lexicon: invalid seed data: " + err.Error())
		}
		defaultLexicon = l
	})
	return defaultLexicon
}
