package indicators

import (
	"github.com/markcheno/go-talib"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/pkg/errors"
)

// Momentum above trendThreshold reads as up, below its negation as down
const trendThreshold = 0.1

// DeriveSentimentIndicators turns per-sentence scores into volatility
// (population std dev), momentum (mean successive delta) and a trend label.
// A single score yields zero volatility and momentum.
func DeriveSentimentIndicators(scores []float64) (*sentiment.TechnicalIndicators, error) {
	series, err := PrepareSeries(scores)
	if err != nil {
		return nil, errors.Wrap(err, "sentence scores")
	}

	n := len(series)
	if n == 1 {
		return &sentiment.TechnicalIndicators{Trend: sentiment.TrendSideways}, nil
	}

	volatility, err := GetLastValue(talib.StdDev(series, n, 1.0))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get volatility")
	}

	// Mean of successive deltas telescopes to (last - first) / (n - 1)
	change, err := GetLastValue(talib.Mom(series, n-1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get momentum")
	}
	momentum := change / float64(n-1)

	return &sentiment.TechnicalIndicators{
		Volatility: volatility,
		Momentum:   momentum,
		Trend:      ClassifyTrend(momentum),
	}, nil
}

// ClassifyTrend discretizes a momentum value
func ClassifyTrend(momentum float64) sentiment.Trend {
	switch {
	case momentum > trendThreshold:
		return sentiment.TrendUp
	case momentum < -trendThreshold:
		return sentiment.TrendDown
	default:
		return sentiment.TrendSideways
	}
}
