package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/pkg/logger"
)

// summaryWindow is the look-back for per-source article gauges
const summaryWindow = 24 * time.Hour

// StatsProvider exposes engine state to the collector
type StatsProvider interface {
	GetServiceStats() sentiment.ServiceStats
}

// SourceSummarizer aggregates stored verdicts per source
type SourceSummarizer interface {
	SummarizeSources(ctx context.Context, since time.Time) ([]sentiment.SourceSummary, error)
}

// CustomCollector collects gauges computed at scrape time from the engine and
// the scored-article store
type CustomCollector struct {
	log    *logger.Logger
	engine StatsProvider
	repo   SourceSummarizer // optional

	// Descriptors
	engineReady    *prometheus.Desc
	engineAccuracy *prometheus.Desc
	sourceArticles *prometheus.Desc
	sourceAvgScore *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector. repo may be nil
// when ClickHouse is not configured.
func NewCustomCollector(log *logger.Logger, engine StatsProvider, repo SourceSummarizer) *CustomCollector {
	return &CustomCollector{
		log:    log,
		engine: engine,
		repo:   repo,

		engineReady: prometheus.NewDesc(
			"finsentiment_engine_ready",
			"Engine initialization state (1=ready)",
			[]string{"path"}, nil,
		),
		engineAccuracy: prometheus.NewDesc(
			"finsentiment_engine_accuracy",
			"Reported accuracy of the active classification path",
			nil, nil,
		),
		sourceArticles: prometheus.NewDesc(
			"finsentiment_source_articles_24h",
			"Scored articles in the last 24h by source and sentiment",
			[]string{"source", "sentiment"}, nil,
		),
		sourceAvgScore: prometheus.NewDesc(
			"finsentiment_source_avg_score_24h",
			"Average overall score in the last 24h by source",
			[]string{"source"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.engineReady
	ch <- c.engineAccuracy
	ch <- c.sourceArticles
	ch <- c.sourceAvgScore
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectEngine(ch)

	if c.repo != nil {
		c.collectSources(ctx, ch)
	}
}

func (c *CustomCollector) collectEngine(ch chan<- prometheus.Metric) {
	stats := c.engine.GetServiceStats()

	ready := 0.0
	if stats.IsInitialized {
		ready = 1
	}

	ch <- prometheus.MustNewConstMetric(c.engineReady, prometheus.GaugeValue, ready, string(stats.ActivePath))
	ch <- prometheus.MustNewConstMetric(c.engineAccuracy, prometheus.GaugeValue, stats.Accuracy)
}

func (c *CustomCollector) collectSources(ctx context.Context, ch chan<- prometheus.Metric) {
	summaries, err := c.repo.SummarizeSources(ctx, time.Now().Add(-summaryWindow))
	if err != nil {
		c.log.Errorw("Failed to collect source summaries", "error", err)
		return
	}

	for _, s := range summaries {
		ch <- prometheus.MustNewConstMetric(c.sourceArticles, prometheus.GaugeValue, float64(s.BullishCount), s.Source, string(sentiment.Bullish))
		ch <- prometheus.MustNewConstMetric(c.sourceArticles, prometheus.GaugeValue, float64(s.BearishCount), s.Source, string(sentiment.Bearish))
		ch <- prometheus.MustNewConstMetric(c.sourceArticles, prometheus.GaugeValue, float64(s.NeutralCount), s.Source, string(sentiment.Neutral))
		ch <- prometheus.MustNewConstMetric(c.sourceAvgScore, prometheus.GaugeValue, s.AvgScore, s.Source)
	}
}

// RegisterCustomCollector registers the custom collector
func RegisterCustomCollector(collector *CustomCollector) {
	prometheus.MustRegister(collector)
}
