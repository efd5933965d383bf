package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/metrics"
	"finsentiment/pkg/errors"
)

// Compile-time check
var _ sentiment.Repository = (*SentimentRepository)(nil)

// ScoredArticlesSchema creates the scored_articles table. ReplacingMergeTree
// on fingerprint collapses re-scored copies of the same story.
const ScoredArticlesSchema = `
	CREATE TABLE IF NOT EXISTS scored_articles (
		id            String,
		fingerprint   String,
		source        LowCardinality(String),
		title         String,
		summary       String,
		url           String,
		sentiment     LowCardinality(String),
		confidence    Float64,
		overall_score Float64,
		prob_bullish  Float64,
		prob_bearish  Float64,
		prob_neutral  Float64,
		entities      Array(String),
		keywords      Array(String),
		volatility    Float64,
		momentum      Float64,
		trend         LowCardinality(String),
		path          LowCardinality(String),
		published_at  DateTime64(3, 'UTC'),
		scored_at     DateTime64(3, 'UTC')
	)
	ENGINE = ReplacingMergeTree(scored_at)
	PARTITION BY toYYYYMM(scored_at)
	ORDER BY (source, fingerprint)`

const selectScoredArticle = `
	SELECT
		id, fingerprint, source, title, summary, url, sentiment, confidence,
		overall_score, prob_bullish, prob_bearish, prob_neutral, entities,
		keywords, volatility, momentum, trend, path, published_at, scored_at
	FROM scored_articles`

// SentimentRepository implements sentiment.Repository using ClickHouse
type SentimentRepository struct {
	conn driver.Conn
}

// NewSentimentRepository creates a new sentiment repository
func NewSentimentRepository(conn driver.Conn) *SentimentRepository {
	return &SentimentRepository{conn: conn}
}

// EnsureSchema creates the tables this repository writes to
func (r *SentimentRepository) EnsureSchema(ctx context.Context) error {
	if err := r.conn.Exec(ctx, ScoredArticlesSchema); err != nil {
		return errors.Wrap(err, "failed to create scored_articles table")
	}
	return nil
}

// InsertScoredArticle inserts a scored article
func (r *SentimentRepository) InsertScoredArticle(ctx context.Context, a *sentiment.ScoredArticle) error {
	start := time.Now()

	query := `
		INSERT INTO scored_articles (
			id, fingerprint, source, title, summary, url, sentiment, confidence,
			overall_score, prob_bullish, prob_bearish, prob_neutral, entities,
			keywords, volatility, momentum, trend, path, published_at, scored_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)`

	err := r.conn.Exec(ctx, query,
		a.ID, a.Fingerprint, a.Source, a.Title, a.Summary, a.URL, a.Sentiment, a.Confidence,
		a.OverallScore, a.Bullish, a.Bearish, a.Neutral, a.Entities,
		a.Keywords, a.Volatility, a.Momentum, a.Trend, a.Path, a.PublishedAt, a.ScoredAt,
	)
	metrics.RecordDBQuery("clickhouse", "insert_scored_article", time.Since(start), err)
	if err != nil {
		return errors.Wrapf(err, "failed to insert scored article: fingerprint=%s", a.Fingerprint)
	}
	return nil
}

// InsertScoredArticles inserts a batch of scored articles in one round trip
func (r *SentimentRepository) InsertScoredArticles(ctx context.Context, articles []*sentiment.ScoredArticle) error {
	if len(articles) == 0 {
		return nil
	}

	start := time.Now()
	err := r.sendBatch(ctx, articles)
	metrics.RecordDBQuery("clickhouse", "insert_scored_articles", time.Since(start), err)
	return err
}

func (r *SentimentRepository) sendBatch(ctx context.Context, articles []*sentiment.ScoredArticle) error {
	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO scored_articles (
			id, fingerprint, source, title, summary, url, sentiment, confidence,
			overall_score, prob_bullish, prob_bearish, prob_neutral, entities,
			keywords, volatility, momentum, trend, path, published_at, scored_at
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, a := range articles {
		if err := batch.AppendStruct(a); err != nil {
			_ = batch.Abort()
			return errors.Wrapf(err, "failed to append scored article: fingerprint=%s", a.Fingerprint)
		}
	}

	if err := batch.Send(); err != nil {
		return errors.Wrapf(err, "failed to send batch of %d scored articles", len(articles))
	}
	return nil
}

// GetLatest retrieves the most recently scored articles
func (r *SentimentRepository) GetLatest(ctx context.Context, limit int) ([]sentiment.ScoredArticle, error) {
	var articles []sentiment.ScoredArticle

	query := selectScoredArticle + `
		ORDER BY scored_at DESC
		LIMIT $1`

	start := time.Now()
	err := r.conn.Select(ctx, &articles, query, limit)
	metrics.RecordDBQuery("clickhouse", "get_latest", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest scored articles")
	}
	return articles, nil
}

// GetBySentiment retrieves articles of one class published since a time
func (r *SentimentRepository) GetBySentiment(ctx context.Context, class sentiment.Class, since time.Time, limit int) ([]sentiment.ScoredArticle, error) {
	if !class.Valid() {
		return nil, errors.NewValidationError("sentiment", "unknown class", class)
	}

	var articles []sentiment.ScoredArticle

	query := selectScoredArticle + `
		WHERE sentiment = $1 AND published_at >= $2
		ORDER BY published_at DESC
		LIMIT $3`

	start := time.Now()
	err := r.conn.Select(ctx, &articles, query, string(class), since, limit)
	metrics.RecordDBQuery("clickhouse", "get_by_sentiment", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s articles", class)
	}
	return articles, nil
}

// SummarizeSources aggregates verdicts per source since a time
func (r *SentimentRepository) SummarizeSources(ctx context.Context, since time.Time) ([]sentiment.SourceSummary, error) {
	var summaries []sentiment.SourceSummary

	query := `
		SELECT
			source,
			count()                        AS articles,
			countIf(sentiment = 'bullish') AS bullish_count,
			countIf(sentiment = 'bearish') AS bearish_count,
			countIf(sentiment = 'neutral') AS neutral_count,
			avg(overall_score)             AS avg_score,
			avg(confidence)                AS avg_confidence
		FROM scored_articles FINAL
		WHERE scored_at >= $1
		GROUP BY source
		ORDER BY articles DESC`

	start := time.Now()
	err := r.conn.Select(ctx, &summaries, query, since)
	metrics.RecordDBQuery("clickhouse", "summarize_sources", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize sources")
	}
	return summaries, nil
}
