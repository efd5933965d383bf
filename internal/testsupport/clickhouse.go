package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"finsentiment/internal/adapters/clickhouse"
	"finsentiment/internal/adapters/config"
	"finsentiment/internal/domain/sentiment"
)

// ClickHouseTestHelper manages cleanup for ClickHouse integration tests.
type ClickHouseTestHelper struct {
	client *clickhouse.Client
}

// NewClickHouseTestHelper creates a ClickHouse client for tests.
func NewClickHouseTestHelper(t *testing.T, cfg config.ClickHouseConfig) *ClickHouseTestHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := clickhouse.NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to clickhouse: %v", err)
	}

	helper := &ClickHouseTestHelper{client: client}
	t.Cleanup(func() { _ = client.Close() })
	return helper
}

// CreateTempTable creates a temporary table and registers cleanup.
func (h *ClickHouseTestHelper) CreateTempTable(t *testing.T, schema string) string {
	t.Helper()

	table := fmt.Sprintf("tmp_test_%d", time.Now().UnixNano())
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s) ENGINE = MergeTree() ORDER BY tuple()", table, schema)

	if err := h.client.Exec(context.Background(), query); err != nil {
		t.Fatalf("failed to create clickhouse table: %v", err)
	}

	t.Cleanup(func() {
		_ = h.client.Exec(context.Background(), fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
	})

	return table
}

// CleanupTable drops the provided table immediately.
func (h *ClickHouseTestHelper) CleanupTable(ctx context.Context, table string) error {
	return h.client.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
}

// RegisterTableCleanup schedules cleanup of specific table data after test completes
// This is useful when working with shared tables that shouldn't be dropped
func (h *ClickHouseTestHelper) RegisterTableCleanup(t *testing.T, table, condition string) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, condition)
		_ = h.client.Exec(ctx, query)
	})
}

// Client exposes the raw ClickHouse client for queries.
func (h *ClickHouseTestHelper) Client() *clickhouse.Client {
	return h.client
}

// ========================================
// Fixture Builders for ClickHouse Tests
// ========================================

// ScoredArticleFixture provides builder pattern for creating test scored articles
type ScoredArticleFixture struct {
	article sentiment.ScoredArticle
}

// NewScoredArticleFixture creates a default scored article for testing
// Default: neutral rule-path verdict from source "test_source", published now
func NewScoredArticleFixture() *ScoredArticleFixture {
	now := time.Now().UTC().Truncate(time.Millisecond)
	id := fmt.Sprintf("fixture-%d", now.UnixNano())
	return &ScoredArticleFixture{
		article: sentiment.ScoredArticle{
			ID:          id,
			Fingerprint: id,
			Source:      "test_source",
			Title:       "Markets steady ahead of data",
			URL:         "https://example.com/" + id,
			Sentiment:   string(sentiment.Neutral),
			Confidence:  0.5,
			Bullish:     0.25,
			Bearish:     0.25,
			Neutral:     0.5,
			Entities:    []string{},
			Keywords:    []string{"steady"},
			Trend:       string(sentiment.TrendSideways),
			Path:        string(sentiment.PathRules),
			PublishedAt: now,
			ScoredAt:    now,
		},
	}
}

// WithFingerprint sets the fingerprint (and id)
func (f *ScoredArticleFixture) WithFingerprint(fp string) *ScoredArticleFixture {
	f.article.Fingerprint = fp
	f.article.ID = fp
	return f
}

// WithSource sets the source
func (f *ScoredArticleFixture) WithSource(source string) *ScoredArticleFixture {
	f.article.Source = source
	return f
}

// WithPublishedAt sets the publish time
func (f *ScoredArticleFixture) WithPublishedAt(t time.Time) *ScoredArticleFixture {
	f.article.PublishedAt = t.UTC().Truncate(time.Millisecond)
	return f
}

// Bullish sets a bullish verdict
func (f *ScoredArticleFixture) Bullish() *ScoredArticleFixture {
	f.article.Sentiment = string(sentiment.Bullish)
	f.article.Confidence = 0.9
	f.article.Bullish, f.article.Bearish, f.article.Neutral = 0.9, 0.05, 0.05
	f.article.OverallScore = (0.9 - 0.05) * 0.9
	return f
}

// Bearish sets a bearish verdict
func (f *ScoredArticleFixture) Bearish() *ScoredArticleFixture {
	f.article.Sentiment = string(sentiment.Bearish)
	f.article.Confidence = 0.9
	f.article.Bullish, f.article.Bearish, f.article.Neutral = 0.05, 0.9, 0.05
	f.article.OverallScore = (0.05 - 0.9) * 0.9
	return f
}

// Build returns the scored article
func (f *ScoredArticleFixture) Build() sentiment.ScoredArticle {
	return f.article
}
