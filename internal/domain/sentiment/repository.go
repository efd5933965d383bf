package sentiment

import (
	"context"
	"time"
)

// Repository persists scored articles (ClickHouse)
type Repository interface {
	InsertScoredArticle(ctx context.Context, article *ScoredArticle) error
	GetLatest(ctx context.Context, limit int) ([]ScoredArticle, error)
	GetBySentiment(ctx context.Context, class Class, since time.Time, limit int) ([]ScoredArticle, error)
	SummarizeSources(ctx context.Context, since time.Time) ([]SourceSummary, error)
}

// FingerprintStore remembers article fingerprints so syndicated copies of the
// same story are scored once (Redis)
type FingerprintStore interface {
	// MarkSeen records the fingerprint and reports whether it was new
	MarkSeen(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error)
	// Forget releases a fingerprint whose article was not stored
	Forget(ctx context.Context, fingerprint string) error
}
