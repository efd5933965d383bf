package sentiment

import (
	"context"
	"time"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/workers"
	"finsentiment/pkg/errors"
)

const lockKey = "worker:news_scorer"

// NewsSource returns the newest articles from the upstream feed
type NewsSource interface {
	FetchLatest(ctx context.Context, limit int) ([]sentiment.Article, error)
}

// BatchScorer scores a batch of articles, returning how many were stored
type BatchScorer interface {
	ScoreBatch(ctx context.Context, articles []sentiment.Article) (int, error)
}

// Locker keeps two replicas from polling the same feed at once
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// NewsScorer polls the news feed and scores whatever it has not seen yet
type NewsScorer struct {
	*workers.BaseWorker
	source  NewsSource
	scorer  BatchScorer
	locker  Locker
	batch   int
	lockTTL time.Duration
}

// NewNewsScorer creates the worker. locker may be nil for single-replica runs.
func NewNewsScorer(
	source NewsSource,
	scorer BatchScorer,
	locker Locker,
	batch int,
	lockTTL time.Duration,
	interval time.Duration,
	enabled bool,
) *NewsScorer {
	if batch <= 0 {
		batch = 50
	}
	if lockTTL <= 0 {
		lockTTL = interval
	}
	return &NewsScorer{
		BaseWorker: workers.NewBaseWorker("news_scorer", interval, enabled),
		source:     source,
		scorer:     scorer,
		locker:     locker,
		batch:      batch,
		lockTTL:    lockTTL,
	}
}

// Run executes one poll-and-score iteration
func (w *NewsScorer) Run(ctx context.Context) error {
	if w.locker != nil {
		acquired, err := w.locker.AcquireLock(ctx, lockKey, w.lockTTL)
		if err != nil {
			return errors.Wrap(err, "acquire news scorer lock")
		}
		if !acquired {
			w.Log().Debug("News scorer lock held elsewhere, skipping iteration")
			return nil
		}
		defer func() {
			// ctx may already be cancelled on shutdown
			if err := w.locker.ReleaseLock(context.Background(), lockKey); err != nil {
				w.Log().Warnw("Failed to release news scorer lock", "error", err)
			}
		}()
	}

	articles, err := w.source.FetchLatest(ctx, w.batch)
	if err != nil {
		return errors.Wrap(err, "fetch latest news")
	}
	if len(articles) == 0 {
		w.Log().Debug("No articles returned by news feed")
		return nil
	}

	scored, err := w.scorer.ScoreBatch(ctx, articles)
	w.Log().Infow("News scoring complete",
		"fetched", len(articles),
		"scored", scored,
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.Wrap(err, "score news batch")
	}
	return nil
}
