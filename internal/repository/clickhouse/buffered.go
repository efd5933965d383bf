package clickhouse

import (
	"context"
	"time"

	"finsentiment/internal/domain/sentiment"
	chbatch "finsentiment/pkg/clickhouse"
	"finsentiment/pkg/logger"
)

// Compile-time check
var _ sentiment.Repository = (*BufferedSentimentRepository)(nil)

// batchInserter is the write half of SentimentRepository
type batchInserter interface {
	InsertScoredArticles(ctx context.Context, articles []*sentiment.ScoredArticle) error
}

// BufferedSentimentRepository batches scored-article inserts and delegates
// reads to the underlying repository. An accepted insert is durable only
// after the next flush.
type BufferedSentimentRepository struct {
	*SentimentRepository
	writer *chbatch.BatchWriter[*sentiment.ScoredArticle]
}

// BufferConfig sizes the insert buffer
type BufferConfig struct {
	MaxBatchSize int
	FlushEvery   time.Duration
}

func NewBufferedSentimentRepository(repo *SentimentRepository, cfg BufferConfig, log *logger.Logger) *BufferedSentimentRepository {
	return &BufferedSentimentRepository{
		SentimentRepository: repo,
		writer:              newArticleWriter(repo, cfg, log),
	}
}

func newArticleWriter(inserter batchInserter, cfg BufferConfig, log *logger.Logger) *chbatch.BatchWriter[*sentiment.ScoredArticle] {
	return chbatch.NewBatchWriter(chbatch.BatchWriterConfig[*sentiment.ScoredArticle]{
		FlushFunc:    inserter.InsertScoredArticles,
		TableName:    "scored_articles",
		MaxBatchSize: cfg.MaxBatchSize,
		MaxAge:       cfg.FlushEvery,
		Logger:       log,
	})
}

// Start begins periodic flushing
func (r *BufferedSentimentRepository) Start(ctx context.Context) {
	r.writer.Start(ctx)
}

// Stop flushes whatever is buffered
func (r *BufferedSentimentRepository) Stop(ctx context.Context) error {
	return r.writer.Stop(ctx)
}

// InsertScoredArticle buffers the article. An error is returned only when
// this call triggered a flush that failed.
func (r *BufferedSentimentRepository) InsertScoredArticle(ctx context.Context, a *sentiment.ScoredArticle) error {
	return r.writer.Add(ctx, a)
}

func (r *BufferedSentimentRepository) Stats() chbatch.BatchWriterStats {
	return r.writer.GetStats()
}
