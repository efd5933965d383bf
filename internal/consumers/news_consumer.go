package consumers

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"finsentiment/internal/adapters/kafka"
	"finsentiment/internal/domain/sentiment"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

// MessageSource is the consuming half of the Kafka adapter
type MessageSource interface {
	Consume(ctx context.Context, handler kafka.MessageHandler) error
}

// ArticleScorer scores one article end to end
type ArticleScorer interface {
	Score(ctx context.Context, article sentiment.Article) (*sentiment.ScoredArticle, error)
}

// NewsConsumerStats counts message outcomes since start
type NewsConsumerStats struct {
	Received   int64 `json:"received"`
	Scored     int64 `json:"scored"`
	Duplicates int64 `json:"duplicates"`
	Malformed  int64 `json:"malformed"`
	Failed     int64 `json:"failed"`
}

// NewsConsumer scores raw articles arriving on the input topic
type NewsConsumer struct {
	source        MessageSource
	scorer        ArticleScorer
	log           *logger.Logger
	statsInterval time.Duration

	received   atomic.Int64
	scored     atomic.Int64
	duplicates atomic.Int64
	malformed  atomic.Int64
	failed     atomic.Int64
}

func NewNewsConsumer(source MessageSource, scorer ArticleScorer, log *logger.Logger) *NewsConsumer {
	if log == nil {
		log = logger.Get()
	}
	return &NewsConsumer{
		source:        source,
		scorer:        scorer,
		log:           log.With("component", "news_consumer"),
		statsInterval: time.Minute,
	}
}

// Start consumes until ctx is cancelled. Cancellation is a clean stop.
func (c *NewsConsumer) Start(ctx context.Context) error {
	c.log.Info("Starting news consumer...")

	go c.logStatsPeriodically(ctx)

	err := c.source.Consume(ctx, c.HandleMessage)
	c.logStats(true)
	if err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "consume news")
	}
	return nil
}

// HandleMessage decodes one article and scores it. Malformed payloads and
// duplicates are dropped without error so the consumer keeps moving.
func (c *NewsConsumer) HandleMessage(ctx context.Context, msg kafkago.Message) error {
	c.received.Add(1)

	var article sentiment.Article
	if err := json.Unmarshal(msg.Value, &article); err != nil {
		c.malformed.Add(1)
		c.log.Warnw("Dropping malformed article", "offset", msg.Offset, "error", err)
		return nil
	}

	if _, err := c.scorer.Score(ctx, article); err != nil {
		switch {
		case errors.Is(err, errors.ErrDuplicate):
			c.duplicates.Add(1)
			return nil
		case errors.Is(err, errors.ErrInvalidInput):
			c.malformed.Add(1)
			c.log.Warnw("Dropping empty article", "offset", msg.Offset)
			return nil
		}
		c.failed.Add(1)
		return errors.Wrapf(err, "score article at offset %d", msg.Offset)
	}

	c.scored.Add(1)
	return nil
}

func (c *NewsConsumer) Stats() NewsConsumerStats {
	return NewsConsumerStats{
		Received:   c.received.Load(),
		Scored:     c.scored.Load(),
		Duplicates: c.duplicates.Load(),
		Malformed:  c.malformed.Load(),
		Failed:     c.failed.Load(),
	}
}

func (c *NewsConsumer) logStatsPeriodically(ctx context.Context) {
	ticker := time.NewTicker(c.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.logStats(false)
		}
	}
}

func (c *NewsConsumer) logStats(final bool) {
	s := c.Stats()
	msg := "News consumer stats"
	if final {
		msg = "News consumer final stats"
	}
	c.log.Infow(msg,
		"received", s.Received,
		"scored", s.Scored,
		"duplicates", s.Duplicates,
		"malformed", s.Malformed,
		"failed", s.Failed,
	)
}
