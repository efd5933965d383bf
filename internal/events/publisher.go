package events

import (
	"context"
	"time"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

// Producer sends JSON-encoded events to a topic (kafka.Producer)
type Producer interface {
	Publish(ctx context.Context, topic string, key string, event interface{}) error
}

// ScoredArticleEvent announces an article together with its verdict
type ScoredArticleEvent struct {
	BaseEvent

	Fingerprint string    `json:"fingerprint"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`

	Result *sentiment.Result `json:"result"`
}

// NewScoredArticleEvent builds the event for one scored article
func NewScoredArticleEvent(source string, article sentiment.Article, fingerprint string, result *sentiment.Result) *ScoredArticleEvent {
	return &ScoredArticleEvent{
		BaseEvent:   NewBaseEvent(TypeArticleScored, source),
		Fingerprint: fingerprint,
		Title:       SanitizeUTF8(article.Title),
		URL:         article.URL,
		Source:      article.Source,
		PublishedAt: article.PublishedAt,
		Result:      result,
	}
}

// Publisher publishes events to Kafka
type Publisher struct {
	producer Producer
	topic    string
	log      *logger.Logger
}

// NewPublisher creates a new event publisher writing scored articles to topic
func NewPublisher(producer Producer, topic string, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		log:      log,
	}
}

// PublishScoredArticle publishes a scored article keyed by its fingerprint
func (p *Publisher) PublishScoredArticle(ctx context.Context, event *ScoredArticleEvent) error {
	if err := p.producer.Publish(ctx, p.topic, event.Fingerprint, event); err != nil {
		p.log.Errorw("Failed to publish event",
			"topic", p.topic,
			"event_id", event.ID,
			"error", err,
		)
		return errors.Wrap(err, "send to kafka")
	}

	p.log.Debugw("Event published",
		"topic", p.topic,
		"event_id", event.ID,
	)
	return nil
}
