package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/events"
	"finsentiment/internal/metrics"
	"finsentiment/internal/nlp/textproc"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

// Analyzer scores one text (Engine)
type Analyzer interface {
	AnalyzeSentiment(text string) *sentiment.Result
}

// ScoredPublisher announces scored articles (events.Publisher)
type ScoredPublisher interface {
	PublishScoredArticle(ctx context.Context, event *events.ScoredArticleEvent) error
}

// Article outcomes
const (
	StatusScored    = "scored"
	StatusDuplicate = "duplicate"
	StatusError     = "error"
)

// ArticleScorerConfig contains article pipeline configuration
type ArticleScorerConfig struct {
	ServiceName    string        // Event source field (default: finsentiment)
	FingerprintTTL time.Duration // How long a story counts as seen (default: 24h)
}

// ArticleScorer runs upstream articles through the engine, dropping
// syndicated duplicates, and stores and announces each verdict. Repository,
// fingerprint store and publisher are all optional.
type ArticleScorer struct {
	analyzer     Analyzer
	repo         sentiment.Repository
	fingerprints sentiment.FingerprintStore
	publisher    ScoredPublisher
	cfg          ArticleScorerConfig
	log          *logger.Logger
	now          func() time.Time
}

// NewArticleScorer creates a new article scorer
func NewArticleScorer(
	analyzer Analyzer,
	repo sentiment.Repository,
	fingerprints sentiment.FingerprintStore,
	publisher ScoredPublisher,
	cfg ArticleScorerConfig,
	log *logger.Logger,
) *ArticleScorer {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "finsentiment"
	}
	if cfg.FingerprintTTL <= 0 {
		cfg.FingerprintTTL = 24 * time.Hour
	}
	if log == nil {
		log = logger.Get()
	}

	return &ArticleScorer{
		analyzer:     analyzer,
		repo:         repo,
		fingerprints: fingerprints,
		publisher:    publisher,
		cfg:          cfg,
		log:          log.With("component", "article_scorer"),
		now:          time.Now,
	}
}

// Fingerprint identifies a story independently of the exact prices,
// percentages and tickers quoted in it
func Fingerprint(article sentiment.Article) string {
	sum := sha256.Sum256([]byte(textproc.Normalize(article.Text())))
	return hex.EncodeToString(sum[:])
}

// Score processes one article. It returns errors.ErrDuplicate when the story
// was already scored within the fingerprint TTL. A failing fingerprint store
// is logged and does not stop scoring.
func (s *ArticleScorer) Score(ctx context.Context, article sentiment.Article) (*sentiment.ScoredArticle, error) {
	article.Title = events.SanitizeUTF8(article.Title)
	article.Summary = events.SanitizeUTF8(article.Summary)

	if article.Text() == "" {
		metrics.RecordArticle(article.Source, StatusError)
		return nil, errors.Wrap(errors.ErrInvalidInput, "article has no title or summary")
	}

	fp := Fingerprint(article)
	ctx = errors.WithTags(ctx, map[string]string{"fingerprint": fp, "source": article.Source})

	claimed := false
	if s.fingerprints != nil {
		fresh, err := s.fingerprints.MarkSeen(ctx, fp, s.cfg.FingerprintTTL)
		switch {
		case err != nil:
			s.log.Warnw("Fingerprint store unavailable, scoring anyway", "fingerprint", fp, "error", err)
		case !fresh:
			metrics.RecordArticle(article.Source, StatusDuplicate)
			return nil, errors.Wrapf(errors.ErrDuplicate, "article %s", fp)
		default:
			claimed = true
		}
	}

	result := s.analyzer.AnalyzeSentiment(article.Text())
	scored := s.toScoredArticle(article, fp, result)

	if s.repo != nil {
		if err := s.repo.InsertScoredArticle(ctx, scored); err != nil {
			metrics.RecordArticle(article.Source, StatusError)
			s.log.ErrorWithContext(ctx, err, map[string]string{"stage": "persist"})
			s.release(ctx, fp, claimed)
			return nil, errors.Wrap(err, "failed to persist scored article")
		}
	}

	if s.publisher != nil {
		event := events.NewScoredArticleEvent(s.cfg.ServiceName, article, fp, result)
		if err := s.publisher.PublishScoredArticle(ctx, event); err != nil {
			metrics.RecordArticle(article.Source, StatusError)
			s.log.ErrorWithContext(ctx, err, map[string]string{"stage": "publish"})
			s.release(ctx, fp, claimed)
			return nil, errors.Wrap(err, "failed to publish scored article")
		}
	}

	metrics.RecordArticle(article.Source, StatusScored)
	s.log.Debugw("Article scored",
		"fingerprint", fp,
		"source", article.Source,
		"sentiment", result.Sentiment,
		"confidence", result.Confidence,
		"path", result.Path,
	)

	return scored, nil
}

// release drops a fingerprint claimed by a failed Score so a retry is not
// mistaken for a duplicate. A publish failure after a successful write means
// the retry stores the article again.
func (s *ArticleScorer) release(ctx context.Context, fp string, claimed bool) {
	if !claimed {
		return
	}
	if err := s.fingerprints.Forget(context.WithoutCancel(ctx), fp); err != nil {
		s.log.Warnw("Failed to release fingerprint", "fingerprint", fp, "error", err)
	}
}

// ScoreBatch scores articles in order until ctx is cancelled. Duplicates are
// skipped silently; other failures are collected and scoring continues.
func (s *ArticleScorer) ScoreBatch(ctx context.Context, articles []sentiment.Article) (int, error) {
	var (
		scored int
		errs   errors.MultiError
	)

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			errs.Add(err)
			break
		}

		if _, err := s.Score(ctx, article); err != nil {
			if errors.Is(err, errors.ErrDuplicate) {
				continue
			}
			errs.Add(err)
			continue
		}
		scored++
	}

	return scored, errs.ToError()
}

func (s *ArticleScorer) toScoredArticle(article sentiment.Article, fp string, r *sentiment.Result) *sentiment.ScoredArticle {
	scored := &sentiment.ScoredArticle{
		ID:           uuid.NewString(),
		Fingerprint:  fp,
		Source:       article.Source,
		Title:        article.Title,
		Summary:      article.Summary,
		URL:          article.URL,
		Sentiment:    string(r.Sentiment),
		Confidence:   r.Confidence,
		OverallScore: r.OverallScore,
		Bullish:      r.Probability.Bullish,
		Bearish:      r.Probability.Bearish,
		Neutral:      r.Probability.Neutral,
		Entities:     r.Entities,
		Keywords:     r.Keywords,
		Path:         string(r.Path),
		PublishedAt:  article.PublishedAt,
		ScoredAt:     s.now().UTC(),
	}

	if r.TechnicalIndicators != nil {
		scored.Volatility = r.TechnicalIndicators.Volatility
		scored.Momentum = r.TechnicalIndicators.Momentum
		scored.Trend = string(r.TechnicalIndicators.Trend)
	}
	if scored.PublishedAt.IsZero() {
		scored.PublishedAt = scored.ScoredAt
	}

	return scored
}
