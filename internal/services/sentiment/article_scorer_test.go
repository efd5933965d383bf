package sentiment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/events"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

type memoryFingerprints struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (m *memoryFingerprints) MarkSeen(ctx context.Context, fp string, ttl time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[fp] {
		return false, nil
	}
	m.seen[fp] = true
	return true, nil
}

func (m *memoryFingerprints) Forget(ctx context.Context, fp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, fp)
	return nil
}

type memoryRepo struct {
	sentiment.Repository // unused methods panic

	mu       sync.Mutex
	inserted []sentiment.ScoredArticle
	err      error
}

func (r *memoryRepo) InsertScoredArticle(ctx context.Context, a *sentiment.ScoredArticle) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserted = append(r.inserted, *a)
	return nil
}

type memoryPublisher struct {
	events []*events.ScoredArticleEvent
	err    error
}

func (p *memoryPublisher) PublishScoredArticle(ctx context.Context, e *events.ScoredArticleEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func newTestScorer(t *testing.T, repo sentiment.Repository, fps sentiment.FingerprintStore, pub ScoredPublisher) *ArticleScorer {
	t.Helper()
	s := NewArticleScorer(newRulesEngine(t), repo, fps, pub, ArticleScorerConfig{}, logger.Nop())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestFingerprint_IgnoresQuotedNumbers(t *testing.T) {
	a := sentiment.Article{Title: "Nvidia shares jumped 4% to $912.50 after earnings"}
	b := sentiment.Article{Title: "Nvidia shares jumped 6% to $930.10 after earnings"}
	c := sentiment.Article{Title: "Nvidia shares slumped after guidance"}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
	assert.Len(t, Fingerprint(a), 64)
}

func TestArticleScorer_Score(t *testing.T) {
	repo := &memoryRepo{}
	pub := &memoryPublisher{}
	s := newTestScorer(t, repo, &memoryFingerprints{}, pub)

	article := sentiment.Article{
		Title:   "Strong growth and rising profits beat expectations",
		Summary: "Acme lifted its outlook",
		URL:     "https://example.com/acme",
		Source:  "wire",
	}

	scored, err := s.Score(context.Background(), article)
	require.NoError(t, err)

	assert.Equal(t, "bullish", scored.Sentiment)
	assert.Equal(t, "rules", scored.Path)
	assert.Equal(t, Fingerprint(article), scored.Fingerprint)
	assert.NotEmpty(t, scored.ID)
	assert.Equal(t, s.now(), scored.ScoredAt)
	assert.Equal(t, scored.ScoredAt, scored.PublishedAt, "missing publish time falls back to scoring time")

	require.Len(t, repo.inserted, 1)
	assert.Equal(t, *scored, repo.inserted[0])

	require.Len(t, pub.events, 1)
	assert.Equal(t, scored.Fingerprint, pub.events[0].Fingerprint)
	assert.Equal(t, events.TypeArticleScored, pub.events[0].Type)
	assert.Equal(t, "finsentiment", pub.events[0].Source)
}

func TestArticleScorer_SkipsDuplicates(t *testing.T) {
	repo := &memoryRepo{}
	s := newTestScorer(t, repo, &memoryFingerprints{}, nil)

	first := sentiment.Article{Title: "Tesla deliveries rose 12% in Q2", Source: "a"}
	syndicated := sentiment.Article{Title: "Tesla deliveries rose 14% in Q2", Source: "b"}

	_, err := s.Score(context.Background(), first)
	require.NoError(t, err)

	_, err = s.Score(context.Background(), syndicated)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicate))
	assert.Len(t, repo.inserted, 1)
}

func TestArticleScorer_FingerprintStoreFailureDoesNotBlock(t *testing.T) {
	repo := &memoryRepo{}
	s := newTestScorer(t, repo, &memoryFingerprints{err: errors.ErrUnavailable}, nil)

	_, err := s.Score(context.Background(), sentiment.Article{Title: "Markets steady"})
	require.NoError(t, err)
	assert.Len(t, repo.inserted, 1)
}

func TestArticleScorer_Failures(t *testing.T) {
	t.Run("empty article", func(t *testing.T) {
		s := newTestScorer(t, nil, nil, nil)
		_, err := s.Score(context.Background(), sentiment.Article{Source: "x"})
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("persist failure", func(t *testing.T) {
		pub := &memoryPublisher{}
		s := newTestScorer(t, &memoryRepo{err: errors.ErrTimeout}, nil, pub)
		_, err := s.Score(context.Background(), sentiment.Article{Title: "Banks rally"})
		assert.True(t, errors.Is(err, errors.ErrTimeout))
		assert.Empty(t, pub.events, "nothing is announced when the write fails")
	})

	t.Run("publish failure", func(t *testing.T) {
		s := newTestScorer(t, nil, nil, &memoryPublisher{err: errors.ErrUnavailable})
		_, err := s.Score(context.Background(), sentiment.Article{Title: "Banks rally"})
		assert.True(t, errors.Is(err, errors.ErrUnavailable))
	})
}

func TestArticleScorer_RetryAfterFailure(t *testing.T) {
	article := sentiment.Article{Title: "Chipmakers rally on record orders", Source: "wire"}

	t.Run("persist fails then succeeds", func(t *testing.T) {
		fps := &memoryFingerprints{}
		repo := &memoryRepo{err: errors.ErrUnavailable}
		s := newTestScorer(t, repo, fps, nil)

		_, err := s.Score(context.Background(), article)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnavailable))
		assert.False(t, fps.seen[Fingerprint(article)], "fingerprint is released")

		repo.err = nil
		scored, err := s.Score(context.Background(), article)
		require.NoError(t, err)
		assert.Equal(t, Fingerprint(article), scored.Fingerprint)
		assert.Len(t, repo.inserted, 1)

		_, err = s.Score(context.Background(), article)
		assert.True(t, errors.Is(err, errors.ErrDuplicate))
	})

	t.Run("publish fails then succeeds", func(t *testing.T) {
		fps := &memoryFingerprints{}
		pub := &memoryPublisher{err: errors.ErrTimeout}
		s := newTestScorer(t, nil, fps, pub)

		_, err := s.Score(context.Background(), article)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrTimeout))

		pub.err = nil
		_, err = s.Score(context.Background(), article)
		require.NoError(t, err)
		assert.Len(t, pub.events, 1)
	})

	t.Run("cancelled context still releases", func(t *testing.T) {
		fps := &memoryFingerprints{}
		s := newTestScorer(t, &memoryRepo{err: context.Canceled}, fps, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.Score(ctx, article)
		require.Error(t, err)
		assert.Empty(t, fps.seen)
	})
}

func TestArticleScorer_ScoreBatch(t *testing.T) {
	repo := &memoryRepo{}
	s := newTestScorer(t, repo, &memoryFingerprints{}, nil)

	articles := []sentiment.Article{
		{Title: "Oil prices plunge on weak demand"},
		{Title: "Oil prices plunge on weak demand"},
		{},
		{Title: "Chipmakers rally on record orders"},
	}

	scored, err := s.ScoreBatch(context.Background(), articles)
	assert.Equal(t, 2, scored)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	assert.False(t, errors.Is(err, errors.ErrDuplicate))
	assert.Len(t, repo.inserted, 2)
}

func TestArticleScorer_ScoreBatchStopsOnCancel(t *testing.T) {
	s := newTestScorer(t, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scored, err := s.ScoreBatch(ctx, []sentiment.Article{{Title: "Banks rally"}})
	assert.Equal(t, 0, scored)
	assert.True(t, errors.Is(err, context.Canceled))
}
