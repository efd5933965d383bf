package sentiment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/pkg/errors"
)

type fakeSource struct {
	articles  []sentiment.Article
	err       error
	lastLimit int
}

func (f *fakeSource) FetchLatest(ctx context.Context, limit int) ([]sentiment.Article, error) {
	f.lastLimit = limit
	return f.articles, f.err
}

type fakeScorer struct {
	calls int
	got   []sentiment.Article
	n     int
	err   error
}

func (f *fakeScorer) ScoreBatch(ctx context.Context, articles []sentiment.Article) (int, error) {
	f.calls++
	f.got = articles
	return f.n, f.err
}

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	err      error
	released int
}

func (f *fakeLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLocker) ReleaseLock(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = false
	f.released++
	return nil
}

func sampleArticles() []sentiment.Article {
	return []sentiment.Article{
		{Title: "Acme beats estimates", Source: "wire"},
		{Title: "Globex misses guidance", Source: "wire"},
	}
}

func TestNewsScorer_Run(t *testing.T) {
	source := &fakeSource{articles: sampleArticles()}
	scorer := &fakeScorer{n: 2}
	locker := &fakeLocker{}

	w := NewNewsScorer(source, scorer, locker, 25, time.Minute, time.Minute, true)
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, 25, source.lastLimit)
	assert.Equal(t, 1, scorer.calls)
	assert.Len(t, scorer.got, 2)
	assert.Equal(t, 1, locker.released)
	assert.False(t, locker.held)
	assert.Equal(t, "news_scorer", w.Name())
}

func TestNewsScorer_SkipsWhenLockHeld(t *testing.T) {
	source := &fakeSource{articles: sampleArticles()}
	scorer := &fakeScorer{}
	locker := &fakeLocker{held: true}

	w := NewNewsScorer(source, scorer, locker, 0, 0, time.Minute, true)
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, 0, scorer.calls)
	assert.Equal(t, 0, locker.released)
}

func TestNewsScorer_Errors(t *testing.T) {
	t.Run("lock error", func(t *testing.T) {
		w := NewNewsScorer(&fakeSource{}, &fakeScorer{}, &fakeLocker{err: errors.ErrUnavailable}, 10, time.Minute, time.Minute, true)
		err := w.Run(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnavailable))
	})

	t.Run("fetch error", func(t *testing.T) {
		scorer := &fakeScorer{}
		w := NewNewsScorer(&fakeSource{err: errors.ErrUpstreamStatus}, scorer, nil, 10, time.Minute, time.Minute, true)
		err := w.Run(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUpstreamStatus))
		assert.Equal(t, 0, scorer.calls)
	})

	t.Run("score error", func(t *testing.T) {
		locker := &fakeLocker{}
		scorer := &fakeScorer{n: 1, err: errors.ErrUnavailable}
		w := NewNewsScorer(&fakeSource{articles: sampleArticles()}, scorer, locker, 10, time.Minute, time.Minute, true)
		err := w.Run(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnavailable))
		assert.Equal(t, 1, locker.released)
	})
}

func TestNewsScorer_EmptyFeed(t *testing.T) {
	scorer := &fakeScorer{}
	w := NewNewsScorer(&fakeSource{}, scorer, nil, 10, time.Minute, time.Minute, true)
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 0, scorer.calls)
}
