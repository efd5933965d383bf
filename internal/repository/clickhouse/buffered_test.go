package clickhouse

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/testsupport"
	"finsentiment/pkg/logger"
)

type fakeInserter struct {
	mu      sync.Mutex
	batches [][]*sentiment.ScoredArticle
}

func (f *fakeInserter) InsertScoredArticles(ctx context.Context, articles []*sentiment.ScoredArticle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, articles)
	return nil
}

func TestBufferedRepository_FlushesBySizeAndOnStop(t *testing.T) {
	inserter := &fakeInserter{}
	repo := &BufferedSentimentRepository{
		writer: newArticleWriter(inserter, BufferConfig{MaxBatchSize: 2, FlushEvery: time.Hour}, logger.Nop()),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo.Start(ctx)

	for i := 0; i < 3; i++ {
		a := testsupport.NewScoredArticleFixture().WithFingerprint(fmt.Sprintf("fp-%d", i)).Build()
		require.NoError(t, repo.InsertScoredArticle(ctx, &a))
	}

	inserter.mu.Lock()
	require.Len(t, inserter.batches, 1)
	assert.Len(t, inserter.batches[0], 2)
	inserter.mu.Unlock()
	assert.Equal(t, 1, repo.Stats().BufferSize)

	require.NoError(t, repo.Stop(context.Background()))

	inserter.mu.Lock()
	require.Len(t, inserter.batches, 2)
	assert.Equal(t, "fp-2", inserter.batches[1][0].Fingerprint)
	inserter.mu.Unlock()
	assert.Equal(t, int64(3), repo.Stats().Flushed)
}

func TestSentimentRepository_InsertScoredArticlesEmpty(t *testing.T) {
	repo := NewSentimentRepository(nil)
	assert.NoError(t, repo.InsertScoredArticles(context.Background(), nil))
}

func TestSentimentRepository_InsertScoredArticlesBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testsupport.LoadDatabaseConfigsFromEnv(t)
	helper := testsupport.NewClickHouseTestHelper(t, cfg.ClickHouse)

	repo := NewSentimentRepository(helper.Client().Conn())
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	source := fmt.Sprintf("batch_source_%d", time.Now().UnixNano())
	helper.RegisterTableCleanup(t, "scored_articles", fmt.Sprintf("source = '%s'", source))

	var batch []*sentiment.ScoredArticle
	for i := 0; i < 3; i++ {
		a := testsupport.NewScoredArticleFixture().WithSource(source).WithFingerprint(fmt.Sprintf("%s-%d", source, i)).Build()
		batch = append(batch, &a)
	}
	require.NoError(t, repo.InsertScoredArticles(ctx, batch))

	summaries, err := repo.SummarizeSources(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	for _, s := range summaries {
		if s.Source == source {
			assert.Equal(t, uint64(3), s.Articles)
			return
		}
	}
	t.Fatalf("source %s missing from summaries", source)
}
