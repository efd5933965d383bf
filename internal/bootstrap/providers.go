package bootstrap

import (
	"context"
	"time"

	chclient "finsentiment/internal/adapters/clickhouse"
	"finsentiment/internal/adapters/config"
	errnoop "finsentiment/internal/adapters/errors/noop"
	"finsentiment/internal/adapters/errors/sentry"
	"finsentiment/internal/adapters/kafka"
	"finsentiment/internal/adapters/news"
	redisclient "finsentiment/internal/adapters/redis"
	"finsentiment/internal/api"
	"finsentiment/internal/api/health"
	"finsentiment/internal/consumers"
	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/events"
	"finsentiment/internal/metrics"
	chrepo "finsentiment/internal/repository/clickhouse"
	redisrepo "finsentiment/internal/repository/redis"
	sentimentsvc "finsentiment/internal/services/sentiment"
	"finsentiment/internal/workers"
	sentimentworkers "finsentiment/internal/workers/sentiment"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

const connectTimeout = 10 * time.Second

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration, the logger and the error tracker
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env, cfg.App.Name); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure connects the configured data stores
func (c *Container) MustInitInfrastructure() {
	ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
	defer cancel()

	var err error

	if c.Config.ClickHouse.Enabled() {
		c.Log.Info("Connecting to ClickHouse...")
		c.CH, err = chclient.NewClient(ctx, c.Config.ClickHouse)
		if err != nil {
			c.Log.Fatalf("failed to connect clickhouse: %v", err)
		}
		c.Log.Info("ClickHouse connected")
	} else {
		c.Log.Info("ClickHouse not configured, scored articles will not be stored")
	}

	if c.Config.Redis.Enabled() {
		c.Log.Info("Connecting to Redis...")
		c.Redis, err = redisclient.NewClient(ctx, c.Config.Redis)
		if err != nil {
			c.Log.Fatalf("failed to connect redis: %v", err)
		}
		c.Log.Info("Redis connected")
	} else {
		c.Log.Info("Redis not configured, duplicate suppression disabled")
	}
}

// ========================================
// Phase 3: Repositories
// ========================================

// MustInitRepositories creates repositories over the connected stores
func (c *Container) MustInitRepositories() {
	if c.CH != nil {
		repo := chrepo.NewSentimentRepository(c.CH.Conn())

		ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			c.Log.Fatalf("failed to ensure clickhouse schema: %v", err)
		}

		c.Repos.Articles = chrepo.NewBufferedSentimentRepository(repo, chrepo.BufferConfig{
			MaxBatchSize: c.Config.ClickHouse.BatchSize,
			FlushEvery:   c.Config.ClickHouse.FlushInterval,
		}, c.Log)
	}

	if c.Redis != nil {
		c.Repos.Fingerprints = redisrepo.NewFingerprintRepository(c.Redis.Client())
	}
}

// ========================================
// Phase 4: Engine
// ========================================

// MustInitEngine loads the model (if any) and builds the sentiment engine
func (c *Container) MustInitEngine() {
	engine, release, err := NewEngine(c.Config.Model, c.Log)
	if err != nil {
		c.Log.Fatalf("failed to initialize sentiment engine: %v", err)
	}
	c.Services.Engine = engine
	c.Services.releaseModel = release

	metrics.RegisterCustomCollector(metrics.NewCustomCollector(c.Log, engine, c.articleRepository()))
}

// ========================================
// Phase 5: Adapters
// ========================================

// MustInitAdapters creates Kafka and news feed adapters
func (c *Container) MustInitAdapters() {
	if c.Config.Kafka.Enabled() {
		c.Adapters.KafkaProducer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers: c.Config.Kafka.Brokers,
		})
		c.Adapters.Publisher = events.NewPublisher(c.Adapters.KafkaProducer, c.Config.Kafka.OutputTopic, c.Log)

		c.Adapters.NewsConsumer = kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: c.Config.Kafka.Brokers,
			GroupID: c.Config.Kafka.GroupID,
			Topic:   c.Config.Kafka.InputTopic,
		})
		c.Log.Infow("Kafka configured",
			"input_topic", c.Config.Kafka.InputTopic,
			"output_topic", c.Config.Kafka.OutputTopic,
		)
	}

	if c.Config.News.Enabled() {
		client, err := news.NewClient(c.Config.News)
		if err != nil {
			c.Log.Fatalf("failed to create news client: %v", err)
		}
		c.Adapters.News = client
	}
}

// ========================================
// Phase 6: Services
// ========================================

// MustInitServices wires the article scoring pipeline
func (c *Container) MustInitServices() {
	var (
		fingerprints sentiment.FingerprintStore
		publisher    sentimentsvc.ScoredPublisher
	)
	if c.Repos.Fingerprints != nil {
		fingerprints = c.Repos.Fingerprints
	}
	if c.Adapters.Publisher != nil {
		publisher = c.Adapters.Publisher
	}

	c.Services.ArticleScorer = sentimentsvc.NewArticleScorer(
		c.Services.Engine,
		c.articleRepository(),
		fingerprints,
		publisher,
		sentimentsvc.ArticleScorerConfig{
			ServiceName:    c.Config.App.Name,
			FingerprintTTL: c.Config.Redis.FingerprintTTL,
		},
		c.Log,
	)
}

// ========================================
// Phase 7: Application
// ========================================

// MustInitApplication builds the HTTP server
func (c *Container) MustInitApplication() {
	checks := map[string]health.Checker{
		"engine": health.CheckFunc(func(ctx context.Context) error {
			if !c.Services.Engine.Ready() {
				return errors.ErrNotInitialized
			}
			return nil
		}),
	}
	if c.CH != nil {
		checks["clickhouse"] = c.CH
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}

	c.Application.HealthHandler = health.New(c.Log, c.Config.App.Name, c.Config.App.Version, checks)

	// Scheduler is created here so the API can report worker health
	c.Background.WorkerScheduler = workers.NewScheduler()

	var articles api.ArticleReader
	if c.Repos.Articles != nil {
		articles = c.Repos.Articles
	}

	c.Application.HTTPServer = api.NewServer(
		api.ServerConfig{
			Port:        c.Config.App.HTTPPort,
			ServiceName: c.Config.App.Name,
			Version:     c.Config.App.Version,
		},
		c.Application.HealthHandler,
		api.NewSentimentHandler(c.Services.Engine, articles, c.Background.WorkerScheduler, c.Log),
		c.Log,
	)
}

// ========================================
// Phase 8: Background
// ========================================

// MustInitBackground registers workers and the raw article consumer
func (c *Container) MustInitBackground() {
	if c.Adapters.News != nil {
		var locker sentimentworkers.Locker
		if c.Redis != nil {
			locker = c.Redis
		}
		c.Background.WorkerScheduler.RegisterWorker(sentimentworkers.NewNewsScorer(
			c.Adapters.News,
			c.Services.ArticleScorer,
			locker,
			c.Config.Workers.NewsScorerBatch,
			c.Config.Workers.NewsScorerLockTTL,
			c.Config.Workers.NewsScorerInterval,
			c.Config.Workers.NewsScorerEnabled,
		))
	}

	if c.Adapters.NewsConsumer != nil {
		c.Background.NewsConsumerSvc = consumers.NewNewsConsumer(c.Adapters.NewsConsumer, c.Services.ArticleScorer, c.Log)
	}
}

func (c *Container) articleRepository() sentiment.Repository {
	if c.Repos.Articles == nil {
		return nil
	}
	return c.Repos.Articles
}

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}
