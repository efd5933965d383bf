package bootstrap

import (
	"context"
	"sync"

	chclient "finsentiment/internal/adapters/clickhouse"
	"finsentiment/internal/adapters/config"
	"finsentiment/internal/adapters/kafka"
	"finsentiment/internal/adapters/news"
	redisclient "finsentiment/internal/adapters/redis"
	"finsentiment/internal/api"
	"finsentiment/internal/api/health"
	"finsentiment/internal/consumers"
	"finsentiment/internal/events"
	chrepo "finsentiment/internal/repository/clickhouse"
	redisrepo "finsentiment/internal/repository/redis"
	sentimentsvc "finsentiment/internal/services/sentiment"
	"finsentiment/internal/workers"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

// Container holds all application dependencies and their lifecycle.
// Components are organized in initialization order; optional backends stay
// nil when their config section is empty.
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure
	CH    *chclient.Client
	Redis *redisclient.Client

	Repos       *Repositories
	Services    *Services
	Adapters    *Adapters
	Application *Application
	Background  *Background

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups the storage backends
type Repositories struct {
	Articles     *chrepo.BufferedSentimentRepository
	Fingerprints *redisrepo.FingerprintRepository
}

// Services groups the domain services
type Services struct {
	Engine        *sentimentsvc.Engine
	ArticleScorer *sentimentsvc.ArticleScorer
	releaseModel  func()
}

// Adapters groups external adapters
type Adapters struct {
	KafkaProducer *kafka.Producer
	NewsConsumer  *kafka.Consumer
	Publisher     *events.Publisher
	News          *news.Client
}

// Application groups the HTTP surface
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
}

// Background groups background processing
type Background struct {
	WorkerScheduler *workers.Scheduler
	NewsConsumerSvc *consumers.NewsConsumer
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:       &Repositories{},
		Services:    &Services{},
		Adapters:    &Adapters{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes all components in order and panics on the first
// failure (fail fast at startup)
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitEngine()
	c.MustInitAdapters()
	c.MustInitServices()
	c.MustInitApplication()
	c.MustInitBackground()
}

// Start starts the HTTP server, the consumer and the worker scheduler
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if svc := c.Background.NewsConsumerSvc; svc != nil {
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			if err := svc.Start(c.Context); err != nil && c.Context.Err() == nil {
				c.Log.Errorw("News consumer failed", "error", err)
			}
		}()
		c.Log.Info("News consumer started")
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel()
		}
	}()

	if c.Repos.Articles != nil {
		c.Repos.Articles.Start(c.Context)
	}

	if err := c.Background.WorkerScheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	c.Log.Info("All systems operational")
	return nil
}

// Shutdown performs graceful shutdown in reverse dependency order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	c.Cancel()

	c.Lifecycle.Shutdown(ShutdownTargets{
		WG:              c.WG,
		HTTPServer:      c.Application.HTTPServer,
		WorkerScheduler: c.Background.WorkerScheduler,
		NewsConsumer:    c.Adapters.NewsConsumer,
		ArticleBuffer:   c.Repos.Articles,
		KafkaProducer:   c.Adapters.KafkaProducer,
		ReleaseModel:    c.Services.releaseModel,
		CH:              c.CH,
		Redis:           c.Redis,
		ErrorTracker:    c.ErrorTracker,
		Log:             c.Log,
	})
}
