package bootstrap

import (
	"context"
	"sync"
	"time"

	chclient "finsentiment/internal/adapters/clickhouse"
	"finsentiment/internal/adapters/kafka"
	redisclient "finsentiment/internal/adapters/redis"
	"finsentiment/internal/api"
	chrepo "finsentiment/internal/repository/clickhouse"
	"finsentiment/internal/workers"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 60 * time.Second,
	}
}

// ShutdownTargets lists what Shutdown tears down. Nil fields are skipped.
type ShutdownTargets struct {
	WG              *sync.WaitGroup
	HTTPServer      *api.Server
	WorkerScheduler *workers.Scheduler
	NewsConsumer    *kafka.Consumer
	ArticleBuffer   *chrepo.BufferedSentimentRepository
	KafkaProducer   *kafka.Producer
	ReleaseModel    func()
	CH              *chclient.Client
	Redis           *redisclient.Client
	ErrorTracker    errors.Tracker
	Log             *logger.Logger
}

// Shutdown tears components down in this order:
// 1. HTTP server stops accepting requests
// 2. workers finish their current run
// 3. the Kafka consumer is closed to unblock ReadMessage
// 4. goroutines are awaited
// 5. buffered article rows and the producer flush
// 6. the model session is released
// 7. error tracker and logs are flushed
// 8. databases close last, since every step above may still write
func (l *Lifecycle) Shutdown(t ShutdownTargets) {
	log := t.Log
	if log == nil {
		log = logger.Get()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	log.Info("[1/8] Stopping HTTP server...")
	if t.HTTPServer != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 5*time.Second)
		if err := t.HTTPServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		}
		httpCancel()
	}

	log.Info("[2/8] Stopping background workers...")
	if t.WorkerScheduler != nil && t.WorkerScheduler.IsRunning() {
		if err := t.WorkerScheduler.Stop(); err != nil {
			log.Errorw("Workers shutdown failed", "error", err)
		} else {
			log.Info("Workers stopped")
		}
	}

	log.Info("[3/8] Closing Kafka consumer...")
	if t.NewsConsumer != nil {
		if err := t.NewsConsumer.Close(); err != nil {
			log.Errorw("Kafka consumer close failed", "error", err)
		}
	}

	log.Info("[4/8] Waiting for goroutines...")
	if t.WG != nil {
		l.waitForGoroutines(t.WG, 5*time.Second, log)
	}

	log.Info("[5/8] Flushing buffered articles and closing Kafka producer...")
	if t.ArticleBuffer != nil {
		if err := t.ArticleBuffer.Stop(shutdownCtx); err != nil {
			log.Errorw("Article buffer flush failed", "error", err)
		}
	}
	if t.KafkaProducer != nil {
		if err := t.KafkaProducer.Close(); err != nil {
			log.Errorw("Kafka producer close failed", "error", err)
		} else {
			log.Info("Kafka producer closed")
		}
	}

	log.Info("[6/8] Releasing model session...")
	if t.ReleaseModel != nil {
		t.ReleaseModel()
	}

	log.Info("[7/8] Flushing error tracker and logs...")
	l.flushErrorTracker(shutdownCtx, t.ErrorTracker, log)
	_ = logger.Sync()

	log.Info("[8/8] Closing database connections...")
	l.closeDatabases(t.CH, t.Redis, log)

	log.Info("Graceful shutdown complete")
}

// waitForGoroutines waits for all goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("All goroutines finished")
	case <-time.After(timeout):
		log.Warnw("Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Errorw("Error tracker flush failed", "error", err)
	}
}

func (l *Lifecycle) closeDatabases(chClient *chclient.Client, redisClient *redisclient.Client, log *logger.Logger) {
	var errs errors.MultiError

	if chClient != nil {
		if err := chClient.Close(); err != nil {
			errs.Add(errors.Wrap(err, "clickhouse"))
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			errs.Add(errors.Wrap(err, "redis"))
		}
	}

	if err := errs.ToError(); err != nil {
		log.Errorw("Database close errors", "error", err)
	}
}
