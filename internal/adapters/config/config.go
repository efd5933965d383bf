package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"finsentiment/pkg/errors"
)

type Config struct {
	App           AppConfig
	Model         ModelConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	News          NewsConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"finsentiment"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`
}

// ModelConfig describes the sequence classifier used by the primary path.
// An empty Path runs the engine on the rule-based path only.
type ModelConfig struct {
	Path           string  `envconfig:"MODEL_PATH"`
	RuntimeLibrary string  `envconfig:"ONNXRUNTIME_LIB"`
	Required       bool    `envconfig:"MODEL_REQUIRED" default:"false"`
	VocabSize      int     `envconfig:"MODEL_VOCAB_SIZE" default:"10000"`
	MaxSeqLen      int     `envconfig:"MODEL_MAX_SEQ_LEN" default:"128"`
	Accuracy       float64 `envconfig:"MODEL_ACCURACY" default:"0.87"`
	InputName      string  `envconfig:"MODEL_INPUT_NAME" default:"input_ids"`
	OutputName     string  `envconfig:"MODEL_OUTPUT_NAME" default:"probabilities"`
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"sentiment"`

	BatchSize     int           `envconfig:"CLICKHOUSE_BATCH_SIZE" default:"100"`
	FlushInterval time.Duration `envconfig:"CLICKHOUSE_FLUSH_INTERVAL" default:"2s"`
}

func (c ClickHouseConfig) Enabled() bool {
	return c.Host != ""
}

type RedisConfig struct {
	Host           string        `envconfig:"REDIS_HOST"`
	Port           int           `envconfig:"REDIS_PORT" default:"6379"`
	Password       string        `envconfig:"REDIS_PASSWORD"`
	DB             int           `envconfig:"REDIS_DB" default:"0"`
	FingerprintTTL time.Duration `envconfig:"REDIS_FINGERPRINT_TTL" default:"24h"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type KafkaConfig struct {
	Brokers     []string `envconfig:"KAFKA_BROKERS"`
	GroupID     string   `envconfig:"KAFKA_GROUP_ID" default:"finsentiment"`
	InputTopic  string   `envconfig:"KAFKA_INPUT_TOPIC" default:"news.raw"`
	OutputTopic string   `envconfig:"KAFKA_OUTPUT_TOPIC" default:"news.scored"`
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// NewsConfig points at the upstream article feed returning
// {title, summary, url, source, publishedAt} records.
type NewsConfig struct {
	URL               string        `envconfig:"NEWS_URL"`
	APIKey            string        `envconfig:"NEWS_API_KEY"`
	RequestsPerMinute int           `envconfig:"NEWS_REQUESTS_PER_MINUTE" default:"30"`
	Timeout           time.Duration `envconfig:"NEWS_TIMEOUT" default:"30s"`
	Symbols           []string      `envconfig:"NEWS_SYMBOLS"`
}

func (c NewsConfig) Enabled() bool {
	return c.URL != ""
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type WorkerConfig struct {
	NewsScorerInterval time.Duration `envconfig:"WORKER_NEWS_SCORER_INTERVAL" default:"5m"`
	NewsScorerEnabled  bool          `envconfig:"WORKER_NEWS_SCORER_ENABLED" default:"true"`
	NewsScorerBatch    int           `envconfig:"WORKER_NEWS_SCORER_BATCH" default:"50"`
	NewsScorerLockTTL  time.Duration `envconfig:"WORKER_NEWS_SCORER_LOCK_TTL" default:"4m"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values envconfig cannot express as tags
func (c *Config) Validate() error {
	var errs errors.MultiError

	if c.Model.VocabSize <= 0 {
		errs.Add(errors.NewValidationError("MODEL_VOCAB_SIZE", "must be positive", c.Model.VocabSize))
	}
	if c.Model.MaxSeqLen <= 0 {
		errs.Add(errors.NewValidationError("MODEL_MAX_SEQ_LEN", "must be positive", c.Model.MaxSeqLen))
	}
	if c.Model.Required && c.Model.Path == "" {
		errs.Add(errors.NewValidationError("MODEL_PATH", "required when MODEL_REQUIRED is set", c.Model.Path))
	}
	if c.News.Enabled() && c.News.RequestsPerMinute <= 0 {
		errs.Add(errors.NewValidationError("NEWS_REQUESTS_PER_MINUTE", "must be positive", c.News.RequestsPerMinute))
	}

	return errs.ToError()
}
