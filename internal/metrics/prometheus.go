package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Engine metrics
	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsentiment_analyses_total",
			Help: "Total number of sentiment analyses",
		},
		[]string{"path", "sentiment"}, // path: model|rules
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finsentiment_analysis_duration_seconds",
			Help:    "Sentiment analysis duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"path"},
	)

	InferenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsentiment_inference_failures_total",
			Help: "Model path failures that fell back to the rule-based path",
		},
		[]string{"reason"}, // reason: model_unavailable|empty_input|shape_mismatch|inference|other
	)

	// Pipeline metrics
	Articles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsentiment_articles_total",
			Help: "Total articles handled by the scoring pipeline",
		},
		[]string{"source", "status"}, // status: scored|duplicate|error
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsentiment_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finsentiment_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "finsentiment_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsentiment_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"database", "operation", "status"},
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finsentiment_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"database", "operation"},
	)

	// System metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsentiment_kafka_messages_total",
			Help: "Total Kafka messages produced/consumed",
		},
		[]string{"topic", "direction", "status"}, // direction: produced|consumed
	)

	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsentiment_upstream_requests_total",
			Help: "Total requests sent to the news upstream",
		},
		[]string{"status"}, // status: success|error|rate_limited
	)
)

// Init registers all metrics with Prometheus
func Init() {
	// Engine metrics
	prometheus.MustRegister(Analyses)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(InferenceFailures)

	// Pipeline metrics
	prometheus.MustRegister(Articles)

	// Worker metrics
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	// Database metrics
	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(DBQueryDuration)

	// System metrics
	prometheus.MustRegister(KafkaMessages)
	prometheus.MustRegister(UpstreamRequests)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAnalysis records one engine verdict
func RecordAnalysis(path, sentiment string, duration time.Duration) {
	Analyses.WithLabelValues(path, sentiment).Inc()
	AnalysisDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordInferenceFailure records a model path failure by reason
func RecordInferenceFailure(reason string) {
	InferenceFailures.WithLabelValues(reason).Inc()
}

// RecordArticle records the outcome of scoring one article
func RecordArticle(source, status string) {
	if source == "" {
		source = "unknown"
	}
	Articles.WithLabelValues(source, status).Inc()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordDBQuery records a database query
func RecordDBQuery(database, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	DBQueries.WithLabelValues(database, operation, status).Inc()
	DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}

// RecordKafkaMessage records a produced or consumed message
func RecordKafkaMessage(topic, direction string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	KafkaMessages.WithLabelValues(topic, direction, status).Inc()
}

// RecordUpstreamRequest records a request to the news upstream
func RecordUpstreamRequest(status string) {
	UpstreamRequests.WithLabelValues(status).Inc()
}
