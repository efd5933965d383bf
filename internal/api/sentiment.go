package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/workers"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

// MaxRequestBytes caps the body of an analysis request
const MaxRequestBytes = 1 << 20

const (
	defaultArticleLimit = 50
	maxArticleLimit     = 500
)

// Analyzer is the engine surface the API needs
type Analyzer interface {
	AnalyzeSentiment(text string) *sentiment.Result
	GetServiceStats() sentiment.ServiceStats
}

// ArticleReader serves stored verdicts. Optional.
type ArticleReader interface {
	GetLatest(ctx context.Context, limit int) ([]sentiment.ScoredArticle, error)
	GetBySentiment(ctx context.Context, class sentiment.Class, since time.Time, limit int) ([]sentiment.ScoredArticle, error)
	SummarizeSources(ctx context.Context, since time.Time) ([]sentiment.SourceSummary, error)
}

// WorkerHealthProvider reports background worker runs. Optional.
type WorkerHealthProvider interface {
	Health() map[string]workers.WorkerHealth
}

// AnalyzeRequest is the body of POST /v1/sentiment
type AnalyzeRequest struct {
	Text *string `json:"text"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error"`
}

// SentimentHandler serves the analysis endpoints
type SentimentHandler struct {
	engine   Analyzer
	articles ArticleReader
	workers  WorkerHealthProvider
	log      *logger.Logger
	now      func() time.Time
}

// NewSentimentHandler creates the handler. articles and workers may be nil.
func NewSentimentHandler(engine Analyzer, articles ArticleReader, workers WorkerHealthProvider, log *logger.Logger) *SentimentHandler {
	if log == nil {
		log = logger.Get()
	}
	return &SentimentHandler{
		engine:   engine,
		articles: articles,
		workers:  workers,
		log:      log.With("component", "sentiment_api"),
		now:      time.Now,
	}
}

// Register mounts the /v1 routes
func (h *SentimentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/sentiment", h.HandleAnalyze)
	mux.HandleFunc("GET /v1/sentiment/stats", h.HandleStats)
	mux.HandleFunc("GET /v1/articles", h.HandleArticles)
	mux.HandleFunc("GET /v1/sources", h.HandleSources)
	mux.HandleFunc("GET /v1/workers", h.HandleWorkers)
}

// HandleAnalyze scores {"text": "..."}. An empty string is a valid input and
// yields the neutral verdict; a missing body or field is a 400.
func (h *SentimentHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxRequestBytes)

	var req AnalyzeRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body exceeds 1 MiB")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, "invalid JSON body")
		}
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, `missing "text" field`)
		return
	}

	result := h.engine.AnalyzeSentiment(*req.Text)
	writeJSON(w, http.StatusOK, result)
}

func (h *SentimentHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.GetServiceStats())
}

// HandleArticles lists stored verdicts, newest first. Optional query
// parameters: limit, sentiment, since (RFC 3339).
func (h *SentimentHandler) HandleArticles(w http.ResponseWriter, r *http.Request) {
	if h.articles == nil {
		writeError(w, http.StatusServiceUnavailable, "article storage is not configured")
		return
	}

	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var articles []sentiment.ScoredArticle
	if raw := q.Get("sentiment"); raw != "" {
		class := sentiment.Class(strings.ToLower(raw))
		if !class.Valid() {
			writeError(w, http.StatusBadRequest, "sentiment must be bullish, bearish or neutral")
			return
		}
		since, err := h.parseSince(q.Get("since"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		articles, err = h.articles.GetBySentiment(r.Context(), class, since, limit)
		if err != nil {
			h.fail(w, "get articles by sentiment", err)
			return
		}
	} else {
		articles, err = h.articles.GetLatest(r.Context(), limit)
		if err != nil {
			h.fail(w, "get latest articles", err)
			return
		}
	}

	if articles == nil {
		articles = []sentiment.ScoredArticle{}
	}
	writeJSON(w, http.StatusOK, articles)
}

// HandleSources aggregates verdicts per source since ?since (default 24h ago)
func (h *SentimentHandler) HandleSources(w http.ResponseWriter, r *http.Request) {
	if h.articles == nil {
		writeError(w, http.StatusServiceUnavailable, "article storage is not configured")
		return
	}

	since, err := h.parseSince(r.URL.Query().Get("since"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := h.articles.SummarizeSources(r.Context(), since)
	if err != nil {
		h.fail(w, "summarize sources", err)
		return
	}
	if summaries == nil {
		summaries = []sentiment.SourceSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *SentimentHandler) HandleWorkers(w http.ResponseWriter, r *http.Request) {
	if h.workers == nil {
		writeJSON(w, http.StatusOK, map[string]workers.WorkerHealth{})
		return
	}
	writeJSON(w, http.StatusOK, h.workers.Health())
}

func (h *SentimentHandler) parseSince(raw string) (time.Time, error) {
	if raw == "" {
		return h.now().Add(-24 * time.Hour), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.NewValidationError("since", "must be an RFC 3339 timestamp", raw)
	}
	return t, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultArticleLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.NewValidationError("limit", "must be a positive integer", raw)
	}
	if n > maxArticleLimit {
		n = maxArticleLimit
	}
	return n, nil
}

func (h *SentimentHandler) fail(w http.ResponseWriter, op string, err error) {
	h.log.Errorw("Request failed", "operation", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
