package news

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finsentiment/internal/adapters/config"
	"finsentiment/internal/adapters/ratelimit"
	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/metrics"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

const (
	maxErrorBody    = 512
	maxResponseBody = 8 << 20
)

// Client fetches articles from the upstream news endpoint
type Client struct {
	baseURL    string
	apiKey     string
	symbols    []string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	log        *logger.Logger
}

// NewClient creates a news client limited to cfg.RequestsPerMinute
func NewClient(cfg config.NewsConfig) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, errors.NewValidationError("NEWS_URL", "must be an absolute URL", cfg.URL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		symbols:    cfg.Symbols,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    ratelimit.NewLimiter("news", cfg.RequestsPerMinute),
		log:        logger.Get().With("component", "news_client"),
	}, nil
}

// upstream article record
type apiArticle struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
}

type apiResponse struct {
	Articles []apiArticle `json:"articles"`
}

// FetchLatest returns up to limit recent articles for the configured
// symbols. The upstream may answer with a bare array or {"articles": [...]}.
func (c *Client) FetchLatest(ctx context.Context, limit int) ([]sentiment.Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordUpstreamRequest("rate_limited")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(limit), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create news request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "finsentiment/1.0")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest("error")
		return nil, errors.Wrap(err, "news request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstreamRequest("error")
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.Wrapf(errors.ErrUpstreamStatus, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		metrics.RecordUpstreamRequest("error")
		return nil, errors.Wrap(err, "read news response")
	}
	if len(raw) > maxResponseBody {
		metrics.RecordUpstreamRequest("error")
		return nil, errors.Wrapf(errors.ErrUpstreamStatus, "news response exceeds %d bytes", maxResponseBody)
	}

	items, err := decodeArticles(raw)
	if err != nil {
		metrics.RecordUpstreamRequest("error")
		return nil, err
	}
	metrics.RecordUpstreamRequest("success")

	articles := make([]sentiment.Article, 0, len(items))
	for _, it := range items {
		if limit > 0 && len(articles) == limit {
			break
		}
		if strings.TrimSpace(it.Title) == "" && strings.TrimSpace(it.Summary) == "" {
			continue
		}
		articles = append(articles, sentiment.Article{
			Title:       strings.TrimSpace(it.Title),
			Summary:     strings.TrimSpace(it.Summary),
			URL:         it.URL,
			Source:      it.Source,
			PublishedAt: it.PublishedAt,
		})
	}

	c.log.Debugw("Fetched news", "received", len(items), "kept", len(articles))
	return articles, nil
}

func (c *Client) requestURL(limit int) string {
	q := url.Values{}
	if len(c.symbols) > 0 {
		q.Set("symbols", strings.Join(c.symbols, ","))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return c.baseURL
	}

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + q.Encode()
}

func decodeArticles(raw []byte) ([]apiArticle, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []apiArticle
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, errors.Wrap(err, "decode news array")
		}
		return items, nil
	}

	var resp apiResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, errors.Wrap(err, "decode news response")
	}
	return resp.Articles, nil
}
