package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"solana-pump-monitor/internal/constants"
	"solana-pump-monitor/internal/models"
)

// ErrNoAPIKey is returned when a search is attempted without a configured key.
var ErrNoAPIKey = fmt.Errorf("twitter API key not configured")

const maxQueriesPerSearch = 10

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("twitter http %d", e.StatusCode)
	}
	return fmt.Sprintf("twitter http %d: %s", e.StatusCode, b)
}

type ClientConfig struct {
	APIKey  string
	BaseURL string

	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// RequestsPerSecond paces calls to the search endpoint. Defaults to one
	// request per second, the spacing the provider tolerates without 429s.
	RequestsPerSecond float64

	Logger *logrus.Logger
}

// Client searches posts through the twitterapi.io advanced search endpoint.
type Client struct {
	apiKey  string
	baseURL string

	http         *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	retryBackoff time.Duration
	logger       *logrus.Logger
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.twitterapi.io"
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		baseURL:      baseURL,
		http:         &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       cfg.Logger,
	}
}

type searchResponse struct {
	Tweets []models.Post `json:"tweets"`
}

// SearchRecent runs one search per query and merges the results, skipping
// duplicate post IDs. At most ten queries are issued per call and the merged
// set is capped; a failing query is logged and skipped so one bad keyword
// cannot sink the whole sweep.
func (c *Client) SearchRecent(ctx context.Context, queries []string) ([]models.Post, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if len(queries) > maxQueriesPerSearch {
		queries = queries[:maxQueriesPerSearch]
	}

	seen := make(map[string]struct{})
	var posts []models.Post

	for _, query := range queries {
		if err := c.limiter.Wait(ctx); err != nil {
			return posts, err
		}

		batch, err := c.search(ctx, query)
		if err != nil {
			c.logger.WithError(err).WithField("query", query).Warn("Search query failed")
			continue
		}

		added := 0
		for _, p := range batch {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			posts = append(posts, p)
			added++
		}
		c.logger.WithFields(logrus.Fields{
			"query": query,
			"new":   added,
			"total": len(posts),
		}).Debug("Search query complete")

		if len(posts) >= constants.MaxTweetsPerCycle {
			posts = posts[:constants.MaxTweetsPerCycle]
			c.logger.WithField("cap", constants.MaxTweetsPerCycle).Info("Reached post cap, stopping search")
			break
		}
	}
	return posts, nil
}

// SearchPumpLanguage sweeps the default pump-and-dump query set.
func (c *Client) SearchPumpLanguage(ctx context.Context) ([]models.Post, error) {
	return c.SearchRecent(ctx, constants.DefaultSearchTerms())
}

// SearchToken looks for posts mentioning a specific token address, trying
// the phrasings promoters actually use.
func (c *Client) SearchToken(ctx context.Context, tokenAddress string) ([]models.Post, error) {
	prefix := tokenAddress
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	queries := []string{
		tokenAddress,
		"contract " + prefix,
		"CA: " + prefix,
		"address: " + prefix,
	}
	return c.SearchRecent(ctx, queries)
}

func (c *Client) search(ctx context.Context, query string) ([]models.Post, error) {
	params := url.Values{}
	params.Set("queryType", "Latest")
	params.Set("query", query)
	u := c.baseURL + "/twitter/tweet/advanced_search?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		res, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(res.Body)
		res.Body.Close()

		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			lastErr = &HTTPError{StatusCode: res.StatusCode, Body: body}
			continue
		}
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
		}

		var out searchResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("failed to decode search response: %w", err)
		}
		return out.Tweets, nil
	}
	return nil, fmt.Errorf("search failed after %d attempts: %w", c.maxRetries+1, lastErr)
}
