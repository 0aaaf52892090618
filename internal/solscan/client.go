package solscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"solana-pump-monitor/internal/constants"
	"solana-pump-monitor/internal/models"
)

// ErrNoAPIKey is returned when a fetch is attempted without a configured key.
var ErrNoAPIKey = fmt.Errorf("solscan API key not configured")

// Page sizes accepted by the v2 endpoints. Anything else falls back to the
// default instead of erroring server-side.
var (
	transferPageSizes = []int{10, 20, 30, 40, 60, 100}
	holderPageSizes   = []int{10, 20, 30, 40}
)

const defaultPageSize = 20

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("solscan http %d", e.StatusCode)
	}
	return fmt.Sprintf("solscan http %d: %s", e.StatusCode, b)
}

type ClientConfig struct {
	APIKey  string
	BaseURL string

	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// RequestsPerSecond paces calls so paging through a large transfer
	// history does not trip the provider's rate limit. Defaults to 4.
	RequestsPerSecond float64

	Logger *logrus.Logger
}

// Client talks to the Solscan Pro v2 API with retry and rate-limit backoff.
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
		baseURL = "https://pro-api.solscan.io/v2.0"
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
		cfg.RequestsPerSecond = 4
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

// get performs one API call with retries. Network errors, 429 and 5xx are
// retried with exponential backoff; other HTTP errors surface immediately.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	u := c.baseURL + endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryBackoff * time.Duration(1<<(attempt-1))
			c.logger.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"attempt":  attempt,
				"backoff":  backoff.String(),
			}).Warn("Retrying solscan request")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("token", c.apiKey)

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

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to decode solscan response: %w", err)
		}
		return env.Data, nil
	}
	return nil, fmt.Errorf("solscan request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// TokenMeta fetches token metadata.
func (c *Client) TokenMeta(ctx context.Context, tokenAddress string) (*models.TokenMeta, error) {
	params := url.Values{}
	params.Set("address", tokenAddress)

	data, err := c.get(ctx, "/token/meta", params)
	if err != nil {
		return nil, err
	}

	var raw rawMeta
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse token meta: %w", err)
	}
	return normalizeMeta(raw), nil
}

// TokenTransfers fetches one page of transfers, normalized.
func (c *Client) TokenTransfers(ctx context.Context, tokenAddress string, page, pageSize int) ([]models.Transfer, error) {
	params := url.Values{}
	params.Set("address", tokenAddress)
	params.Set("page", strconv.Itoa(maxInt(page, 1)))
	params.Set("page_size", strconv.Itoa(clampPageSize(pageSize, transferPageSizes)))

	data, err := c.get(ctx, "/token/transfer", params)
	if err != nil {
		return nil, err
	}

	var raws []rawTransfer
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse transfers: %w", err)
	}
	return normalizeTransfers(raws), nil
}

// TokenHolders fetches one page of holders. The endpoint has returned both a
// wrapped items object and a bare array; both are accepted.
func (c *Client) TokenHolders(ctx context.Context, tokenAddress string, page, pageSize int) ([]models.Holder, error) {
	params := url.Values{}
	params.Set("address", tokenAddress)
	params.Set("page", strconv.Itoa(maxInt(page, 1)))
	params.Set("page_size", strconv.Itoa(clampPageSize(pageSize, holderPageSizes)))

	data, err := c.get(ctx, "/token/holders", params)
	if err != nil {
		return nil, err
	}

	var page1 holderPage
	if err := json.Unmarshal(data, &page1); err == nil && page1.Items != nil {
		return normalizeHolders(page1.Items), nil
	}
	var raws []rawHolder
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse holders: %w", err)
	}
	return normalizeHolders(raws), nil
}

// DefiActivities fetches one page of DeFi activity, newest first.
func (c *Client) DefiActivities(ctx context.Context, tokenAddress string, page, pageSize int) ([]models.DefiActivity, error) {
	params := url.Values{}
	params.Set("address", tokenAddress)
	params.Set("page", strconv.Itoa(maxInt(page, 1)))
	params.Set("page_size", strconv.Itoa(clampPageSize(pageSize, transferPageSizes)))
	params.Set("sort_by", "block_time")
	params.Set("sort_order", "desc")

	data, err := c.get(ctx, "/token/defi/activities", params)
	if err != nil {
		return nil, err
	}

	var raws []rawActivity
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse defi activities: %w", err)
	}
	return normalizeActivities(raws), nil
}

// FetchTokenData assembles the full per-token snapshot: the paged transfer
// batch plus metadata, first-page holders and first-page DeFi activity.
// Transfer paging stops on a short page or at the fetch cap. Enrichment
// failures are logged and leave their field empty; only a transfer fetch
// error is fatal because the batch is what the heuristics score.
func (c *Client) FetchTokenData(ctx context.Context, tokenAddress string) (*models.TokenData, error) {
	data := &models.TokenData{TokenAddress: tokenAddress}

	const pageSize = 100
	for page := 1; ; page++ {
		batch, err := c.TokenTransfers(ctx, tokenAddress, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch transfers for %s: %w", tokenAddress, err)
		}
		data.Transfers = append(data.Transfers, batch...)
		if len(batch) < pageSize || len(data.Transfers) >= constants.MaxTransfersFetched {
			break
		}
	}

	if meta, err := c.TokenMeta(ctx, tokenAddress); err != nil {
		c.logger.WithError(err).WithField("token", tokenAddress).Warn("Failed to fetch token metadata")
	} else {
		data.Metadata = meta
	}

	if holders, err := c.TokenHolders(ctx, tokenAddress, 1, defaultPageSize); err != nil {
		c.logger.WithError(err).WithField("token", tokenAddress).Warn("Failed to fetch token holders")
	} else {
		data.Holders = holders
	}

	if activities, err := c.DefiActivities(ctx, tokenAddress, 1, defaultPageSize); err != nil {
		c.logger.WithError(err).WithField("token", tokenAddress).Warn("Failed to fetch defi activities")
	} else {
		data.DefiActivities = activities
	}

	if n := len(data.Transfers); n > constants.RawSampleSize {
		data.RawSample = data.Transfers[:constants.RawSampleSize]
	} else {
		data.RawSample = data.Transfers
	}

	c.logger.WithFields(logrus.Fields{
		"token":     tokenAddress,
		"transfers": len(data.Transfers),
		"holders":   len(data.Holders),
	}).Info("Fetched token data")
	return data, nil
}

func clampPageSize(size int, allowed []int) int {
	for _, a := range allowed {
		if size == a {
			return size
		}
	}
	return defaultPageSize
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
