package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"solana-pump-monitor/internal/flags"
	"solana-pump-monitor/internal/pipeline"
	"solana-pump-monitor/internal/storage"
)

// Analyzer runs the on-demand analysis flow for one token.
type Analyzer interface {
	AnalyzeToken(ctx context.Context, tokenAddress string) (*pipeline.Result, error)
}

// Handlers contains all dependencies for API endpoint handlers.
type Handlers struct {
	Cache     storage.FindingCache
	Store     storage.FindingStore
	Artifacts storage.ArtifactStore
	Flags     *flags.Store
	Analyzer  Analyzer
	DevMode   bool
	Logger    *logrus.Logger
}

func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// validTokenAddress checks that the path parameter is a well-formed Solana
// address: base58 text decoding to exactly 32 bytes.
func validTokenAddress(addr string) bool {
	decoded, err := base58.Decode(addr)
	return err == nil && len(decoded) == 32
}

// Health reports liveness plus the reachability of each storage dependency.
func (h *Handlers) Health(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]bool)
	ok := true
	if h.Cache != nil {
		deps["redis"] = h.Cache.Ping(ctx) == nil
		ok = ok && deps["redis"]
	}
	if h.Store != nil {
		deps["clickhouse"] = h.Store.Ping(ctx) == nil
		ok = ok && deps["clickhouse"]
	}

	code := http.StatusOK
	if !ok {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, HealthResponse{OK: ok, Deps: deps})
}

// RecentFindings returns the most recent findings with optional limit
// parameter (default 100, range 1-100).
func (h *Handlers) RecentFindings(c echo.Context) error {
	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 100 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.RecentFindings(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get findings", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Report returns the stored plain-text report for a token.
func (h *Handlers) Report(c echo.Context) error {
	addr := strings.TrimSpace(c.Param("address"))
	if !validTokenAddress(addr) {
		return h.err(c, http.StatusBadRequest, "invalid token address", map[string]any{"address": "must be base58"})
	}

	report, err := h.Artifacts.ReadReport(addr)
	if err != nil {
		return h.err(c, http.StatusNotFound, "report not found", nil)
	}
	return c.String(http.StatusOK, report)
}

// Analyze runs a full analysis for the requested token and returns the
// merged finding.
func (h *Handlers) Analyze(c echo.Context) error {
	if h.Analyzer == nil {
		return h.err(c, http.StatusServiceUnavailable, "analysis is not configured", nil)
	}

	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	req.TokenAddress = strings.TrimSpace(req.TokenAddress)
	if !validTokenAddress(req.TokenAddress) {
		return h.err(c, http.StatusBadRequest, "invalid token address", map[string]any{"token_address": "must be base58"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 90*time.Second)
	defer cancel()

	res, err := h.Analyzer.AnalyzeToken(ctx, req.TokenAddress)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoData) {
			return h.err(c, http.StatusNotFound, "no data found for token", nil)
		}
		h.Logger.WithError(err).WithField("token", req.TokenAddress).Error("Analysis failed")
		return h.err(c, http.StatusInternalServerError, "analysis failed", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, AnalyzeResponse{Finding: res.Finding, Report: res.Report})
}

// FlagsUpsert creates or updates a runtime toggle.
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates an existing runtime toggle by key.
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a runtime toggle; 404 if it was never set.
func (h *Handlers) FlagsGet(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns every runtime toggle.
func (h *Handlers) FlagsList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a runtime toggle; deleting an absent key is a no-op.
func (h *Handlers) FlagsDelete(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}
