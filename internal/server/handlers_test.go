package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pump-monitor/internal/models"
	"solana-pump-monitor/internal/pipeline"
)

// wrappedSolMint is a well-formed 32-byte base58 address.
const wrappedSolMint = "So11111111111111111111111111111111111111112"

type fakeCache struct {
	findings []*models.Finding
	err      error
	pingErr  error
}

func (f *fakeCache) PushRecent(context.Context, *models.Finding) error     { return nil }
func (f *fakeCache) PublishFinding(context.Context, *models.Finding) error { return nil }
func (f *fakeCache) PublishAlert(context.Context, string, string) error    { return nil }
func (f *fakeCache) Ping(context.Context) error                            { return f.pingErr }
func (f *fakeCache) Close() error                                          { return nil }

func (f *fakeCache) RecentFindings(_ context.Context, limit int64) ([]*models.Finding, error) {
	if f.err != nil {
		return nil, f.err
	}
	if int64(len(f.findings)) > limit {
		return f.findings[:limit], nil
	}
	return f.findings, nil
}

type fakeArtifacts struct {
	reports map[string]string
}

func (f *fakeArtifacts) SaveSnapshot(string, *models.TokenData, *models.Finding) (string, error) {
	return "", nil
}
func (f *fakeArtifacts) SaveReport(string, string) (string, error) { return "", nil }
func (f *fakeArtifacts) ReadReport(addr string) (string, error) {
	if r, ok := f.reports[addr]; ok {
		return r, nil
	}
	return "", errors.New("no such report")
}

type fakeAnalyzer struct {
	result *pipeline.Result
	err    error
}

func (f *fakeAnalyzer) AnalyzeToken(context.Context, string) (*pipeline.Result, error) {
	return f.result, f.err
}

func newTestEcho(h *Handlers, cfg ServerConfig) *echo.Echo {
	e := echo.New()
	RegisterRoutes(e, h, cfg)
	return e
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := newTestEcho(&Handlers{Cache: &fakeCache{}, Logger: logrus.New()}, ServerConfig{})

	rec := doRequest(e, http.MethodGet, "/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.Deps["redis"])
}

func TestHealth_UnreachableDependency(t *testing.T) {
	e := newTestEcho(&Handlers{
		Cache:  &fakeCache{pingErr: errors.New("down")},
		Logger: logrus.New(),
	}, ServerConfig{})

	rec := doRequest(e, http.MethodGet, "/v1/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.False(t, resp.Deps["redis"])
}

func TestRecentFindings(t *testing.T) {
	cache := &fakeCache{findings: []*models.Finding{
		{HeuristicResult: models.HeuristicResult{TokenAddress: "tokenA", Confidence: 0.8}},
		{HeuristicResult: models.HeuristicResult{TokenAddress: "tokenB", Confidence: 0.2}},
	}}
	e := newTestEcho(&Handlers{Cache: cache, Logger: logrus.New()}, ServerConfig{})

	rec := doRequest(e, http.MethodGet, "/v1/findings/recent?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []models.Finding `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "tokenA", resp.Items[0].TokenAddress)
}

func TestRecentFindings_LimitValidation(t *testing.T) {
	e := newTestEcho(&Handlers{Cache: &fakeCache{}, Logger: logrus.New()}, ServerConfig{})

	for _, target := range []string{
		"/v1/findings/recent?limit=abc",
		"/v1/findings/recent?limit=0",
		"/v1/findings/recent?limit=101",
	} {
		rec := doRequest(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestReport(t *testing.T) {
	artifacts := &fakeArtifacts{reports: map[string]string{
		wrappedSolMint: "PUMP AND DUMP ANALYSIS REPORT",
	}}
	e := newTestEcho(&Handlers{Artifacts: artifacts, Logger: logrus.New()}, ServerConfig{})

	rec := doRequest(e, http.MethodGet, "/v1/reports/"+wrappedSolMint, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ANALYSIS REPORT")
}

func TestReport_InvalidAddress(t *testing.T) {
	e := newTestEcho(&Handlers{Artifacts: &fakeArtifacts{}, Logger: logrus.New()}, ServerConfig{})

	// Contains 0, O and l, which are outside the base58 alphabet.
	rec := doRequest(e, http.MethodGet, "/v1/reports/not-a-valid-0Ol-address", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport_NotFound(t *testing.T) {
	e := newTestEcho(&Handlers{Artifacts: &fakeArtifacts{}, Logger: logrus.New()}, ServerConfig{})

	rec := doRequest(e, http.MethodGet, "/v1/reports/"+wrappedSolMint, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyze(t *testing.T) {
	analyzer := &fakeAnalyzer{result: &pipeline.Result{
		Finding: &models.Finding{
			HeuristicResult: models.HeuristicResult{
				TokenAddress: wrappedSolMint,
				IsPumpDump:   true,
				Confidence:   0.8,
			},
		},
		Report: "PUMP AND DUMP ANALYSIS REPORT",
	}}
	e := newTestEcho(&Handlers{Analyzer: analyzer, Logger: logrus.New()}, ServerConfig{})

	body := fmt.Sprintf(`{"token_address": %q}`, wrappedSolMint)
	rec := doRequest(e, http.MethodPost, "/v1/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Finding)
	assert.True(t, resp.Finding.IsPumpDump)
	assert.InDelta(t, 0.8, resp.Finding.Confidence, 1e-9)
	assert.Contains(t, resp.Report, "ANALYSIS REPORT")
}

func TestAnalyze_InvalidAddress(t *testing.T) {
	e := newTestEcho(&Handlers{Analyzer: &fakeAnalyzer{}, Logger: logrus.New()}, ServerConfig{})

	rec := doRequest(e, http.MethodPost, "/v1/analyze", `{"token_address": "short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_NoData(t *testing.T) {
	analyzer := &fakeAnalyzer{err: fmt.Errorf("%w: %s", pipeline.ErrNoData, wrappedSolMint)}
	e := newTestEcho(&Handlers{Analyzer: analyzer, Logger: logrus.New()}, ServerConfig{})

	body := fmt.Sprintf(`{"token_address": %q}`, wrappedSolMint)
	rec := doRequest(e, http.MethodPost, "/v1/analyze", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyze_NotConfigured(t *testing.T) {
	e := newTestEcho(&Handlers{Logger: logrus.New()}, ServerConfig{})

	body := fmt.Sprintf(`{"token_address": %q}`, wrappedSolMint)
	rec := doRequest(e, http.MethodPost, "/v1/analyze", body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFlags_InvalidKeyRejectedBeforeStore(t *testing.T) {
	// A malformed key fails validation before the store is touched, so a
	// nil store is safe here.
	e := newTestEcho(&Handlers{Logger: logrus.New()}, ServerConfig{})

	rec := doRequest(e, http.MethodGet, "/v1/flags/bad%20key", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	e := newTestEcho(&Handlers{Cache: &fakeCache{}, Logger: logrus.New()}, ServerConfig{APIKey: "secret"})

	rec := doRequest(e, http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-API-Key", "secret")
	authed := httptest.NewRecorder()
	e.ServeHTTP(authed, req)
	assert.Equal(t, http.StatusOK, authed.Code)
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEcho(&Handlers{Logger: logrus.New()}, ServerConfig{})

	rec := doRequest(e, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestValidTokenAddress(t *testing.T) {
	assert.True(t, validTokenAddress(wrappedSolMint))
	assert.False(t, validTokenAddress(""))
	assert.False(t, validTokenAddress("abc"))
	// Valid base58 but wrong payload length.
	assert.False(t, validTokenAddress(strings.Repeat("2", 50)))
}
