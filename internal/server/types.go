package server

import "solana-pump-monitor/internal/models"

// ErrorResponse is the standard error shape for every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details any    `json:"details,omitempty"` // populated in dev mode only
}

// HealthResponse reports service liveness and dependency reachability.
type HealthResponse struct {
	OK   bool            `json:"ok"`
	Deps map[string]bool `json:"deps,omitempty"`
}

// AnalyzeRequest asks for an on-demand analysis of one token.
type AnalyzeRequest struct {
	TokenAddress string `json:"token_address"`
}

// AnalyzeResponse carries the merged finding plus the rendered text report.
type AnalyzeResponse struct {
	Finding *models.Finding `json:"finding"`
	Report  string          `json:"report"`
}

// FlagUpsertRequest creates or updates a runtime toggle.
type FlagUpsertRequest struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

// FlagUpdateRequest updates an existing runtime toggle.
type FlagUpdateRequest struct {
	Value bool `json:"value"`
}
