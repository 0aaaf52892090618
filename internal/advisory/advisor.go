package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"solana-pump-monitor/internal/models"
)

// AdvisorConfig holds configuration for the advisory LLM client.
type AdvisorConfig struct {
	// OpenRouter / LLM settings.
	OpenRouterAPIKey string
	// Model name as understood by OpenRouter, e.g. "openai/gpt-4o-mini".
	Model string

	// Timeout bounds a single review call.
	Timeout time.Duration

	Logger *logrus.Logger
}

// Advisor asks an external LLM for a second opinion on a token's transfer
// activity. Its verdict is advisory input to the merge step, never a source
// of truth: a failed or malformed response degrades to the heuristic result.
type Advisor struct {
	llm     llms.Model
	model   string
	timeout time.Duration
	logger  *logrus.Logger
}

// NewAdvisor creates an Advisor backed by OpenRouter (OpenAI-compatible API).
func NewAdvisor(cfg AdvisorConfig) (*Advisor, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if cfg.Model == "" {
		cfg.Model = "openai/gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}

	llm, err := openai.New(
		openai.WithToken(cfg.OpenRouterAPIKey),
		openai.WithBaseURL("https://openrouter.ai/api/v1"),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenRouter LLM: %w", err)
	}

	cfg.Logger.WithField("model", cfg.Model).Info("initialized advisory client")

	return &Advisor{
		llm:     llm,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}, nil
}

// Review sends a bounded summary of the token data and the heuristic result
// to the LLM and parses its verdict. The verdict's confidence is clamped to
// [0, 1]; anything unparseable is an error for the caller to degrade on.
func (a *Advisor) Review(ctx context.Context, data *models.TokenData, heuristic models.HeuristicResult, posts []models.Post) (*models.AdvisoryVerdict, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := buildReviewPrompt(data, heuristic, posts)

	resp, err := llms.GenerateFromSinglePrompt(
		ctx,
		a.llm,
		prompt,
		llms.WithMaxTokens(1024),
	)
	if err != nil {
		return nil, fmt.Errorf("advisory review failed: %w", err)
	}

	verdict, err := parseVerdict(resp)
	if err != nil {
		a.logger.WithError(err).WithField("token", heuristic.TokenAddress).
			Warn("Advisory response could not be parsed")
		return nil, err
	}

	a.logger.WithFields(logrus.Fields{
		"token":      heuristic.TokenAddress,
		"confidence": verdict.Confidence,
		"pump_dump":  verdict.IsPumpDump,
	}).Debug("Advisory verdict received")
	return verdict, nil
}

// parseVerdict strips code fences from the raw LLM output and unmarshals the
// structured verdict.
func parseVerdict(raw string) (*models.AdvisoryVerdict, error) {
	cleaned := sanitizeJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty advisory response")
	}

	var verdict models.AdvisoryVerdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return nil, fmt.Errorf("failed to parse advisory verdict: %w", err)
	}

	if verdict.Confidence < 0 {
		verdict.Confidence = 0
	}
	if verdict.Confidence > 1 {
		verdict.Confidence = 1
	}
	return &verdict, nil
}

// sanitizeJSON strips ``` blocks and surrounding chatter from LLM output,
// keeping the outermost JSON object.
func sanitizeJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
		if strings.HasPrefix(strings.ToLower(s), "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Models sometimes preface the object with a sentence. Keep from the
	// first brace to the last.
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}
