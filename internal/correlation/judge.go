package correlation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"

	"solana-pump-monitor/internal/models"
)

const (
	maxPromptPosts     = 3
	maxPromptAddresses = 5
	maxPromptAnomalies = 3
)

// JudgeConfig tunes the cross-channel correlation pass.
type JudgeConfig struct {
	// LLM is optional. Without it the judge falls back to a fixed
	// coincidence rule.
	LLM llms.Model

	// SentimentThreshold is the average pump score above which the
	// fallback rule considers the social side hot.
	SentimentThreshold float64

	Logger *logrus.Logger
}

// Judge matches aggregate social signals against aggregate on-chain
// anomalies to surface coordination that no single-token pass would see.
type Judge struct {
	llm                llms.Model
	sentimentThreshold float64
	logger             *logrus.Logger
}

func NewJudge(cfg JudgeConfig) *Judge {
	if cfg.SentimentThreshold <= 0 {
		cfg.SentimentThreshold = 0.7
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Judge{
		llm:                cfg.LLM,
		sentimentThreshold: cfg.SentimentThreshold,
		logger:             cfg.Logger,
	}
}

// Correlate produces zero or more correlation findings. Without high-signal
// posts or without on-chain activity there is nothing to correlate. An LLM
// failure degrades to the fallback rule rather than dropping the cycle.
func (j *Judge) Correlate(ctx context.Context, social models.SocialSummary, onchain models.OnchainSummary) []models.CorrelationFinding {
	if social.HighSignalPosts == 0 || onchain.TransferCount == 0 {
		j.logger.Debug("Insufficient data for correlation analysis")
		return nil
	}

	if j.llm != nil {
		findings, err := j.correlateWithLLM(ctx, social, onchain)
		if err == nil {
			return findings
		}
		j.logger.WithError(err).Warn("LLM correlation failed, using fallback rule")
	}
	return j.fallbackRule(social, onchain)
}

// fallbackRule fires on the bare coincidence of hot social chatter and at
// least one on-chain anomaly, at a fixed moderate confidence.
func (j *Judge) fallbackRule(social models.SocialSummary, onchain models.OnchainSummary) []models.CorrelationFinding {
	if social.AveragePumpScore <= j.sentimentThreshold || len(onchain.Anomalies) == 0 {
		return nil
	}

	description := fmt.Sprintf(
		"Potential pump and dump: high pump-scheme indicators in posts (score: %.2f) coinciding with unusual on-chain activity (%d patterns detected)",
		social.AveragePumpScore, len(onchain.Anomalies))
	j.logger.Warn(description)

	return []models.CorrelationFinding{{
		Description: description,
		Confidence:  0.7,
		IsPumpDump:  true,
		TweetIndicators: map[string]any{
			"average_pump_score": social.AveragePumpScore,
			"high_signal_posts":  social.HighSignalPosts,
		},
		OnchainIndicators: map[string]any{
			"unusual_patterns": len(onchain.Anomalies),
			"transfer_count":   onchain.TransferCount,
		},
	}}
}

func (j *Judge) correlateWithLLM(ctx context.Context, social models.SocialSummary, onchain models.OnchainSummary) ([]models.CorrelationFinding, error) {
	prompt, err := buildCorrelationPrompt(social, onchain)
	if err != nil {
		return nil, err
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, j.llm, prompt, llms.WithMaxTokens(800))
	if err != nil {
		return nil, fmt.Errorf("correlation call failed: %w", err)
	}

	findings, err := parseFindings(resp)
	if err != nil {
		return nil, err
	}

	for _, f := range findings {
		entry := j.logger.WithField("confidence", f.Confidence)
		if f.IsPumpDump && f.Confidence > 0.5 {
			entry.Warnf("Correlation detected potential pump and dump: %s", f.Description)
		} else {
			entry.Infof("Correlation finding: %s", f.Description)
		}
	}
	return findings, nil
}

func buildCorrelationPrompt(social models.SocialSummary, onchain models.OnchainSummary) (string, error) {
	postSample := social.HighSignalSample
	if len(postSample) > maxPromptPosts {
		postSample = postSample[:maxPromptPosts]
	}
	addressSample := social.AddressSample
	if len(addressSample) > maxPromptAddresses {
		addressSample = addressSample[:maxPromptAddresses]
	}
	anomalySample := onchain.Anomalies
	if len(anomalySample) > maxPromptAnomalies {
		anomalySample = anomalySample[:maxPromptAnomalies]
	}

	postsJSON, err := json.MarshalIndent(postSample, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode post sample: %w", err)
	}
	anomaliesJSON, err := json.MarshalIndent(anomalySample, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode anomaly sample: %w", err)
	}

	var b strings.Builder
	b.WriteString("Analyze this combined social media and blockchain data to identify potential pump and dump schemes.\n\n")
	fmt.Fprintf(&b, `SOCIAL MEDIA DATA:
- Average pump scheme indicator score: %.2f (0-1 scale, higher is more concerning)
- Posts with high pump scheme indicators: %d
- Unique token addresses extracted: %d
- Sample extracted addresses: %v

Sample high-signal posts:
%s

BLOCKCHAIN DATA:
- Total transaction volume: %.2f
- Number of transfers: %d
- Unique senders: %d
- Unique receivers: %d
- Unusual patterns detected: %d

Sample unusual patterns:
%s

`,
		social.AveragePumpScore, social.HighSignalPosts, social.AddressCount, addressSample,
		string(postsJSON),
		onchain.TotalVolume, onchain.TransferCount, onchain.UniqueSenders,
		onchain.UniqueReceivers, len(onchain.Anomalies),
		string(anomaliesJSON))

	b.WriteString(`Determine if there is evidence of a pump and dump scheme. Consider:
1. High social media hype coinciding with unusual trading patterns
2. Promises of huge returns paired with concentrated selling
3. Urgency in social messages paired with volume spikes

Respond with ONLY a JSON object:
{"findings": [{"is_pump_and_dump": <bool>, "confidence": <float 0-1>, "description": "<string>", "key_indicators": ["<string>", ...]}]}
`)
	return b.String(), nil
}

func parseFindings(raw string) ([]models.CorrelationFinding, error) {
	cleaned := strings.TrimSpace(raw)
	if start := strings.Index(cleaned, "{"); start >= 0 {
		if end := strings.LastIndex(cleaned, "}"); end > start {
			cleaned = cleaned[start : end+1]
		}
	}

	var parsed struct {
		Findings []models.CorrelationFinding `json:"findings"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse correlation findings: %w", err)
	}

	for i := range parsed.Findings {
		if parsed.Findings[i].Confidence < 0 {
			parsed.Findings[i].Confidence = 0
		}
		if parsed.Findings[i].Confidence > 1 {
			parsed.Findings[i].Confidence = 1
		}
	}
	return parsed.Findings, nil
}
