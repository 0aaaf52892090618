package correlation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pump-monitor/internal/models"
)

func hotSocial() models.SocialSummary {
	return models.SocialSummary{
		AveragePumpScore: 0.8,
		HighSignalPosts:  4,
		HighSignalSample: []models.Post{{ID: "1", Text: "100x gem, contract: abc"}},
	}
}

func activeOnchain() models.OnchainSummary {
	return models.OnchainSummary{
		TotalVolume:   5000,
		TransferCount: 40,
		Anomalies: []models.Anomaly{
			{Type: "large_transfer", Amount: 2000},
		},
	}
}

func TestJudge_FallbackFires(t *testing.T) {
	judge := NewJudge(JudgeConfig{})

	findings := judge.Correlate(context.Background(), hotSocial(), activeOnchain())

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, 0.7, f.Confidence)
	assert.True(t, f.IsPumpDump)
	assert.Contains(t, f.Description, "0.80")
	assert.Equal(t, 0.8, f.TweetIndicators["average_pump_score"])
	assert.Equal(t, 1, f.OnchainIndicators["unusual_patterns"])
}

func TestJudge_NoHighSignalPostsNoFindings(t *testing.T) {
	judge := NewJudge(JudgeConfig{})

	social := hotSocial()
	social.HighSignalPosts = 0

	assert.Nil(t, judge.Correlate(context.Background(), social, activeOnchain()))
}

func TestJudge_NoTransfersNoFindings(t *testing.T) {
	judge := NewJudge(JudgeConfig{})

	onchain := activeOnchain()
	onchain.TransferCount = 0

	assert.Nil(t, judge.Correlate(context.Background(), hotSocial(), onchain))
}

func TestJudge_FallbackNeedsBothConditions(t *testing.T) {
	judge := NewJudge(JudgeConfig{SentimentThreshold: 0.7})

	// Hot chatter but clean chain.
	onchain := activeOnchain()
	onchain.Anomalies = nil
	assert.Empty(t, judge.Correlate(context.Background(), hotSocial(), onchain))

	// Anomalous chain but lukewarm chatter.
	social := hotSocial()
	social.AveragePumpScore = 0.5
	assert.Empty(t, judge.Correlate(context.Background(), social, activeOnchain()))
}

func TestParseFindings(t *testing.T) {
	raw := `{"findings": [{"is_pump_and_dump": true, "confidence": 0.85, "description": "hype plus dumps", "key_indicators": ["volume spike"]}]}`

	findings, err := parseFindings(raw)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.True(t, findings[0].IsPumpDump)
	assert.Equal(t, 0.85, findings[0].Confidence)
	assert.Equal(t, []string{"volume spike"}, findings[0].KeyIndicators)
}

func TestParseFindings_ClampsAndRejectsGarbage(t *testing.T) {
	findings, err := parseFindings(`{"findings": [{"confidence": 2.5}]}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, findings[0].Confidence)

	_, err = parseFindings("no structured data here")
	assert.Error(t, err)
}

func TestBuildCorrelationPrompt_BoundedSamples(t *testing.T) {
	social := hotSocial()
	for i := 0; i < 10; i++ {
		social.HighSignalSample = append(social.HighSignalSample, models.Post{ID: "extra"})
		social.AddressSample = append(social.AddressSample, "addr")
	}
	onchain := activeOnchain()
	for i := 0; i < 10; i++ {
		onchain.Anomalies = append(onchain.Anomalies, models.Anomaly{Type: "large_transfer"})
	}

	prompt, err := buildCorrelationPrompt(social, onchain)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Unusual patterns detected: 11")
	assert.Contains(t, prompt, `"findings"`)
}
