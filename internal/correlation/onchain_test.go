package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pump-monitor/internal/models"
)

func transfer(sender, receiver string, amount float64, ts int64) models.Transfer {
	return models.Transfer{Sender: sender, Receiver: receiver, Amount: amount, Timestamp: ts}
}

func TestOnchainAnalyzer_Totals(t *testing.T) {
	analyzer := NewOnchainAnalyzer(OnchainAnalyzerConfig{})

	transfers := []models.Transfer{
		transfer("a", "b", 100, 3600),
		transfer("a", "c", 200, 3700),
		transfer("b", "c", 50, 7200),
		{Malformed: true},
	}

	summary := analyzer.Analyze(transfers)

	assert.Equal(t, 3, summary.TransferCount)
	assert.Equal(t, 350.0, summary.TotalVolume)
	assert.Equal(t, 2, summary.UniqueSenders)
	assert.Equal(t, 2, summary.UniqueReceivers)
	assert.Empty(t, summary.Anomalies)
}

func TestOnchainAnalyzer_UnknownExcludedFromParticipants(t *testing.T) {
	analyzer := NewOnchainAnalyzer(OnchainAnalyzerConfig{})

	transfers := []models.Transfer{
		transfer(models.UnknownAddress, "b", 10, 0),
		transfer("a", models.UnknownAddress, 10, 0),
	}

	summary := analyzer.Analyze(transfers)

	assert.Equal(t, 2, summary.TransferCount)
	assert.Equal(t, 1, summary.UniqueSenders)
	assert.Equal(t, 1, summary.UniqueReceivers)
}

func TestOnchainAnalyzer_LargeTransferAnomaly(t *testing.T) {
	analyzer := NewOnchainAnalyzer(OnchainAnalyzerConfig{LargeTransferAmount: 1000})

	transfers := []models.Transfer{
		transfer("a", "b", 999, 0),
		transfer("whale", "exchange", 5000, 60),
	}

	summary := analyzer.Analyze(transfers)

	require.Len(t, summary.Anomalies, 1)
	anomaly := summary.Anomalies[0]
	assert.Equal(t, "large_transfer", anomaly.Type)
	assert.Equal(t, "whale", anomaly.Sender)
	assert.Equal(t, 5000.0, anomaly.Amount)
}

func TestOnchainAnalyzer_VolumeSpikeAnomalies(t *testing.T) {
	analyzer := NewOnchainAnalyzer(OnchainAnalyzerConfig{SpikeFactor: 3.0})

	// Hour 0: 100, hour 1: 400 (4x, spike), hour 2: 100, hour 3: 350 (3.5x, spike).
	transfers := []models.Transfer{
		transfer("a", "b", 100, 0),
		transfer("a", "b", 400, 3600),
		transfer("a", "b", 100, 7200),
		transfer("a", "b", 350, 10800),
	}

	summary := analyzer.Analyze(transfers)

	require.Len(t, summary.Anomalies, 2)
	first := summary.Anomalies[0]
	assert.Equal(t, "volume_spike", first.Type)
	assert.Equal(t, int64(1), first.Hour)
	assert.Equal(t, 4.0, first.IncreaseFactor)

	second := summary.Anomalies[1]
	assert.Equal(t, int64(3), second.Hour)
	assert.InDelta(t, 3.5, second.IncreaseFactor, 1e-9)
}

func TestOnchainAnalyzer_Empty(t *testing.T) {
	analyzer := NewOnchainAnalyzer(OnchainAnalyzerConfig{})

	summary := analyzer.Analyze(nil)

	assert.Zero(t, summary.TransferCount)
	assert.Zero(t, summary.TotalVolume)
	assert.Empty(t, summary.Anomalies)
}
