package correlation

import (
	"sort"

	"github.com/sirupsen/logrus"

	"solana-pump-monitor/internal/models"
)

// OnchainAnalyzerConfig tunes the aggregate anomaly scan.
type OnchainAnalyzerConfig struct {
	// LargeTransferAmount is the single-transfer size flagged as a
	// potential dump.
	LargeTransferAmount float64

	// SpikeFactor is the hour-over-hour volume multiple flagged as a spike.
	SpikeFactor float64

	Logger *logrus.Logger
}

// OnchainAnalyzer folds a cross-token transfer pool into the aggregate
// summary the correlation judge consumes. Unlike the per-token scorer it
// reports every anomaly it sees, not just the first, because the judge
// weighs pattern counts rather than scoring a single token.
type OnchainAnalyzer struct {
	largeTransferAmount float64
	spikeFactor         float64
	logger              *logrus.Logger
}

func NewOnchainAnalyzer(cfg OnchainAnalyzerConfig) *OnchainAnalyzer {
	if cfg.LargeTransferAmount <= 0 {
		cfg.LargeTransferAmount = 1000
	}
	if cfg.SpikeFactor <= 1 {
		cfg.SpikeFactor = 3.0
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &OnchainAnalyzer{
		largeTransferAmount: cfg.LargeTransferAmount,
		spikeFactor:         cfg.SpikeFactor,
		logger:              cfg.Logger,
	}
}

// Analyze computes totals, unique participant counts and the anomaly list.
// Malformed records are skipped entirely; the Unknown sentinel is excluded
// from participant counts since it aggregates an arbitrary number of
// wallets.
func (a *OnchainAnalyzer) Analyze(transfers []models.Transfer) models.OnchainSummary {
	summary := models.OnchainSummary{Anomalies: []models.Anomaly{}}
	if len(transfers) == 0 {
		return summary
	}

	senders := make(map[string]struct{})
	receivers := make(map[string]struct{})
	volumeByHour := make(map[int64]float64)

	for _, t := range transfers {
		if t.Malformed {
			continue
		}
		summary.TransferCount++
		summary.TotalVolume += t.Amount

		if t.Sender != "" && t.Sender != models.UnknownAddress {
			senders[t.Sender] = struct{}{}
		}
		if t.Receiver != "" && t.Receiver != models.UnknownAddress {
			receivers[t.Receiver] = struct{}{}
		}

		volumeByHour[t.Timestamp/3600] += t.Amount

		if t.Amount > a.largeTransferAmount {
			summary.Anomalies = append(summary.Anomalies, models.Anomaly{
				Type:      "large_transfer",
				Sender:    t.Sender,
				Receiver:  t.Receiver,
				Amount:    t.Amount,
				Timestamp: t.Timestamp,
			})
		}
	}

	summary.UniqueSenders = len(senders)
	summary.UniqueReceivers = len(receivers)
	summary.Anomalies = append(summary.Anomalies, a.volumeSpikes(volumeByHour)...)

	a.logger.WithFields(logrus.Fields{
		"transfers": summary.TransferCount,
		"volume":    summary.TotalVolume,
		"anomalies": len(summary.Anomalies),
	}).Debug("On-chain aggregate analysis complete")
	return summary
}

// volumeSpikes flags every hour whose volume exceeds the spike factor times
// the previous hour in the sorted series.
func (a *OnchainAnalyzer) volumeSpikes(volumeByHour map[int64]float64) []models.Anomaly {
	if len(volumeByHour) < 2 {
		return nil
	}
	hours := make([]int64, 0, len(volumeByHour))
	for h := range volumeByHour {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i] < hours[j] })

	var spikes []models.Anomaly
	for i := 1; i < len(hours); i++ {
		prev := volumeByHour[hours[i-1]]
		curr := volumeByHour[hours[i]]
		if prev > 0 && curr/prev > a.spikeFactor {
			spikes = append(spikes, models.Anomaly{
				Type:           "volume_spike",
				Hour:           hours[i],
				CurrentVolume:  curr,
				PreviousVolume: prev,
				IncreaseFactor: curr / prev,
			})
		}
	}
	return spikes
}
