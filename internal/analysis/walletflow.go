package analysis

import (
	"github.com/sirupsen/logrus"

	"solana-pump-monitor/internal/models"
)

// FlowResult is the single-pass fold over a transfer batch. Everything the
// scorer needs is derived from it, so the batch is walked exactly once.
type FlowResult struct {
	Wallets       map[string]*models.WalletStats
	HourlyVolumes map[int64]float64
	TotalRecords  int
	Malformed     int
	Buys          int
	Sells         int
	TotalReceived float64
}

// UniqueWallets is the number of distinct addresses seen on either side.
func (r *FlowResult) UniqueWallets() int {
	return len(r.Wallets)
}

// WalletFlowAnalyzer folds transfer batches into per-wallet stats, hourly
// volume buckets and buy/sell counts.
type WalletFlowAnalyzer struct {
	classifier TradeClassifier
	logger     *logrus.Logger
}

type WalletFlowAnalyzerConfig struct {
	Classifier TradeClassifier
	Logger     *logrus.Logger
}

func NewWalletFlowAnalyzer(cfg WalletFlowAnalyzerConfig) *WalletFlowAnalyzer {
	if cfg.Classifier == nil {
		cfg.Classifier = NewSubstringClassifier()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &WalletFlowAnalyzer{
		classifier: cfg.Classifier,
		logger:     cfg.Logger,
	}
}

// Analyze walks the batch once. Malformed records count toward the raw total
// but contribute nothing to wallet stats, volume buckets or the buy/sell
// split. A missing sender or receiver is folded under the Unknown sentinel,
// so every well-formed transfer updates exactly one sender entry and one
// receiver entry. The result is independent of batch order.
func (a *WalletFlowAnalyzer) Analyze(transfers []models.Transfer) *FlowResult {
	result := &FlowResult{
		Wallets:       make(map[string]*models.WalletStats),
		HourlyVolumes: make(map[int64]float64),
		TotalRecords:  len(transfers),
	}

	for _, t := range transfers {
		if t.Malformed {
			result.Malformed++
			continue
		}

		sender := t.Sender
		if sender == "" {
			sender = models.UnknownAddress
		}
		receiver := t.Receiver
		if receiver == "" {
			receiver = models.UnknownAddress
		}

		senderStats := a.walletStats(result, sender)
		senderStats.Sent += t.Amount
		senderStats.Net = senderStats.Received - senderStats.Sent

		receiverStats := a.walletStats(result, receiver)
		receiverStats.Received += t.Amount
		receiverStats.Net = receiverStats.Received - receiverStats.Sent

		result.TotalReceived += t.Amount

		hour := (t.Timestamp / 3600) * 3600
		result.HourlyVolumes[hour] += t.Amount

		if a.classifier.Classify(t) == SideSell {
			result.Sells++
		} else {
			result.Buys++
		}
	}

	if result.Malformed > 0 {
		a.logger.WithFields(logrus.Fields{
			"total":     result.TotalRecords,
			"malformed": result.Malformed,
		}).Warn("Skipped malformed transfer records")
	}
	return result
}

func (a *WalletFlowAnalyzer) walletStats(r *FlowResult, addr string) *models.WalletStats {
	stats, ok := r.Wallets[addr]
	if !ok {
		stats = &models.WalletStats{}
		r.Wallets[addr] = stats
	}
	return stats
}
