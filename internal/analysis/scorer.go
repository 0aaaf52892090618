package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"solana-pump-monitor/internal/models"
)

// Thresholds are the tuned cutoffs of the heuristic scorer. All of them are
// overridable; DefaultThresholds matches the values the reason strings and
// tests were calibrated against.
type Thresholds struct {
	// SellRatio is the sells/(buys+sells) fraction above which the batch
	// reads as distribution rather than accumulation.
	SellRatio float64

	// SpikeMultiplier feeds the volume anomaly detector.
	SpikeMultiplier float64

	// DumpRatio is the sent/received multiple above which a wallet is
	// flagged as a potential dumper.
	DumpRatio float64

	// WhaleSupplyFraction is the share of total received volume above which
	// a wallet is flagged as a whale.
	WhaleSupplyFraction float64

	// ConcentrationPercent and ConcentrationCount define the concentration
	// signal: at least ConcentrationCount whales each holding more than
	// ConcentrationPercent of observed volume.
	ConcentrationPercent float64
	ConcentrationCount   int

	// MinTransactions is the batch size below which scoring short-circuits
	// to an insufficient-data verdict.
	MinTransactions int

	// ManyDumpers is the dumper count above which the dumper signal earns
	// its larger contribution.
	ManyDumpers int

	// TopWallets caps the dumper and whale lists carried in the result.
	TopWallets int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SellRatio:            0.7,
		SpikeMultiplier:      3.0,
		DumpRatio:            1.5,
		WhaleSupplyFraction:  0.10,
		ConcentrationPercent: 5.0,
		ConcentrationCount:   3,
		MinTransactions:      10,
		ManyDumpers:          5,
		TopWallets:           5,
	}
}

// Scorer combines wallet-flow stats and volume anomalies into a bounded
// confidence score with human-readable reasons.
type Scorer struct {
	thresholds Thresholds
	flow       *WalletFlowAnalyzer
	volume     *VolumeAnomalyDetector
	logger     *logrus.Logger
}

type ScorerConfig struct {
	Thresholds Thresholds
	Classifier TradeClassifier
	Logger     *logrus.Logger
}

func NewScorer(cfg ScorerConfig) *Scorer {
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Scorer{
		thresholds: cfg.Thresholds,
		flow: NewWalletFlowAnalyzer(WalletFlowAnalyzerConfig{
			Classifier: cfg.Classifier,
			Logger:     cfg.Logger,
		}),
		volume: NewVolumeAnomalyDetector(cfg.Thresholds.SpikeMultiplier),
		logger: cfg.Logger,
	}
}

// Score runs the full heuristic pass over one token's transfer batch.
//
// Confidence is additive over four independent signals. The maximum possible
// sum is below 1.0 with the default table, but the result is clamped anyway
// so retuned contributions cannot escape [0, 1]. A batch smaller than
// MinTransactions (counting malformed records) short-circuits to a low
// fixed confidence instead of scoring on noise.
func (s *Scorer) Score(tokenAddress string, transfers []models.Transfer) models.HeuristicResult {
	flow := s.flow.Analyze(transfers)

	result := models.HeuristicResult{
		TokenAddress: tokenAddress,
		Reasons:      []string{},
		Dumpers:      []models.Dumper{},
		Whales:       []models.Whale{},
		Transactions: models.TransactionSummary{
			Total:         flow.TotalRecords,
			Buys:          flow.Buys,
			Sells:         flow.Sells,
			UniqueWallets: flow.UniqueWallets(),
		},
	}

	if flow.TotalRecords < s.thresholds.MinTransactions {
		result.Confidence = 0.1
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("Insufficient data: only %d transactions found", flow.TotalRecords))
		return result
	}

	confidence := 0.0

	if trades := flow.Buys + flow.Sells; trades > 0 {
		sellRatio := float64(flow.Sells) / float64(trades)
		if sellRatio > s.thresholds.SellRatio {
			confidence += 0.2
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("High sell ratio (%.2f)", sellRatio))
		}
	}

	result.Volume = s.volume.Detect(flow.HourlyVolumes)
	if result.Volume.HasSpike {
		switch {
		case result.Volume.SpikeFactor > 10:
			confidence += 0.3
		case result.Volume.SpikeFactor > 5:
			confidence += 0.2
		default:
			confidence += 0.1
		}
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("Volume spike detected (%.1fx normal)", result.Volume.SpikeFactor))
	}

	dumpers := s.findDumpers(flow)
	if n := len(dumpers); n > 0 {
		if n > s.thresholds.ManyDumpers {
			confidence += 0.2
		} else {
			confidence += 0.1
		}
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("Found %d wallets with dump patterns", n))
	}
	result.Dumpers = topDumpers(dumpers, s.thresholds.TopWallets)

	whales := s.findWhales(flow)
	concentrated := 0
	for _, w := range whales {
		if w.PercentOfSupply > s.thresholds.ConcentrationPercent {
			concentrated++
		}
	}
	if concentrated >= s.thresholds.ConcentrationCount {
		confidence += 0.2
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("High concentration: %d wallets each hold over %.0f%% of observed volume",
				concentrated, s.thresholds.ConcentrationPercent))
	}
	result.Whales = topWhales(whales, s.thresholds.TopWallets)

	result.Confidence = clamp01(confidence)
	result.IsPumpDump = result.Confidence > 0.5

	s.logger.WithFields(logrus.Fields{
		"token":      tokenAddress,
		"confidence": result.Confidence,
		"pump_dump":  result.IsPumpDump,
		"reasons":    len(result.Reasons),
	}).Debug("Heuristic scoring complete")
	return result
}

// findDumpers flags wallets whose outflow exceeds the dump-ratio multiple of
// their inflow. Wallets that only ever sent (received == 0) are excluded;
// without an observed inflow the ratio is undefined and the wallet may just
// be an old holder outside the window.
func (s *Scorer) findDumpers(flow *FlowResult) []models.Dumper {
	var dumpers []models.Dumper
	for addr, stats := range flow.Wallets {
		if stats.Received > 0 && stats.Sent > s.thresholds.DumpRatio*stats.Received {
			dumpers = append(dumpers, models.Dumper{
				Address:   addr,
				Received:  stats.Received,
				Sent:      stats.Sent,
				Net:       stats.Net,
				DumpRatio: stats.Sent / stats.Received,
			})
		}
	}
	sort.Slice(dumpers, func(i, j int) bool {
		if dumpers[i].DumpRatio != dumpers[j].DumpRatio {
			return dumpers[i].DumpRatio > dumpers[j].DumpRatio
		}
		return dumpers[i].Address < dumpers[j].Address
	})
	return dumpers
}

// findWhales flags wallets holding more than the supply-fraction threshold
// of all volume received in the window. Total received volume stands in for
// circulating supply, which the batch alone cannot observe.
func (s *Scorer) findWhales(flow *FlowResult) []models.Whale {
	if flow.TotalReceived <= 0 {
		return nil
	}
	cutoff := s.thresholds.WhaleSupplyFraction * flow.TotalReceived
	var whales []models.Whale
	for addr, stats := range flow.Wallets {
		if stats.Received > cutoff {
			whales = append(whales, models.Whale{
				Address:         addr,
				Received:        stats.Received,
				PercentOfSupply: stats.Received / flow.TotalReceived * 100,
			})
		}
	}
	sort.Slice(whales, func(i, j int) bool {
		if whales[i].Received != whales[j].Received {
			return whales[i].Received > whales[j].Received
		}
		return whales[i].Address < whales[j].Address
	})
	return whales
}

func topDumpers(d []models.Dumper, n int) []models.Dumper {
	if len(d) > n {
		d = d[:n]
	}
	if d == nil {
		d = []models.Dumper{}
	}
	return d
}

func topWhales(w []models.Whale, n int) []models.Whale {
	if len(w) > n {
		w = w[:n]
	}
	if w == nil {
		w = []models.Whale{}
	}
	return w
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
