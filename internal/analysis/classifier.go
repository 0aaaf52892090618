package analysis

import (
	"strings"

	"solana-pump-monitor/internal/constants"
	"solana-pump-monitor/internal/models"
)

// TradeSide is the coarse buy/sell classification of a transfer.
type TradeSide int

const (
	SideBuy TradeSide = iota
	SideSell
)

// TradeClassifier decides whether a transfer looks like a sell into a
// trading venue or an ordinary acquisition. It is a pluggable strategy so a
// structured DEX-interaction detector can replace the substring matcher
// without touching the scorer.
type TradeClassifier interface {
	Classify(t models.Transfer) TradeSide
}

// SubstringClassifier flags a transfer as a sell when the receiver
// identifier contains a known venue marker ("exchange", "swap", "pool").
// This is a coarse proxy, not a ledger-accurate classification: receivers
// named after venues are treated as venues, and real DEX interactions with
// opaque addresses are missed. Its false-positive rate is unknown.
type SubstringClassifier struct {
	markers []string
}

// NewSubstringClassifier builds a classifier over the given lowercase
// markers, defaulting to the standard venue markers when none are given.
func NewSubstringClassifier(markers ...string) *SubstringClassifier {
	if len(markers) == 0 {
		markers = constants.SellVenueMarkers
	}
	lowered := make([]string, len(markers))
	for i, m := range markers {
		lowered[i] = strings.ToLower(m)
	}
	return &SubstringClassifier{markers: lowered}
}

func (c *SubstringClassifier) Classify(t models.Transfer) TradeSide {
	receiver := strings.ToLower(t.Receiver)
	for _, m := range c.markers {
		if strings.Contains(receiver, m) {
			return SideSell
		}
	}
	return SideBuy
}
