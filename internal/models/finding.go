package models

import "time"

// WalletStats accumulates per-address flow over one analysis batch.
type WalletStats struct {
	Sent     float64 `json:"sent"`
	Received float64 `json:"received"`
	Net      float64 `json:"net"`
}

// Dumper is a wallet whose outgoing volume substantially exceeds its
// incoming volume within the analysis window.
type Dumper struct {
	Address   string  `json:"address"`
	Received  float64 `json:"received"`
	Sent      float64 `json:"sent"`
	Net       float64 `json:"net"`
	DumpRatio float64 `json:"dump_ratio"`
}

// Whale is a wallet holding a disproportionate share of the observed
// received volume.
type Whale struct {
	Address         string  `json:"address"`
	Received        float64 `json:"received"`
	PercentOfSupply float64 `json:"percent_of_supply"`
}

// HourlyVolume is one bucket of the per-hour volume series.
type HourlyVolume struct {
	Hour   int64   `json:"hour"`
	Volume float64 `json:"volume"`
}

// VolumeAnalysis is the spike-detection result over the hourly series.
type VolumeAnalysis struct {
	HasSpike    bool           `json:"has_spike"`
	SpikeFactor float64        `json:"spike_factor"`
	SpikeHour   int64          `json:"spike_hour,omitempty"`
	Hourly      []HourlyVolume `json:"hourly_data"`
}

// TransactionSummary carries the raw batch counts.
type TransactionSummary struct {
	Total         int `json:"total"`
	Buys          int `json:"buys"`
	Sells         int `json:"sells"`
	UniqueWallets int `json:"unique_wallets"`
}

// HeuristicResult is the output of the heuristic scorer for one token.
// Confidence is the sum of at most four capped contributions and is always
// within [0, 1].
type HeuristicResult struct {
	TokenAddress string             `json:"token_address"`
	IsPumpDump   bool               `json:"is_pump_dump"`
	Confidence   float64            `json:"confidence"`
	Reasons      []string           `json:"reasons"`
	Dumpers      []Dumper           `json:"potential_dumpers"`
	Whales       []Whale            `json:"top_holders"`
	Volume       VolumeAnalysis     `json:"volume_analysis"`
	Transactions TransactionSummary `json:"transaction_summary"`
}

// AdvisoryVerdict is the structured verdict returned by the external
// advisory collaborator. It is untrusted input: missing fields default to
// the heuristic's own values at merge time.
type AdvisoryVerdict struct {
	IsPumpDump        bool     `json:"is_pump_dump"`
	Confidence        float64  `json:"confidence"`
	Summary           string   `json:"summary"`
	DetailedNarrative string   `json:"detailed_narrative"`
	PotentialDumpers  []string `json:"potential_dumpers"`
}

// Finding is the merged final result for one token: the heuristic result
// plus the optional advisory verdict. It is the only entity handed to the
// report renderer and the alerting collaborator.
type Finding struct {
	HeuristicResult

	Advisory  *AdvisoryVerdict `json:"advisory,omitempty"`
	Promoters []Promoter       `json:"promoters,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Promoter is a social account observed promoting a token, ranked by a
// follower-weighted pump-indicator score.
type Promoter struct {
	Username       string  `json:"username"`
	DisplayName    string  `json:"display_name"`
	Followers      int     `json:"followers"`
	IsVerified     bool    `json:"is_verified"`
	Posts          []Post  `json:"posts"`
	PumpIndicators int     `json:"pump_indicators"`
	InfluenceScore float64 `json:"influence_score"`
}

// SocialSummary aggregates the social-signal side of the correlation path.
type SocialSummary struct {
	AveragePumpScore float64  `json:"average_pump_score"`
	HighSignalPosts  int      `json:"high_signal_posts"`
	HighSignalSample []Post   `json:"high_signal_sample,omitempty"`
	AddressCount     int      `json:"address_count"`
	AddressSample    []string `json:"address_sample,omitempty"`
}

// Anomaly is one unusual on-chain pattern found by the aggregate scan.
type Anomaly struct {
	Type           string  `json:"type"`
	Sender         string  `json:"sender,omitempty"`
	Receiver       string  `json:"receiver,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
	Timestamp      int64   `json:"timestamp,omitempty"`
	Hour           int64   `json:"hour,omitempty"`
	CurrentVolume  float64 `json:"current_volume,omitempty"`
	PreviousVolume float64 `json:"previous_volume,omitempty"`
	IncreaseFactor float64 `json:"increase_factor,omitempty"`
}

// OnchainSummary aggregates the on-chain side of the correlation path.
type OnchainSummary struct {
	TotalVolume     float64   `json:"total_volume"`
	TransferCount   int       `json:"transfer_count"`
	UniqueSenders   int       `json:"unique_senders"`
	UniqueReceivers int       `json:"unique_receivers"`
	Anomalies       []Anomaly `json:"unusual_patterns"`
}

// CorrelationFinding is one cross-channel correlation result produced by
// matching aggregate social and on-chain signals.
type CorrelationFinding struct {
	Description       string         `json:"description"`
	Confidence        float64        `json:"confidence"`
	IsPumpDump        bool           `json:"is_pump_and_dump"`
	KeyIndicators     []string       `json:"key_indicators,omitempty"`
	TweetIndicators   map[string]any `json:"tweet_indicators,omitempty"`
	OnchainIndicators map[string]any `json:"onchain_indicators,omitempty"`
}
