package constants

// Keyword catalogs for pump-and-dump language detection on social posts.
// Grouped by category so individual lists can be swapped without touching
// the scanner.

// HypeKeywords are strong hype/urgency indicators.
var HypeKeywords = []string{
	"100x",
	"1000x",
	"to the moon",
	"mooning",
	"moonshot",
	"going parabolic",
	"next bitcoin",
	"next ethereum",
	"next solana",
	"don't miss out",
	"FOMO",
	"get in now",
	"early gem",
	"hidden gem",
	"easy gains",
	"guaranteed gains",
	"massive gains",
	"insane ROI",
	"rocket",
	"🚀",
}

// UrgencyKeywords mark time pressure in promotional posts.
var UrgencyKeywords = []string{
	"don't miss",
	"hurry",
	"last chance",
	"early",
}

// AddressMentionKeywords mark posts that likely carry a contract address.
var AddressMentionKeywords = []string{
	"contract",
	"token address",
	"address:",
	"ca:",
}

// HighPrecisionSearchTerms are the default Twitter search queries. Narrow
// phrases keep the result set relevant when API calls are limited.
var HighPrecisionSearchTerms = []string{
	"solana 100x",
	"solana gem",
	"SOL moonshot",
	"solana presale rocket",
	"SOL token moon",
	"solana easy gains",
	"next SOL gem",
	"solana stealth launch",
	"SOL don't miss out",
	"solana massive gains",
}

// CombinedSearchTerms extend the default search set with broader phrases.
var CombinedSearchTerms = []string{
	"solana incredible gains",
	"SOL to the moon",
	"next SOL winner",
	"solana pump",
	"SOL airdrop huge",
	"solana low cap gem",
	"SOL early investors",
	"solana hidden gem",
	"SOL pump soon",
}

// DefaultSearchTerms returns the deduplicated default query set.
func DefaultSearchTerms() []string {
	seen := make(map[string]struct{}, len(HighPrecisionSearchTerms)+len(CombinedSearchTerms))
	out := make([]string, 0, len(HighPrecisionSearchTerms)+len(CombinedSearchTerms))
	for _, kw := range HighPrecisionSearchTerms {
		if _, ok := seen[kw]; !ok {
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	for _, kw := range CombinedSearchTerms {
		if _, ok := seen[kw]; !ok {
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// SellVenueMarkers are receiver-identifier substrings treated as DEX-like
// destinations by the trade classifier.
var SellVenueMarkers = []string{"exchange", "swap", "pool"}

// Redis keys and channels.
const (
	RedisKeyRecentFindings = "findings:recent"
	PubSubChannelAlerts    = "alerts:pumpdump"
	PubSubChannelFindings  = "findings:live"
)

// Limits
const (
	MaxRecentFindings   = 100
	MaxTweetsPerCycle   = 100
	MaxTransfersFetched = 500
	RawSampleSize       = 50
)
