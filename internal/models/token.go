package models

// UnknownAddress is the sentinel used when a transfer record carries no
// sender or receiver identifier. Such transfers still contribute to exactly
// one sender and one receiver stats entry.
const UnknownAddress = "Unknown"

// Transfer is the canonical on-chain transfer shape. Source records with
// alternate field names are normalized into this at the fetch boundary;
// nothing downstream branches on raw field names.
type Transfer struct {
	Sender    string  `json:"sender"`
	Receiver  string  `json:"receiver"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`

	// Malformed marks a record whose amount or timestamp failed coercion.
	// It is counted in the raw transaction total but excluded from all
	// volume and wallet accumulation.
	Malformed bool `json:"malformed,omitempty"`
}

// TokenMeta is token metadata as returned by the chain explorer. All fields
// are kept as strings where the upstream API is inconsistent about types;
// consumers parse defensively and fall back to the raw value.
type TokenMeta struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        string `json:"decimals"`
	Supply          string `json:"supply"`
	HolderCount     int    `json:"holder_count"`
	MintAuthority   string `json:"mint_authority"`
	FreezeAuthority string `json:"freeze_authority"`
}

// Holder is a single token holder record.
type Holder struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

// DefiActivity is a single DeFi activity record involving the token.
type DefiActivity struct {
	ActivityType string  `json:"activity_type"`
	Platform     string  `json:"platform"`
	Value        float64 `json:"value"`
	BlockTime    int64   `json:"block_time"`
	FromAddress  string  `json:"from_address"`
}

// PostAuthor identifies the author of a social post.
type PostAuthor struct {
	UserName   string `json:"userName"`
	Name       string `json:"name"`
	Followers  int    `json:"followers"`
	CreatedAt  string `json:"createdAt"`
	IsVerified bool   `json:"isVerified"`
}

// Post is a social post mentioning (or potentially mentioning) a token.
type Post struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Author    PostAuthor `json:"author"`
	CreatedAt string     `json:"createdAt"`
	URL       string     `json:"url"`
}

// TokenData is the combined per-token input to the analysis pipeline: the
// full transfer batch plus the optional enrichment snapshots.
type TokenData struct {
	TokenAddress   string         `json:"token_address"`
	Metadata       *TokenMeta     `json:"metadata,omitempty"`
	Holders        []Holder       `json:"holders,omitempty"`
	DefiActivities []DefiActivity `json:"defi_activities,omitempty"`
	Transfers      []Transfer     `json:"transfers"`

	// RawSample keeps a capped slice of transfers for advisory context and
	// artifact snapshots; the scorer itself always folds the full batch.
	RawSample []Transfer `json:"raw_sample,omitempty"`
}

// Empty reports whether there is nothing at all to analyze: no transfers
// and no metadata. This is the fatal-input case, distinct from a small but
// present batch.
func (d *TokenData) Empty() bool {
	return d == nil || (len(d.Transfers) == 0 && d.Metadata == nil)
}
