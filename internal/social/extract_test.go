package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pump-monitor/internal/models"
)

// Well-known mainnet mints, guaranteed to decode.
const (
	wrappedSolMint = "So11111111111111111111111111111111111111112"
	usdcMint       = "EPjFWdd5AufqSsqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func TestIsValidAddress(t *testing.T) {
	assert.True(t, IsValidAddress(wrappedSolMint))
	assert.True(t, IsValidAddress(usdcMint))

	// Right shape, wrong alphabet or length.
	assert.False(t, IsValidAddress("0OIl_not_base58_but_long_enough_padpadpad"))
	assert.False(t, IsValidAddress("tooshort"))
	assert.False(t, IsValidAddress(""))
}

func TestExtractor_RegexOnly(t *testing.T) {
	extractor := NewExtractor(ExtractorConfig{})

	posts := []models.Post{
		{ID: "1", Text: "New gem! CA: " + usdcMint + " get in early"},
		{ID: "2", Text: "also check " + wrappedSolMint + " and " + usdcMint},
		{ID: "3", Text: "no address here, just vibes"},
	}

	addrs := extractor.Addresses(context.Background(), posts)

	// Deduplicated and sorted.
	require.Len(t, addrs, 2)
	assert.Equal(t, []string{usdcMint, wrappedSolMint}, addrs)
}

func TestExtractor_RejectsLookalikes(t *testing.T) {
	extractor := NewExtractor(ExtractorConfig{})

	// Base58-shaped but not a decodable 32-byte key: 45+ chars are matched
	// only up to the regex bound, shorter fakes decode to the wrong length.
	posts := []models.Post{
		{ID: "1", Text: "contract 1111111111111111111111111111111111111111"},
	}

	addrs := extractor.Addresses(context.Background(), posts)
	assert.Empty(t, addrs)
}

func TestRegexCandidates_FindsEmbeddedAddresses(t *testing.T) {
	posts := []models.Post{
		{Text: "🚀🚀 " + wrappedSolMint + " 100x guaranteed!!"},
	}

	candidates := regexCandidates(posts)
	require.Len(t, candidates, 1)
	assert.Equal(t, wrappedSolMint, candidates[0])
}
