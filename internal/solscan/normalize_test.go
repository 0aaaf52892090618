package solscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pump-monitor/internal/models"
)

func TestNormalizeTransfer_PrimaryFields(t *testing.T) {
	raw := rawTransfer{
		FromAddress: "walletA",
		ToAddress:   "walletB",
		Amount:      float64(123.5),
		BlockTime:   float64(1700000000),
	}

	tr := normalizeTransfer(raw)

	assert.Equal(t, "walletA", tr.Sender)
	assert.Equal(t, "walletB", tr.Receiver)
	assert.Equal(t, 123.5, tr.Amount)
	assert.Equal(t, int64(1700000000), tr.Timestamp)
	assert.False(t, tr.Malformed)
}

func TestNormalizeTransfer_FallbackFields(t *testing.T) {
	raw := rawTransfer{
		Src:  "walletA",
		Dst:  "walletB",
		Time: float64(1700000000),
		// Amount as a string, as some endpoints return it.
		Amount: "42.25",
	}

	tr := normalizeTransfer(raw)

	assert.Equal(t, "walletA", tr.Sender)
	assert.Equal(t, "walletB", tr.Receiver)
	assert.Equal(t, 42.25, tr.Amount)
	assert.False(t, tr.Malformed)
}

func TestNormalizeTransfer_MissingAddressesUseSentinel(t *testing.T) {
	tr := normalizeTransfer(rawTransfer{Amount: float64(1)})

	assert.Equal(t, models.UnknownAddress, tr.Sender)
	assert.Equal(t, models.UnknownAddress, tr.Receiver)
	assert.False(t, tr.Malformed)
}

func TestNormalizeTransfer_UncoercibleAmountMarksMalformed(t *testing.T) {
	tr := normalizeTransfer(rawTransfer{
		FromAddress: "walletA",
		ToAddress:   "walletB",
		Amount:      "not-a-number",
		BlockTime:   float64(1700000000),
	})

	assert.True(t, tr.Malformed)
	assert.Zero(t, tr.Amount)
	assert.Zero(t, tr.Timestamp)
	// Addresses are still preserved for diagnostics.
	assert.Equal(t, "walletA", tr.Sender)
}

func TestNormalizeTransfer_MissingAmountIsZeroNotMalformed(t *testing.T) {
	tr := normalizeTransfer(rawTransfer{FromAddress: "a", ToAddress: "b"})

	assert.False(t, tr.Malformed)
	assert.Zero(t, tr.Amount)
}

func TestNormalizeMeta_LooseTypes(t *testing.T) {
	meta := normalizeMeta(rawMeta{
		Name:     "Pump Token",
		Symbol:   "PMP",
		Decimals: float64(9),
		Supply:   "1000000000",
		Holder:   432,
	})

	assert.Equal(t, "9", meta.Decimals)
	assert.Equal(t, "1000000000", meta.Supply)
	assert.Equal(t, 432, meta.HolderCount)
}

func TestNormalizeHolders_OwnerFallback(t *testing.T) {
	holders := normalizeHolders([]rawHolder{
		{Owner: "walletA", Amount: float64(100)},
		{Address: "walletB", Amount: "250"},
		{},
	})

	require.Len(t, holders, 3)
	assert.Equal(t, "walletA", holders[0].Owner)
	assert.Equal(t, "100", holders[0].Amount)
	assert.Equal(t, "walletB", holders[1].Owner)
	assert.Equal(t, models.UnknownAddress, holders[2].Owner)
}

func TestCoerceFloat(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{nil, 0, true},
		{float64(5.5), 5.5, true},
		{"7.25", 7.25, true},
		{"", 0, true},
		{"abc", 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := coerceFloat(tc.in)
		assert.Equal(t, tc.want, got, "input %v", tc.in)
		assert.Equal(t, tc.ok, ok, "input %v", tc.in)
	}
}
