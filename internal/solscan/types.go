package solscan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// envelope is the standard Pro API response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// rawTransfer is a transfer record as the API returns it. Field names vary
// between endpoint versions, so both spellings are decoded and the
// normalizer picks the first one present. Amount and block time arrive as
// either numbers or strings depending on endpoint.
type rawTransfer struct {
	FromAddress string `json:"from_address"`
	Src         string `json:"src"`
	ToAddress   string `json:"to_address"`
	Dst         string `json:"dst"`
	Amount      any    `json:"amount"`
	Value       any    `json:"value"`
	BlockTime   any    `json:"block_time"`
	Time        any    `json:"time"`
}

// rawMeta is the /token/meta payload.
type rawMeta struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        any    `json:"decimals"`
	Supply          any    `json:"supply"`
	Holder          int    `json:"holder"`
	MintAuthority   string `json:"mint_authority"`
	FreezeAuthority string `json:"freeze_authority"`
}

// rawHolder is one /token/holders item.
type rawHolder struct {
	Owner   string `json:"owner"`
	Address string `json:"address"`
	Amount  any    `json:"amount"`
}

// holderPage handles both container shapes the holders endpoint has been
// seen returning: {"data": {"items": [...]}} and {"data": [...]}.
type holderPage struct {
	Items []rawHolder `json:"items"`
}

// rawActivity is one /token/defi/activities item.
type rawActivity struct {
	ActivityType string `json:"activity_type"`
	Platform     any    `json:"platform"`
	Value        any    `json:"value"`
	BlockTime    any    `json:"block_time"`
	FromAddress  string `json:"from_address"`
}

// coerceFloat converts the loosely typed numeric values the API emits. The
// bool result is false when a present value could not be interpreted.
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// coerceInt64 is coerceFloat for integral fields (block times).
func coerceInt64(v any) (int64, bool) {
	f, ok := coerceFloat(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// coerceString renders a loosely typed field back to its string form.
func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", s)
	}
}
