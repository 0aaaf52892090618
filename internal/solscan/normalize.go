package solscan

import (
	"solana-pump-monitor/internal/models"
)

// Normalization is the only place raw API field names are interpreted.
// Everything downstream sees the canonical shapes in internal/models.

// normalizeTransfer maps a raw record to the canonical Transfer. Missing
// addresses fold to the Unknown sentinel here so the analyzer never sees an
// empty identifier. A record whose amount or time is present but
// uninterpretable is kept and marked malformed; it still counts toward the
// raw transaction total.
func normalizeTransfer(raw rawTransfer) models.Transfer {
	sender := firstNonEmpty(raw.FromAddress, raw.Src, models.UnknownAddress)
	receiver := firstNonEmpty(raw.ToAddress, raw.Dst, models.UnknownAddress)

	amount, amountOK := coerceFloat(firstPresent(raw.Amount, raw.Value))
	ts, tsOK := coerceInt64(firstPresent(raw.BlockTime, raw.Time))

	t := models.Transfer{
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		Timestamp: ts,
	}
	if !amountOK || !tsOK {
		t.Malformed = true
		t.Amount = 0
		t.Timestamp = 0
	}
	return t
}

func normalizeTransfers(raws []rawTransfer) []models.Transfer {
	out := make([]models.Transfer, 0, len(raws))
	for _, r := range raws {
		out = append(out, normalizeTransfer(r))
	}
	return out
}

func normalizeMeta(raw rawMeta) *models.TokenMeta {
	return &models.TokenMeta{
		Name:            raw.Name,
		Symbol:          raw.Symbol,
		Decimals:        coerceString(raw.Decimals),
		Supply:          coerceString(raw.Supply),
		HolderCount:     raw.Holder,
		MintAuthority:   raw.MintAuthority,
		FreezeAuthority: raw.FreezeAuthority,
	}
}

func normalizeHolders(raws []rawHolder) []models.Holder {
	out := make([]models.Holder, 0, len(raws))
	for _, r := range raws {
		out = append(out, models.Holder{
			Owner:  firstNonEmpty(r.Owner, r.Address, models.UnknownAddress),
			Amount: coerceString(r.Amount),
		})
	}
	return out
}

func normalizeActivities(raws []rawActivity) []models.DefiActivity {
	out := make([]models.DefiActivity, 0, len(raws))
	for _, r := range raws {
		value, _ := coerceFloat(r.Value)
		ts, _ := coerceInt64(r.BlockTime)
		out = append(out, models.DefiActivity{
			ActivityType: r.ActivityType,
			Platform:     coerceString(r.Platform),
			Value:        value,
			BlockTime:    ts,
			FromAddress:  r.FromAddress,
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPresent(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
