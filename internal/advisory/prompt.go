package advisory

import (
	"fmt"
	"sort"
	"strings"

	"solana-pump-monitor/internal/models"
)

// Caps keeping the prompt bounded regardless of batch size. The full batch
// already went through the heuristic pass; the LLM only needs a sample.
const (
	maxPromptHolders   = 5
	maxPromptSellers   = 5
	maxPromptTransfers = 25
	maxPromptDefi      = 5
	maxPromptPosts     = 3
	maxPostExcerpt     = 200
)

// buildReviewPrompt renders the token snapshot, the heuristic verdict and
// any social context into a single prompt asking for a structured JSON
// second opinion.
func buildReviewPrompt(data *models.TokenData, heuristic models.HeuristicResult, posts []models.Post) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert Solana on-chain analyst reviewing a token for pump-and-dump activity.\n\n")
	fmt.Fprintf(&b, "Token: %s\n\n", heuristic.TokenAddress)

	if data != nil && data.Metadata != nil {
		m := data.Metadata
		fmt.Fprintf(&b, "Metadata: name=%q symbol=%q decimals=%s supply=%s holders=%d\n",
			m.Name, m.Symbol, m.Decimals, m.Supply, m.HolderCount)
		if m.MintAuthority != "" {
			fmt.Fprintf(&b, "Mint authority still active: %s\n", m.MintAuthority)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Heuristic result: confidence=%.2f pump_dump=%v\n", heuristic.Confidence, heuristic.IsPumpDump)
	for _, r := range heuristic.Reasons {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	fmt.Fprintf(&b, "Transactions: total=%d buys=%d sells=%d unique_wallets=%d\n\n",
		heuristic.Transactions.Total, heuristic.Transactions.Buys,
		heuristic.Transactions.Sells, heuristic.Transactions.UniqueWallets)

	if len(heuristic.Dumpers) > 0 {
		b.WriteString("Flagged dumper wallets (sent far more than received):\n")
		for _, d := range heuristic.Dumpers {
			fmt.Fprintf(&b, "- %s received=%.2f sent=%.2f ratio=%.2f\n",
				d.Address, d.Received, d.Sent, d.DumpRatio)
		}
		b.WriteString("\n")
	}

	if len(heuristic.Whales) > 0 {
		b.WriteString("Concentrated wallets:\n")
		for _, w := range heuristic.Whales {
			fmt.Fprintf(&b, "- %s received=%.2f (%.1f%% of observed volume)\n",
				w.Address, w.Received, w.PercentOfSupply)
		}
		b.WriteString("\n")
	}

	if data != nil {
		writeHolders(&b, data.Holders)
		writeNetSellers(&b, data.Transfers)
		writeTransfers(&b, data.Transfers)
		writeDefi(&b, data.DefiActivities)
	}
	writePosts(&b, posts)

	b.WriteString(`Respond with ONLY a JSON object, no explanation and no code fences:
{
  "is_pump_dump": <bool>,
  "confidence": <float 0.0-1.0>,
  "summary": "<one sentence verdict>",
  "detailed_narrative": "<2-4 sentences explaining the evidence>",
  "potential_dumpers": ["<address>", ...]
}
`)
	return b.String()
}

func writeHolders(b *strings.Builder, holders []models.Holder) {
	if len(holders) == 0 {
		return
	}
	if len(holders) > maxPromptHolders {
		holders = holders[:maxPromptHolders]
	}
	b.WriteString("Top holders:\n")
	for _, h := range holders {
		fmt.Fprintf(b, "- %s amount=%s\n", h.Owner, h.Amount)
	}
	b.WriteString("\n")
}

// writeNetSellers lists the wallets with the most negative net flow. Unlike
// the dumper list this includes wallets that received nothing at all, which
// is typical of pre-funded distribution wallets.
func writeNetSellers(b *strings.Builder, transfers []models.Transfer) {
	net := make(map[string]float64)
	for _, t := range transfers {
		if t.Malformed {
			continue
		}
		if t.Sender != "" {
			net[t.Sender] -= t.Amount
		}
		if t.Receiver != "" {
			net[t.Receiver] += t.Amount
		}
	}

	type seller struct {
		addr string
		net  float64
	}
	sellers := make([]seller, 0, len(net))
	for addr, n := range net {
		if n < 0 {
			sellers = append(sellers, seller{addr: addr, net: n})
		}
	}
	if len(sellers) == 0 {
		return
	}
	sort.Slice(sellers, func(i, j int) bool {
		if sellers[i].net != sellers[j].net {
			return sellers[i].net < sellers[j].net
		}
		return sellers[i].addr < sellers[j].addr
	})
	if len(sellers) > maxPromptSellers {
		sellers = sellers[:maxPromptSellers]
	}

	b.WriteString("Top net sellers:\n")
	for _, s := range sellers {
		fmt.Fprintf(b, "- %s net=%.2f\n", s.addr, s.net)
	}
	b.WriteString("\n")
}

func writeTransfers(b *strings.Builder, transfers []models.Transfer) {
	if len(transfers) == 0 {
		return
	}
	total := len(transfers)
	sample := make([]models.Transfer, 0, maxPromptTransfers)
	for _, t := range transfers {
		if t.Malformed {
			continue
		}
		sample = append(sample, t)
		if len(sample) == maxPromptTransfers {
			break
		}
	}
	fmt.Fprintf(b, "Transfer sample (%d of %d):\n", len(sample), total)
	for _, t := range sample {
		fmt.Fprintf(b, "- %s -> %s amount=%.4f ts=%d\n", t.Sender, t.Receiver, t.Amount, t.Timestamp)
	}
	b.WriteString("\n")
}

func writeDefi(b *strings.Builder, activities []models.DefiActivity) {
	if len(activities) == 0 {
		return
	}
	if len(activities) > maxPromptDefi {
		activities = activities[:maxPromptDefi]
	}
	b.WriteString("DeFi activity sample:\n")
	for _, a := range activities {
		fmt.Fprintf(b, "- %s on %s value=%.2f from=%s\n", a.ActivityType, a.Platform, a.Value, a.FromAddress)
	}
	b.WriteString("\n")
}

func writePosts(b *strings.Builder, posts []models.Post) {
	if len(posts) == 0 {
		return
	}
	if len(posts) > maxPromptPosts {
		posts = posts[:maxPromptPosts]
	}
	b.WriteString("Social posts mentioning the token:\n")
	for _, p := range posts {
		fmt.Fprintf(b, "- @%s (%d followers): %s\n", p.Author.UserName, p.Author.Followers, excerpt(p.Text))
	}
	b.WriteString("\n")
}

// excerpt truncates a post body for prompt inclusion. The cut lands on a
// rune boundary so emoji-heavy posts cannot leave invalid UTF-8 behind.
func excerpt(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if r := []rune(text); len(r) > maxPostExcerpt {
		return string(r[:maxPostExcerpt]) + "..."
	}
	return text
}
