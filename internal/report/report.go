package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"solana-pump-monitor/internal/models"
)

const (
	sectionRule = "----------------------------------------"
	headerRule  = "================================================================================"

	maxHolderLines   = 10
	maxActivityLines = 10
	maxDumperLines   = 5
	maxPromoterLines = 5
	maxPostLines     = 5
)

// Render produces the plain-text analysis report for one finding. Sections
// appear in a fixed order and only data-bearing optional sections are
// emitted, so two runs over the same finding produce identical bytes.
func Render(finding *models.Finding, data *models.TokenData, posts []models.Post) string {
	var b strings.Builder

	writeHeader(&b, finding)
	writeAssessment(&b, finding)
	writeMetadata(&b, data)
	writeHolders(&b, data)
	writeTransactions(&b, finding)
	writeDefiActivity(&b, data)
	writeNarrative(&b, finding)
	writePostSample(&b, posts)
	writeDumpers(&b, finding, data)
	writePatterns(&b, finding)
	writeTopHolders(&b, finding, data)
	writePromoters(&b, finding)
	writePosts(&b, posts)
	writeFooter(&b)

	return b.String()
}

func writeHeader(b *strings.Builder, finding *models.Finding) {
	fmt.Fprintln(b, headerRule)
	fmt.Fprintf(b, "PUMP AND DUMP ANALYSIS REPORT: %s\n", finding.TokenAddress)
	fmt.Fprintf(b, "ANALYSIS DATE: %s\n", finding.CreatedAt.UTC().Format(time.DateTime))
	fmt.Fprintln(b, headerRule)
	fmt.Fprintln(b)
}

// writeAssessment leads with the advisory verdict when one is present; the
// merged confidence on the finding itself still drives alerting.
func writeAssessment(b *strings.Builder, finding *models.Finding) {
	isPumpDump, confidence := finding.IsPumpDump, finding.Confidence
	if finding.Advisory != nil {
		isPumpDump = finding.Advisory.IsPumpDump
		confidence = finding.Advisory.Confidence
	}

	fmt.Fprintln(b, "OVERALL ASSESSMENT")
	fmt.Fprintln(b, sectionRule)
	if isPumpDump {
		fmt.Fprintf(b, "POTENTIAL PUMP AND DUMP DETECTED! (Confidence: %.2f)\n", confidence)
	} else {
		fmt.Fprintf(b, "No significant pump and dump pattern detected (Confidence: %.2f)\n", confidence)
	}
	if finding.Advisory != nil && finding.Advisory.Summary != "" {
		fmt.Fprintf(b, "   AI Summary: %s\n", finding.Advisory.Summary)
	}
	fmt.Fprintln(b)
}

func writeMetadata(b *strings.Builder, data *models.TokenData) {
	fmt.Fprintln(b, "TOKEN METADATA")
	fmt.Fprintln(b, sectionRule)
	if data == nil || data.Metadata == nil {
		fmt.Fprintln(b, "Metadata not available.")
		fmt.Fprintln(b)
		return
	}
	m := data.Metadata
	fmt.Fprintf(b, "Name: %s\n", orNA(m.Name))
	fmt.Fprintf(b, "Symbol: %s\n", orNA(m.Symbol))
	fmt.Fprintf(b, "Decimals: %s\n", orNA(m.Decimals))
	fmt.Fprintf(b, "Total Supply: %s\n", orNA(m.Supply))
	fmt.Fprintf(b, "Holders (from meta): %d\n", m.HolderCount)
	fmt.Fprintf(b, "Mint Authority: %s\n", orNA(m.MintAuthority))
	fmt.Fprintf(b, "Freeze Authority: %s\n", orNA(m.FreezeAuthority))
	fmt.Fprintln(b)
}

func writeHolders(b *strings.Builder, data *models.TokenData) {
	fmt.Fprintln(b, "HOLDER INFORMATION (Page 1 Sample)")
	fmt.Fprintln(b, sectionRule)
	if data == nil || len(data.Holders) == 0 {
		fmt.Fprintln(b, "Holder data not available or empty.")
		fmt.Fprintln(b)
		return
	}

	holders := data.Holders
	if len(holders) > maxHolderLines {
		holders = holders[:maxHolderLines]
	}
	fmt.Fprintf(b, "Top %d holders displayed (from page 1):\n", len(holders))
	for i, h := range holders {
		amount := formatAmount(h.Amount, data.Metadata)
		percent := formatSupplyPercent(h.Amount, data.Metadata)
		fmt.Fprintf(b, " #%d: %s (Amount: %s, Approx: %s)\n", i+1, orNA(h.Owner), amount, percent)
	}
	fmt.Fprintln(b)
}

func writeTransactions(b *strings.Builder, finding *models.Finding) {
	fmt.Fprintln(b, "TRANSACTION OVERVIEW")
	fmt.Fprintln(b, sectionRule)
	fmt.Fprintf(b, "Total Transactions Analyzed: %d\n", finding.Transactions.Total)
	fmt.Fprintf(b, "Buy Transactions (Heuristic): %d\n", finding.Transactions.Buys)
	fmt.Fprintf(b, "Sell Transactions (Heuristic): %d\n", finding.Transactions.Sells)
	fmt.Fprintf(b, "Unique Wallets Involved: %d\n", finding.Transactions.UniqueWallets)

	if hour, vol, ok := peakHour(finding.Volume.Hourly); ok {
		fmt.Fprintf(b, "Peak Hourly Volume: %.2f around %s\n",
			vol, time.Unix(hour, 0).UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(b)
}

func writeDefiActivity(b *strings.Builder, data *models.TokenData) {
	fmt.Fprintln(b, "RECENT DEFI ACTIVITY (Page 1 Sample)")
	fmt.Fprintln(b, sectionRule)
	if data == nil || len(data.DefiActivities) == 0 {
		fmt.Fprintln(b, "No recent DeFi activity data available.")
		fmt.Fprintln(b)
		return
	}

	activities := data.DefiActivities
	if len(activities) > maxActivityLines {
		activities = activities[:maxActivityLines]
	}
	fmt.Fprintf(b, "Displaying %d recent activities:\n", len(activities))
	for i, a := range activities {
		ts := time.Unix(a.BlockTime, 0).UTC().Format(time.DateTime)
		fmt.Fprintf(b, " #%d %s: %s via %s (From: %s) (Value: $%.2f)\n",
			i+1, ts, orNA(a.ActivityType), orNA(a.Platform), shortAddr(a.FromAddress), a.Value)
	}
	fmt.Fprintln(b)
}

func writeNarrative(b *strings.Builder, finding *models.Finding) {
	if finding.Advisory == nil {
		return
	}
	fmt.Fprintln(b, "AI ANALYSIS NARRATIVE")
	fmt.Fprintln(b, sectionRule)
	narrative := finding.Advisory.DetailedNarrative
	if narrative == "" {
		narrative = "AI analysis did not provide a detailed narrative."
	}
	fmt.Fprintln(b, narrative)
	fmt.Fprintln(b)
}

// writePostSample shows the scan posts that led to this token right after
// the narrative, with links; the closing posts section repeats the sample in
// compact form.
func writePostSample(b *strings.Builder, posts []models.Post) {
	if len(posts) == 0 {
		return
	}
	fmt.Fprintln(b, "SAMPLE RELATED POSTS (From Scan)")
	fmt.Fprintln(b, sectionRule)
	fmt.Fprintf(b, "Found %d posts mentioning the token (showing up to %d):\n", len(posts), maxPostLines)

	if len(posts) > maxPostLines {
		posts = posts[:maxPostLines]
	}
	for i, p := range posts {
		username := p.Author.UserName
		if username == "" {
			username = "unknown"
		}
		fmt.Fprintf(b, "\n Post #%d by @%s (%s)\n", i+1, username, orNA(p.CreatedAt))
		fmt.Fprintf(b, "   Text: %s\n", truncate(p.Text, 200))
		if p.URL != "" {
			fmt.Fprintf(b, "   Link: %s\n", p.URL)
		}
	}
	fmt.Fprintln(b)
}

// writeDumpers prefers the advisory's dumper list when it named any wallets;
// the heuristic list is the fallback with full flow detail.
func writeDumpers(b *strings.Builder, finding *models.Finding, data *models.TokenData) {
	if finding.Advisory != nil && len(finding.Advisory.PotentialDumpers) > 0 {
		fmt.Fprintln(b, "POTENTIAL DUMPERS (Identified by AI)")
		fmt.Fprintln(b, sectionRule)
		for _, addr := range finding.Advisory.PotentialDumpers {
			fmt.Fprintf(b, "- %s\n", addr)
		}
		fmt.Fprintln(b)
		return
	}
	if len(finding.Dumpers) == 0 {
		return
	}

	fmt.Fprintln(b, "POTENTIAL DUMPERS (Identified by Heuristics)")
	fmt.Fprintln(b, sectionRule)
	dumpers := finding.Dumpers
	if len(dumpers) > maxDumperLines {
		dumpers = dumpers[:maxDumperLines]
	}
	var meta *models.TokenMeta
	if data != nil {
		meta = data.Metadata
	}
	for i, d := range dumpers {
		sent := formatRawFloat(d.Sent, meta)
		received := formatRawFloat(d.Received, meta)
		fmt.Fprintf(b, " #%d: %s (Sent: %s, Received: %s, Ratio: %.2f)\n",
			i+1, d.Address, sent, received, d.DumpRatio)
	}
	fmt.Fprintln(b)
}

func writePatterns(b *strings.Builder, finding *models.Finding) {
	if len(finding.Reasons) == 0 {
		return
	}
	fmt.Fprintln(b, "HEURISTIC PATTERNS DETECTED")
	fmt.Fprintln(b, sectionRule)
	for _, reason := range finding.Reasons {
		fmt.Fprintf(b, "* %s\n", reason)
	}
	fmt.Fprintln(b)
}

func writeTopHolders(b *strings.Builder, finding *models.Finding, data *models.TokenData) {
	if len(finding.Whales) == 0 {
		return
	}
	fmt.Fprintln(b, "TOP HOLDERS (Heuristic Analysis)")
	fmt.Fprintln(b, sectionRule)
	fmt.Fprintln(b, "(Based on total received tokens during analysis window)")
	var meta *models.TokenMeta
	if data != nil {
		meta = data.Metadata
	}
	for i, w := range finding.Whales {
		fmt.Fprintf(b, "#%d: %s (Received: %s, Approx Holding: %.2f%%)\n",
			i+1, w.Address, formatRawFloat(w.Received, meta), w.PercentOfSupply)
	}
	fmt.Fprintln(b)
}

func writePromoters(b *strings.Builder, finding *models.Finding) {
	if len(finding.Promoters) == 0 {
		return
	}
	fmt.Fprintln(b, "TWITTER PROMOTERS")
	fmt.Fprintln(b, sectionRule)
	fmt.Fprintf(b, "Found %d Twitter accounts promoting this token\n", len(finding.Promoters))

	promoters := finding.Promoters
	if len(promoters) > maxPromoterLines {
		promoters = promoters[:maxPromoterLines]
	}
	for i, p := range promoters {
		fmt.Fprintf(b, "\n#%d: @%s (Followers: %d, Influence: %.2f)\n",
			i+1, p.Username, p.Followers, p.InfluenceScore)
		if len(p.Posts) > 0 {
			sample := p.Posts[0]
			fmt.Fprintf(b, "   Sample Post (%s): %q\n", sample.CreatedAt, truncate(sample.Text, 150))
		}
	}
	fmt.Fprintln(b)
}

func writePosts(b *strings.Builder, posts []models.Post) {
	if len(posts) == 0 {
		return
	}
	fmt.Fprintln(b, "RELATED POSTS (Sample)")
	fmt.Fprintln(b, sectionRule)
	fmt.Fprintf(b, "Found %d posts mentioning this token\n", len(posts))

	if len(posts) > maxPostLines {
		posts = posts[:maxPostLines]
	}
	for i, p := range posts {
		username := p.Author.UserName
		if username == "" {
			username = "unknown"
		}
		fmt.Fprintf(b, "\nPost %d: @%s (%s)\n", i+1, username, orNA(p.CreatedAt))
		fmt.Fprintf(b, "   Text: %s\n", truncate(p.Text, 150))
	}
	fmt.Fprintln(b)
}

func writeFooter(b *strings.Builder) {
	fmt.Fprintln(b, headerRule)
	fmt.Fprintln(b, "END OF REPORT")
	fmt.Fprintln(b, headerRule)
}

// peakHour returns the bucket with the highest volume. Ties resolve to the
// earliest hour; the series arrives hour-sorted.
func peakHour(hourly []models.HourlyVolume) (int64, float64, bool) {
	if len(hourly) == 0 {
		return 0, 0, false
	}
	peak := hourly[0]
	for _, h := range hourly[1:] {
		if h.Volume > peak.Volume {
			peak = h
		}
	}
	return peak.Hour, peak.Volume, true
}

// formatAmount renders a raw holder amount scaled by the token's decimals.
// If either the amount or the decimals cannot be parsed, the raw string is
// shown instead of failing the report.
func formatAmount(rawAmount string, meta *models.TokenMeta) string {
	if rawAmount == "" {
		return "N/A"
	}
	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil {
		return rawAmount
	}
	decimals, ok := parseDecimals(meta)
	if !ok {
		return rawAmount + " (Raw)"
	}
	return fmt.Sprintf("%.4f", amount/math.Pow10(decimals))
}

// formatRawFloat scales an already numeric raw amount by the token decimals
// when known.
func formatRawFloat(amount float64, meta *models.TokenMeta) string {
	if decimals, ok := parseDecimals(meta); ok {
		return fmt.Sprintf("%.4f", amount/math.Pow10(decimals))
	}
	return fmt.Sprintf("%.0f (Raw)", amount)
}

// formatSupplyPercent computes a holder's share of total supply, degrading
// to N/A when supply or decimals are not clean integers.
func formatSupplyPercent(rawAmount string, meta *models.TokenMeta) string {
	if meta == nil {
		return "N/A"
	}
	amount, errA := strconv.ParseFloat(rawAmount, 64)
	supply, errS := strconv.ParseFloat(meta.Supply, 64)
	if errA != nil || errS != nil || supply <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.4f%%", amount/supply*100)
}

func parseDecimals(meta *models.TokenMeta) (int, bool) {
	if meta == nil || meta.Decimals == "" {
		return 0, false
	}
	decimals, err := strconv.Atoi(meta.Decimals)
	if err != nil || decimals < 0 || decimals > 18 {
		return 0, false
	}
	return decimals, true
}

func shortAddr(addr string) string {
	if len(addr) > 6 {
		return addr[:6] + ".."
	}
	return orNA(addr)
}

// truncate caps the text at n runes. Posts routinely carry emoji, so a byte
// slice could cut a rune in half and leave invalid UTF-8 in the report.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
