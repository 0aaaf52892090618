package social

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"

	"solana-pump-monitor/internal/models"
)

// base58AddressPattern matches candidate Solana addresses: base58 strings of
// plausible public key length. Candidates still go through full decoding
// before they are accepted.
var base58AddressPattern = regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`)

const extractBatchSize = 10

// Extractor pulls Solana token addresses out of post text. With an LLM it
// batches posts through a structured extraction prompt; without one, or when
// the LLM call fails, it falls back to regex matching. Either way every
// candidate must decode as a real public key.
type Extractor struct {
	llm    llms.Model
	logger *logrus.Logger
}

type ExtractorConfig struct {
	// LLM is optional. Nil means regex-only extraction.
	LLM    llms.Model
	Logger *logrus.Logger
}

func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Extractor{llm: cfg.LLM, logger: cfg.Logger}
}

// Addresses extracts the deduplicated, validated address set from the posts.
// The result is sorted so repeated runs over the same posts are identical.
func (e *Extractor) Addresses(ctx context.Context, posts []models.Post) []string {
	seen := make(map[string]struct{})

	for start := 0; start < len(posts); start += extractBatchSize {
		end := start + extractBatchSize
		if end > len(posts) {
			end = len(posts)
		}
		batch := posts[start:end]

		candidates, err := e.extractBatch(ctx, batch)
		if err != nil {
			e.logger.WithError(err).Warn("LLM address extraction failed, falling back to regex")
			candidates = regexCandidates(batch)
		}

		for _, c := range candidates {
			addr := strings.TrimSpace(c)
			if !IsValidAddress(addr) {
				continue
			}
			seen[addr] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for addr := range seen {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

func (e *Extractor) extractBatch(ctx context.Context, batch []models.Post) ([]string, error) {
	if e.llm == nil {
		return regexCandidates(batch), nil
	}

	var b strings.Builder
	b.WriteString(`Extract ONLY the Solana token addresses (base58 strings of 32-44 characters) mentioned in the posts below. Ignore partial addresses and addresses from other blockchains.

Respond with a single JSON object: {"extracted_addresses": ["<address>", ...]}

POSTS:`)
	for i, p := range batch {
		fmt.Fprintf(&b, "\n\nPost %d: %s", i+1, p.Text)
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, e.llm, b.String(), llms.WithMaxTokens(512))
	if err != nil {
		return nil, fmt.Errorf("address extraction call failed: %w", err)
	}

	cleaned := resp
	if start := strings.Index(cleaned, "{"); start >= 0 {
		if end := strings.LastIndex(cleaned, "}"); end > start {
			cleaned = cleaned[start : end+1]
		}
	}

	var parsed struct {
		ExtractedAddresses []string `json:"extracted_addresses"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	return parsed.ExtractedAddresses, nil
}

func regexCandidates(posts []models.Post) []string {
	var out []string
	for _, p := range posts {
		out = append(out, base58AddressPattern.FindAllString(p.Text, -1)...)
	}
	return out
}

// IsValidAddress reports whether the string decodes to a real Solana public
// key. Regex alone passes lookalikes (transaction signatures truncate into
// range, for one), so this is the final gate.
func IsValidAddress(addr string) bool {
	_, err := solana.PublicKeyFromBase58(addr)
	return err == nil
}
