package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"solana-pump-monitor/internal/advisory"
	"solana-pump-monitor/internal/alert"
	"solana-pump-monitor/internal/analysis"
	"solana-pump-monitor/internal/flags"
	"solana-pump-monitor/internal/models"
	"solana-pump-monitor/internal/report"
	"solana-pump-monitor/internal/social"
	"solana-pump-monitor/internal/storage"
)

// ErrNoData marks a token with nothing to analyze: no transfers and no
// metadata came back from the chain explorer.
var ErrNoData = errors.New("no data found for token")

// TokenFetcher pulls the combined per-token dataset from the chain explorer.
type TokenFetcher interface {
	FetchTokenData(ctx context.Context, tokenAddress string) (*models.TokenData, error)
}

// SocialSearcher pulls posts from the social API.
type SocialSearcher interface {
	SearchToken(ctx context.Context, tokenAddress string) ([]models.Post, error)
	SearchPumpLanguage(ctx context.Context) ([]models.Post, error)
}

// Reviewer is the optional second-opinion stage over a heuristic result.
type Reviewer interface {
	Review(ctx context.Context, data *models.TokenData, heuristic models.HeuristicResult, posts []models.Post) (*models.AdvisoryVerdict, error)
}

// AddressExtractor finds candidate token addresses in post text.
type AddressExtractor interface {
	Addresses(ctx context.Context, posts []models.Post) []string
}

// OnchainAnalyzer aggregates a transfer batch for the correlation path.
type OnchainAnalyzer interface {
	Analyze(transfers []models.Transfer) models.OnchainSummary
}

// Correlator matches aggregate social and on-chain signals.
type Correlator interface {
	Correlate(ctx context.Context, social models.SocialSummary, onchain models.OnchainSummary) []models.CorrelationFinding
}

// Notifier fans alerts out; delivery failures stay inside the notifier.
type Notifier interface {
	Notify(ctx context.Context, subject, body string)
}

// FlagResolver resolves runtime toggles, satisfied by the flag store.
type FlagResolver interface {
	IsEnabled(ctx context.Context, key string, defaultVal bool) bool
}

// Config wires the pipeline. Fetcher and Scorer are required; every other
// collaborator is optional and its stage is skipped when nil.
type Config struct {
	Fetcher TokenFetcher
	Scorer  *analysis.Scorer

	Social    SocialSearcher
	Advisor   Reviewer
	Extractor AddressExtractor
	Onchain   OnchainAnalyzer
	Judge     Correlator

	Cache     storage.FindingCache
	Store     storage.FindingStore
	Artifacts storage.ArtifactStore
	Notifier  Notifier
	Flags     FlagResolver

	Logger *logrus.Logger
}

// Pipeline runs the per-token analysis flow and the cross-token monitor
// cycle.
type Pipeline struct {
	cfg    Config
	logger *logrus.Logger
}

func New(cfg Config) (*Pipeline, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("token fetcher is required")
	}
	if cfg.Scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Pipeline{cfg: cfg, logger: cfg.Logger}, nil
}

// Result is the full output of one token analysis.
type Result struct {
	Finding *models.Finding
	Report  string
	Data    *models.TokenData
}

// AnalyzeToken runs the full per-token flow: fetch, score, optionally gather
// social context and an advisory second opinion, merge, render, persist and
// alert. Persistence and alerting failures are logged, never fatal; only a
// failed fetch or an empty dataset aborts the analysis.
func (p *Pipeline) AnalyzeToken(ctx context.Context, tokenAddress string) (*Result, error) {
	log := p.logger.WithField("token", tokenAddress)

	data, err := p.cfg.Fetcher.FetchTokenData(ctx, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token data: %w", err)
	}
	if data.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrNoData, tokenAddress)
	}

	heuristic := p.cfg.Scorer.Score(tokenAddress, data.Transfers)
	log.WithFields(logrus.Fields{
		"confidence":   heuristic.Confidence,
		"is_pump_dump": heuristic.IsPumpDump,
	}).Info("Heuristic analysis complete")

	var posts []models.Post
	if p.cfg.Social != nil && p.flagEnabled(ctx, flags.KeySocialEnabled) {
		if posts, err = p.cfg.Social.SearchToken(ctx, tokenAddress); err != nil {
			log.WithError(err).Warn("Social search failed, continuing without posts")
			posts = nil
		}
	}

	var verdict *models.AdvisoryVerdict
	if p.cfg.Advisor != nil && p.flagEnabled(ctx, flags.KeyAdvisoryEnabled) {
		if verdict, err = p.cfg.Advisor.Review(ctx, data, heuristic, posts); err != nil {
			log.WithError(err).Warn("Advisory review failed, keeping heuristic result")
			verdict = nil
		}
	}

	finding := advisory.Merge(heuristic, verdict)
	if len(posts) > 0 {
		finding.Promoters = social.BuildPromoters(posts)
	}

	rendered := report.Render(&finding, data, posts)

	p.persist(ctx, tokenAddress, data, &finding, rendered, log)

	if finding.IsPumpDump && p.cfg.Notifier != nil && p.flagEnabled(ctx, flags.KeyAlertingEnabled) {
		p.cfg.Notifier.Notify(ctx, alert.Subject(tokenAddress, finding.Confidence), rendered)
	}

	return &Result{Finding: &finding, Report: rendered, Data: data}, nil
}

func (p *Pipeline) persist(ctx context.Context, tokenAddress string, data *models.TokenData, finding *models.Finding, rendered string, log *logrus.Entry) {
	if p.cfg.Artifacts != nil {
		if _, err := p.cfg.Artifacts.SaveSnapshot(tokenAddress, data, finding); err != nil {
			log.WithError(err).Warn("Failed to save analysis snapshot")
		}
		if _, err := p.cfg.Artifacts.SaveReport(tokenAddress, rendered); err != nil {
			log.WithError(err).Warn("Failed to save report")
		}
	}

	if p.cfg.Cache != nil {
		if err := p.cfg.Cache.PushRecent(ctx, finding); err != nil {
			log.WithError(err).Warn("Failed to cache finding")
		}
		if err := p.cfg.Cache.PublishFinding(ctx, finding); err != nil {
			log.WithError(err).Warn("Failed to publish finding")
		}
	}

	if p.cfg.Store != nil {
		if err := p.cfg.Store.InsertFinding(ctx, finding); err != nil {
			log.WithError(err).Warn("Failed to archive finding")
		}
	}
}

// CycleResult summarizes one monitor sweep.
type CycleResult struct {
	Posts        int
	Social       models.SocialSummary
	Addresses    []string
	Results      []*Result
	Correlations []models.CorrelationFinding
}

// RunCycle performs one monitor sweep: search for pump language, extract
// candidate addresses, analyze each token, then correlate the aggregate
// social and on-chain signals.
func (p *Pipeline) RunCycle(ctx context.Context) (*CycleResult, error) {
	if p.cfg.Social == nil {
		return nil, fmt.Errorf("social searcher is required for monitor cycles")
	}

	posts, err := p.cfg.Social.SearchPumpLanguage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search pump language: %w", err)
	}

	summary, _ := social.Scan(posts)

	var addresses []string
	if p.cfg.Extractor != nil {
		addresses = p.cfg.Extractor.Addresses(ctx, posts)
	}
	summary.AddressCount = len(addresses)
	if len(addresses) > 5 {
		summary.AddressSample = addresses[:5]
	} else {
		summary.AddressSample = addresses
	}

	p.logger.WithFields(logrus.Fields{
		"posts":       len(posts),
		"high_signal": summary.HighSignalPosts,
		"addresses":   len(addresses),
	}).Info("Monitor sweep complete")

	cycle := &CycleResult{Posts: len(posts), Social: summary, Addresses: addresses}

	var transfers []models.Transfer
	for _, addr := range addresses {
		res, err := p.AnalyzeToken(ctx, addr)
		if err != nil {
			if errors.Is(err, ErrNoData) {
				p.logger.WithField("token", addr).Debug("No data for extracted address, skipping")
			} else {
				p.logger.WithError(err).WithField("token", addr).Warn("Token analysis failed")
			}
			continue
		}
		cycle.Results = append(cycle.Results, res)
		transfers = append(transfers, res.Data.Transfers...)
	}

	if p.cfg.Onchain != nil && p.cfg.Judge != nil {
		onchain := p.cfg.Onchain.Analyze(transfers)
		cycle.Correlations = p.cfg.Judge.Correlate(ctx, summary, onchain)
		p.alertOnCorrelations(ctx, cycle.Correlations)
	}

	return cycle, nil
}

// alertOnCorrelations fires for strong correlation findings: anything above
// 0.7 confidence, or a positive verdict above 0.5.
func (p *Pipeline) alertOnCorrelations(ctx context.Context, findings []models.CorrelationFinding) {
	if p.cfg.Notifier == nil || !p.flagEnabled(ctx, flags.KeyAlertingEnabled) {
		return
	}
	for _, f := range findings {
		if f.Confidence > 0.7 || (f.IsPumpDump && f.Confidence > 0.5) {
			subject := fmt.Sprintf("CORRELATION ALERT (Confidence: %.2f)", f.Confidence)
			p.cfg.Notifier.Notify(ctx, subject, f.Description)
		}
	}
}

func (p *Pipeline) flagEnabled(ctx context.Context, key string) bool {
	if p.cfg.Flags == nil {
		return true
	}
	return p.cfg.Flags.IsEnabled(ctx, key, true)
}
