package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"solana-pump-monitor/internal/advisory"
	"solana-pump-monitor/internal/analysis"
	"solana-pump-monitor/internal/config"
	"solana-pump-monitor/internal/pipeline"
	"solana-pump-monitor/internal/social"
	"solana-pump-monitor/internal/solscan"
	"solana-pump-monitor/internal/storage"
)

// analyze runs a one-shot analysis of a single token and prints the report.
// Unlike the monitor it needs no Redis or ClickHouse: artifacts land on the
// local filesystem only.
func main() {
	noAdvisory := flag.Bool("no-advisory", false, "skip the LLM second opinion")
	noSocial := flag.Bool("no-social", false, "skip the Twitter search")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.WarnLevel)

	loadEnv(logger)

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <token-address>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	tokenAddress := flag.Arg(0)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if cfg.SolscanAPIKey == "" {
		logger.Fatal("SOLSCAN_API_KEY is required")
	}

	var socialClient pipeline.SocialSearcher
	if cfg.TwitterAPIKey != "" && !*noSocial {
		socialClient = social.NewClient(social.ClientConfig{
			APIKey:      cfg.TwitterAPIKey,
			BaseURL:     cfg.TwitterBaseURL,
			HTTPTimeout: cfg.HTTPTimeout,
			Logger:      logger,
		})
	}

	var advisor pipeline.Reviewer
	if cfg.OpenRouterAPIKey != "" && !*noAdvisory {
		a, err := advisory.NewAdvisor(advisory.AdvisorConfig{
			OpenRouterAPIKey: cfg.OpenRouterAPIKey,
			Model:            cfg.AdvisoryModel,
			Timeout:          cfg.AdvisoryTimeout,
			Logger:           logger,
		})
		if err != nil {
			logger.WithError(err).Warn("failed to initialize advisor")
		} else {
			advisor = a
		}
	}

	p, err := pipeline.New(pipeline.Config{
		Fetcher: solscan.NewClient(solscan.ClientConfig{
			APIKey:       cfg.SolscanAPIKey,
			BaseURL:      cfg.SolscanBaseURL,
			HTTPTimeout:  cfg.HTTPTimeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
			Logger:       logger,
		}),
		Scorer:    analysis.NewScorer(analysis.ScorerConfig{Logger: logger}),
		Social:    socialClient,
		Advisor:   advisor,
		Artifacts: storage.NewFileArtifactStore(cfg.DataDir, logger),
		Logger:    logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to build pipeline")
	}

	res, err := p.AnalyzeToken(context.Background(), tokenAddress)
	if err != nil {
		logger.WithError(err).Fatal("analysis failed")
	}

	os.Stdout.WriteString(res.Report)
}

func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Debugf("no .env file found at %s, using system environment variables", envPath)
	}
}
