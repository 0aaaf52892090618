package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"solana-pump-monitor/internal/advisory"
	"solana-pump-monitor/internal/alert"
	"solana-pump-monitor/internal/analysis"
	"solana-pump-monitor/internal/config"
	"solana-pump-monitor/internal/correlation"
	"solana-pump-monitor/internal/flags"
	"solana-pump-monitor/internal/pipeline"
	"solana-pump-monitor/internal/social"
	"solana-pump-monitor/internal/solscan"
	"solana-pump-monitor/internal/storage"
)

func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

func main() {
	once := flag.Bool("once", false, "run a single monitor cycle and exit")
	token := flag.String("token", "", "analyze a single token address and exit")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if cfg.SolscanAPIKey == "" {
		logger.Fatal("SOLSCAN_API_KEY is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	p := buildPipeline(ctx, cfg, logger)

	if *token != "" {
		res, err := p.AnalyzeToken(ctx, *token)
		if err != nil {
			logger.WithError(err).Fatal("analysis failed")
		}
		os.Stdout.WriteString(res.Report)
		return
	}

	if cfg.TwitterAPIKey == "" {
		logger.Fatal("TWITTER_API_KEY is required for monitor cycles")
	}

	runCycle := func() {
		cycle, err := p.RunCycle(ctx)
		if err != nil {
			logger.WithError(err).Error("monitor cycle failed")
			return
		}
		logger.WithFields(logrus.Fields{
			"analyzed":     len(cycle.Results),
			"correlations": len(cycle.Correlations),
		}).Info("monitor cycle finished")
	}

	runCycle()
	if *once {
		return
	}

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()
	logger.WithField("interval", cfg.CheckInterval).Info("monitor started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCycle()
		}
	}
}

func buildPipeline(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *pipeline.Pipeline {
	fetcher := solscan.NewClient(solscan.ClientConfig{
		APIKey:       cfg.SolscanAPIKey,
		BaseURL:      cfg.SolscanBaseURL,
		HTTPTimeout:  cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	var socialClient pipeline.SocialSearcher
	if cfg.TwitterAPIKey != "" {
		socialClient = social.NewClient(social.ClientConfig{
			APIKey:      cfg.TwitterAPIKey,
			BaseURL:     cfg.TwitterBaseURL,
			HTTPTimeout: cfg.HTTPTimeout,
			Logger:      logger,
		})
	}

	// One shared LLM backs the extractor and the correlation judge; the
	// advisor keeps its own client with a per-review timeout.
	var llm llms.Model
	var advisor pipeline.Reviewer
	if cfg.OpenRouterAPIKey != "" {
		model, err := openai.New(
			openai.WithToken(cfg.OpenRouterAPIKey),
			openai.WithBaseURL("https://openrouter.ai/api/v1"),
			openai.WithModel(cfg.AdvisoryModel),
		)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize LLM, falling back to regex and rules")
		} else {
			llm = model
		}

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

	cache, err := storage.NewRedisCache(cfg.RedisAddr, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	flagStore, err := flags.NewStore(cache.Client())
	if err != nil {
		logger.WithError(err).Fatal("failed to create flags store")
	}

	var store storage.FindingStore
	if ch, err := storage.NewClickHouseStore(ctx, storage.ClickHouseConfig{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
		Logger:   logger,
	}); err != nil {
		logger.WithError(err).Warn("ClickHouse unavailable, findings will not be archived")
	} else {
		store = ch
	}

	notifier := alert.NewNotifier(alert.NotifierConfig{
		SMTPAddr:   cfg.SMTPAddr,
		Sender:     cfg.AlertSender,
		Recipients: cfg.AlertRecipients,
		Publisher:  cache,
		Logger:     logger,
	})

	thresholds := analysis.DefaultThresholds()
	thresholds.SellRatio = cfg.SellRatioThreshold
	thresholds.SpikeMultiplier = cfg.SpikeMultiplier
	thresholds.DumpRatio = cfg.DumpRatioThreshold
	thresholds.WhaleSupplyFraction = cfg.WhaleSupplyFraction
	thresholds.MinTransactions = cfg.MinTransactions

	p, err := pipeline.New(pipeline.Config{
		Fetcher: fetcher,
		Scorer: analysis.NewScorer(analysis.ScorerConfig{
			Thresholds: thresholds,
			Logger:     logger,
		}),
		Social:    socialClient,
		Advisor:   advisor,
		Extractor: social.NewExtractor(social.ExtractorConfig{LLM: llm, Logger: logger}),
		Onchain: correlation.NewOnchainAnalyzer(correlation.OnchainAnalyzerConfig{
			LargeTransferAmount: cfg.LargeTransferAmount,
			SpikeFactor:         cfg.SpikeMultiplier,
			Logger:              logger,
		}),
		Judge: correlation.NewJudge(correlation.JudgeConfig{
			LLM:                llm,
			SentimentThreshold: cfg.SentimentThreshold,
			Logger:             logger,
		}),
		Cache:     cache,
		Store:     store,
		Artifacts: storage.NewFileArtifactStore(cfg.DataDir, logger),
		Notifier:  notifier,
		Flags:     flagStore,
		Logger:    logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to build pipeline")
	}
	return p
}
