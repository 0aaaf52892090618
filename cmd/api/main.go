package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"solana-pump-monitor/internal/advisory"
	"solana-pump-monitor/internal/analysis"
	"solana-pump-monitor/internal/config"
	"solana-pump-monitor/internal/flags"
	"solana-pump-monitor/internal/pipeline"
	"solana-pump-monitor/internal/server"
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
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	cache, err := storage.NewRedisCache(cfg.RedisAddr, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer cache.Close()

	flagStore, err := flags.NewStore(cache.Client())
	if err != nil {
		logger.WithError(err).Fatal("failed to create flags store")
	}

	// ClickHouse is optional for the API: without it the archive stage is
	// skipped and reads come from the Redis cache only.
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
		defer ch.Close()
	}

	artifacts := storage.NewFileArtifactStore(cfg.DataDir, logger)

	var fetcher pipeline.TokenFetcher
	if cfg.SolscanAPIKey != "" {
		fetcher = solscan.NewClient(solscan.ClientConfig{
			APIKey:       cfg.SolscanAPIKey,
			BaseURL:      cfg.SolscanBaseURL,
			HTTPTimeout:  cfg.HTTPTimeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
			Logger:       logger,
		})
	}

	var socialClient pipeline.SocialSearcher
	if cfg.TwitterAPIKey != "" {
		socialClient = social.NewClient(social.ClientConfig{
			APIKey:      cfg.TwitterAPIKey,
			BaseURL:     cfg.TwitterBaseURL,
			HTTPTimeout: cfg.HTTPTimeout,
			Logger:      logger,
		})
	}

	var advisor pipeline.Reviewer
	if cfg.OpenRouterAPIKey != "" {
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

	// On-demand analysis is only offered when the chain explorer key is
	// configured.
	var analyzer server.Analyzer
	if fetcher != nil {
		p, err := pipeline.New(pipeline.Config{
			Fetcher: fetcher,
			Scorer: analysis.NewScorer(analysis.ScorerConfig{
				Thresholds: thresholdsFromConfig(cfg),
				Logger:     logger,
			}),
			Social:    socialClient,
			Advisor:   advisor,
			Cache:     cache,
			Store:     store,
			Artifacts: artifacts,
			Flags:     flagStore,
			Logger:    logger,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to build pipeline")
		}
		analyzer = p
	}

	h := &server.Handlers{
		Cache:     cache,
		Store:     store,
		Artifacts: artifacts,
		Flags:     flagStore,
		Analyzer:  analyzer,
		DevMode:   cfg.DevMode,
		Logger:    logger,
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	_ = srv.WaitClosed(context.Background())
}

func thresholdsFromConfig(cfg *config.Config) analysis.Thresholds {
	t := analysis.DefaultThresholds()
	t.SellRatio = cfg.SellRatioThreshold
	t.SpikeMultiplier = cfg.SpikeMultiplier
	t.DumpRatio = cfg.DumpRatioThreshold
	t.WhaleSupplyFraction = cfg.WhaleSupplyFraction
	t.MinTransactions = cfg.MinTransactions
	return t
}
