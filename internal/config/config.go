package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Solscan fetch settings
	SolscanAPIKey  string
	SolscanBaseURL string

	// Twitter fetch settings
	TwitterAPIKey  string
	TwitterBaseURL string

	// Advisory LLM settings (OpenRouter, OpenAI-compatible)
	OpenRouterAPIKey string
	AdvisoryModel    string
	AdvisoryTimeout  time.Duration

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// API server settings
	APIAddr string
	APIKey  string
	DevMode bool

	// Monitor cycle settings
	CheckInterval  time.Duration
	LookbackWindow time.Duration

	// Artifact storage
	DataDir string

	// Alerting
	AlertRecipients []string
	AlertSender     string
	SMTPAddr        string

	// Scoring thresholds. Defaults match the tuned constants of the
	// original heuristics; overridable for experimentation.
	SellRatioThreshold  float64
	SpikeMultiplier     float64
	DumpRatioThreshold  float64
	WhaleSupplyFraction float64
	MinTransactions     int
	SentimentThreshold  float64
	LargeTransferAmount float64
}

func Load() *Config {
	return &Config{
		SolscanAPIKey:  getEnv("SOLSCAN_API_KEY", ""),
		SolscanBaseURL: getEnv("SOLSCAN_BASE_URL", "https://pro-api.solscan.io/v2.0"),

		TwitterAPIKey:  getEnv("TWITTER_API_KEY", ""),
		TwitterBaseURL: getEnv("TWITTER_BASE_URL", "https://api.twitterapi.io"),

		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		AdvisoryModel:    getEnv("ADVISORY_MODEL", "openai/gpt-4o-mini"),
		AdvisoryTimeout:  getDurationEnv("ADVISORY_TIMEOUT", 45*time.Second),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "pumpmonitor"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 3),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		CheckInterval:  getDurationEnv("CHECK_INTERVAL", 5*time.Minute),
		LookbackWindow: getDurationEnv("LOOKBACK_WINDOW", time.Hour),

		DataDir: getEnv("DATA_DIR", "./data"),

		AlertRecipients: getListEnv("ALERT_EMAIL_RECIPIENTS", nil),
		AlertSender:     getEnv("ALERT_EMAIL_SENDER", "alerts@pump-monitor.local"),
		SMTPAddr:        getEnv("SMTP_ADDR", "localhost:25"),

		SellRatioThreshold:  getFloatEnv("SELL_RATIO_THRESHOLD", 0.7),
		SpikeMultiplier:     getFloatEnv("VOLUME_SPIKE_MULTIPLIER", 3.0),
		DumpRatioThreshold:  getFloatEnv("DUMP_RATIO_THRESHOLD", 1.5),
		WhaleSupplyFraction: getFloatEnv("WHALE_SUPPLY_FRACTION", 0.10),
		MinTransactions:     getIntEnv("MIN_TRANSACTIONS", 10),
		SentimentThreshold:  getFloatEnv("SENTIMENT_THRESHOLD", 0.7),
		LargeTransferAmount: getFloatEnv("LARGE_TRANSFER_AMOUNT", 1000),
	}
}

// Validate checks configuration values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must be >= 0")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.MinTransactions < 1 {
		return fmt.Errorf("MIN_TRANSACTIONS must be >= 1")
	}
	if c.SpikeMultiplier <= 1 {
		return fmt.Errorf("VOLUME_SPIKE_MULTIPLIER must be > 1")
	}
	if c.WhaleSupplyFraction <= 0 || c.WhaleSupplyFraction >= 1 {
		return fmt.Errorf("WHALE_SUPPLY_FRACTION must be in (0, 1)")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getListEnv(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
