package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"solana-pump-monitor/internal/models"
)

// ClickHouseConfig holds the connection settings for the finding archive.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string

	Logger *logrus.Logger
}

// ClickHouseStore implements FindingStore over the findings table:
//
//	CREATE TABLE findings (
//	    token_address  String,
//	    created_at     DateTime,
//	    is_pump_dump   UInt8,
//	    confidence     Float64,
//	    reasons        Array(String),
//	    total_txns     UInt32,
//	    buy_txns       UInt32,
//	    sell_txns      UInt32,
//	    unique_wallets UInt32,
//	    spike_factor   Float64,
//	    dumpers_json   String,
//	    whales_json    String,
//	    advisory_json  String
//	) ENGINE = MergeTree ORDER BY (token_address, created_at)
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logrus.Logger
}

func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	cfg.Logger.WithFields(logrus.Fields{
		"addr":     cfg.Addr,
		"database": cfg.Database,
	}).Info("Connected to ClickHouse")

	return &ClickHouseStore{conn: conn, logger: cfg.Logger}, nil
}

func (c *ClickHouseStore) InsertFinding(ctx context.Context, finding *models.Finding) error {
	dumpers, err := json.Marshal(finding.Dumpers)
	if err != nil {
		return fmt.Errorf("failed to marshal dumpers: %w", err)
	}
	whales, err := json.Marshal(finding.Whales)
	if err != nil {
		return fmt.Errorf("failed to marshal whales: %w", err)
	}
	advisory := []byte("{}")
	if finding.Advisory != nil {
		if advisory, err = json.Marshal(finding.Advisory); err != nil {
			return fmt.Errorf("failed to marshal advisory: %w", err)
		}
	}

	query := `
		INSERT INTO findings (
			token_address, created_at, is_pump_dump, confidence, reasons,
			total_txns, buy_txns, sell_txns, unique_wallets, spike_factor,
			dumpers_json, whales_json, advisory_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	isPumpDump := uint8(0)
	if finding.IsPumpDump {
		isPumpDump = 1
	}

	err = c.conn.Exec(ctx, query,
		finding.TokenAddress,
		finding.CreatedAt,
		isPumpDump,
		finding.Confidence,
		finding.Reasons,
		uint32(finding.Transactions.Total),
		uint32(finding.Transactions.Buys),
		uint32(finding.Transactions.Sells),
		uint32(finding.Transactions.UniqueWallets),
		finding.Volume.SpikeFactor,
		string(dumpers),
		string(whales),
		string(advisory),
	)
	if err != nil {
		return fmt.Errorf("failed to insert finding: %w", err)
	}
	return nil
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
