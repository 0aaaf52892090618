package storage

import (
	"context"
	"io"

	"solana-pump-monitor/internal/models"
)

// FindingCache is the hot path for findings: a capped recent list plus
// real-time pub/sub fanout.
type FindingCache interface {
	// PushRecent prepends a finding to the capped recent-findings list.
	PushRecent(ctx context.Context, finding *models.Finding) error

	// RecentFindings returns up to limit findings, newest first.
	RecentFindings(ctx context.Context, limit int64) ([]*models.Finding, error)

	// PublishFinding fans a finding out to live subscribers.
	PublishFinding(ctx context.Context, finding *models.Finding) error

	// PublishAlert fans an alert message out to the alert channel.
	PublishAlert(ctx context.Context, subject, body string) error

	// Ping checks if the cache is reachable.
	Ping(ctx context.Context) error

	io.Closer
}

// FindingStore is the durable, queryable finding archive.
type FindingStore interface {
	// InsertFinding appends one finding row.
	InsertFinding(ctx context.Context, finding *models.Finding) error

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	io.Closer
}

// ArtifactStore persists per-token analysis snapshots and rendered reports
// on the filesystem for manual inspection.
type ArtifactStore interface {
	// SaveSnapshot writes the combined token data and finding as JSON and
	// returns the file path.
	SaveSnapshot(tokenAddress string, data *models.TokenData, finding *models.Finding) (string, error)

	// SaveReport writes the rendered text report and returns the file path.
	SaveReport(tokenAddress, report string) (string, error)

	// ReadReport returns the stored report for a token.
	ReadReport(tokenAddress string) (string, error)
}
