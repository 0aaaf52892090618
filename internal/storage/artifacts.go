package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"solana-pump-monitor/internal/models"
)

// FileArtifactStore implements ArtifactStore under a data directory:
// snapshots in data/analysis, reports in data/reports.
type FileArtifactStore struct {
	dataDir string
	logger  *logrus.Logger
}

func NewFileArtifactStore(dataDir string, logger *logrus.Logger) *FileArtifactStore {
	if dataDir == "" {
		dataDir = "./data"
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &FileArtifactStore{dataDir: dataDir, logger: logger}
}

// snapshot is the on-disk JSON shape combining the fetched data with the
// finding derived from it.
type snapshot struct {
	TokenData *models.TokenData `json:"token_data"`
	Finding   *models.Finding   `json:"finding"`
}

func (s *FileArtifactStore) SaveSnapshot(tokenAddress string, data *models.TokenData, finding *models.Finding) (string, error) {
	path := filepath.Join(s.dataDir, "analysis",
		fmt.Sprintf("token_%s_analysis.json", sanitizeAddress(tokenAddress)))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create analysis dir: %w", err)
	}

	payload, err := json.MarshalIndent(snapshot{TokenData: data, Finding: finding}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	s.logger.WithField("path", path).Info("Saved analysis snapshot")
	return path, nil
}

func (s *FileArtifactStore) SaveReport(tokenAddress, report string) (string, error) {
	path := s.reportPath(tokenAddress)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	s.logger.WithField("path", path).Info("Saved report")
	return path, nil
}

func (s *FileArtifactStore) ReadReport(tokenAddress string) (string, error) {
	data, err := os.ReadFile(s.reportPath(tokenAddress))
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}
	return string(data), nil
}

func (s *FileArtifactStore) reportPath(tokenAddress string) string {
	return filepath.Join(s.dataDir, "reports",
		fmt.Sprintf("token_%s_report.txt", sanitizeAddress(tokenAddress)))
}

// sanitizeAddress makes an address safe to embed in a file name. Addresses
// come from untrusted post text, so path separators must not survive.
func sanitizeAddress(addr string) string {
	replacer := strings.NewReplacer("/", "_", ":", "_", "\\", "_", "..", "_")
	return replacer.Replace(addr)
}
