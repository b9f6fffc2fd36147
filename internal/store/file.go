package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thetechguyfromvietnam/tax-info/internal/models"
	"go.uber.org/zap"
)

// FileStore keeps the current record in a single JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a FileStore backed by the given file path
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Load reads the stored record; a missing file means no record yet.
func (s *FileStore) Load() (*models.TaxRecord, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		s.logger.Error("Failed to read record file",
			zap.String("path", s.path),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var record models.TaxRecord
	if err := json.Unmarshal(content, &record); err != nil {
		s.logger.Error("Failed to parse record file",
			zap.String("path", s.path),
			zap.Error(err))
		return nil, fmt.Errorf("failed to parse record file: %w", err)
	}

	return &record, nil
}

// Save replaces the stored record, creating parent directories as needed.
func (s *FileStore) Save(record *models.TaxRecord) error {
	content, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, content, 0644); err != nil {
		s.logger.Error("Failed to write record file",
			zap.String("path", s.path),
			zap.Error(err))
		return fmt.Errorf("failed to write record file: %w", err)
	}

	s.logger.Debug("Record saved",
		zap.String("path", s.path),
		zap.String("tax_code", record.TaxCode))

	return nil
}
