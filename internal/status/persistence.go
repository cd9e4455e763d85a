// Package status provides sync status tracking and persistence for festival lineups.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// StatusFileName is the name of the status file
	StatusFileName = "status.json"
)

// StatusPersistence defines the interface for sync status persistence
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus saves the sync status to persistent storage for a specific festival
	SaveStatus(ctx context.Context, festivalName string, status *SyncStatus) error

	// LoadStatus loads the sync status from persistent storage for a specific festival
	// Returns an empty SyncStatus if the file doesn't exist (first run)
	LoadStatus(ctx context.Context, festivalName string) (*SyncStatus, error)

	// LoadAllStatus loads sync status for all festivals
	LoadAllStatus(ctx context.Context) (map[string]*SyncStatus, error)
}

// fileStatusPersistence implements StatusPersistence using local filesystem
type fileStatusPersistence struct {
	basePath string
}

// NewFileStatusPersistence creates a new file-based status persistence
// basePath is the base directory where per-festival status files will be stored
func NewFileStatusPersistence(basePath string) StatusPersistence {
	return &fileStatusPersistence{
		basePath: basePath,
	}
}

// SaveStatus saves the sync status to a JSON file in a festival-specific directory
func (f *fileStatusPersistence) SaveStatus(_ context.Context, festivalName string, status *SyncStatus) error {
	festivalDir := filepath.Join(f.basePath, festivalName)
	if err := os.MkdirAll(festivalDir, 0750); err != nil {
		return fmt.Errorf("failed to create status directory for festival '%s': %w", festivalName, err)
	}

	filePath := filepath.Join(festivalDir, StatusFileName)

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status data for festival '%s': %w", festivalName, err)
	}

	// Write to temporary file first for atomic operation
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file for festival '%s': %w", festivalName, err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file for festival '%s': %w", festivalName, err)
	}

	return nil
}

// LoadStatus loads the sync status from a JSON file for a specific festival
// Returns an empty SyncStatus if the file doesn't exist
func (f *fileStatusPersistence) LoadStatus(_ context.Context, festivalName string) (*SyncStatus, error) {
	filePath := filepath.Join(f.basePath, festivalName, StatusFileName)

	// #nosec G304 -- filePath is constructed from trusted internal sources
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist - this is OK for first run
			return &SyncStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status file for festival '%s': %w", festivalName, err)
	}

	var status SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data for festival '%s': %w", festivalName, err)
	}

	return &status, nil
}

// LoadAllStatus loads sync status for all festivals
func (f *fileStatusPersistence) LoadAllStatus(ctx context.Context) (map[string]*SyncStatus, error) {
	result := make(map[string]*SyncStatus)

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			// Base directory doesn't exist yet, return empty map
			return result, nil
		}
		return nil, fmt.Errorf("failed to read status directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		festivalName := entry.Name()
		status, err := f.LoadStatus(ctx, festivalName)
		if err != nil {
			// Skip unreadable entries so one bad file does not hide the rest.
			continue
		}

		result[festivalName] = status
	}

	return result, nil
}
