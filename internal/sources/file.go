package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/festivalfriend/lineup-server/internal/config"
)

// fileSourceHandler reads lineups from local roster files
type fileSourceHandler struct{}

var _ SourceHandler = (*fileSourceHandler)(nil)

// NewFileSourceHandler creates a handler that reads local roster files.
func NewFileSourceHandler() SourceHandler {
	return &fileSourceHandler{}
}

// FetchLineup implements SourceHandler.FetchLineup
func (h *fileSourceHandler) FetchLineup(_ context.Context, festival *config.FestivalConfig) (*FetchResult, error) {
	if err := h.Validate(festival); err != nil {
		return nil, err
	}

	cleanPath := filepath.Clean(festival.File.Path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	artists := ParseRoster(string(data))
	if len(artists) == 0 {
		return nil, fmt.Errorf("roster file %s contains no artists", cleanPath)
	}
	return NewFetchResult(festival.Name, "", artists), nil
}

// Validate implements SourceHandler.Validate
func (*fileSourceHandler) Validate(festival *config.FestivalConfig) error {
	if festival == nil || festival.File == nil {
		return fmt.Errorf("file configuration is required")
	}
	if festival.File.Path == "" {
		return fmt.Errorf("file.path is required")
	}
	return nil
}

// CurrentHash implements SourceHandler.CurrentHash
func (h *fileSourceHandler) CurrentHash(ctx context.Context, festival *config.FestivalConfig) (string, error) {
	result, err := h.FetchLineup(ctx, festival)
	if err != nil {
		return "", err
	}
	return result.Hash, nil
}
