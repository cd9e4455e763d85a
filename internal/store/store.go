// Package store persists the catalog document to the local filesystem.
// Writes go through a temporary file and an atomic rename so a crash never
// leaves a half-written catalog behind.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/festivalfriend/lineup-server/internal/catalog"
	"github.com/festivalfriend/lineup-server/internal/classify"
	"github.com/festivalfriend/lineup-server/internal/sources"
)

const (
	// CatalogFileName is the name of the catalog data file
	CatalogFileName = "catalog.json"
)

// Store defines the interface for catalog persistence
type Store interface {
	// Save writes the catalog document to persistent storage
	Save(ctx context.Context, cat *catalog.Catalog) error

	// Load reads the catalog document, returning an empty catalog when
	// none has been written yet
	Load(ctx context.Context) (*catalog.Catalog, error)

	// MergeLineup folds a fetched lineup and its classifications into the
	// stored catalog and persists the result
	MergeLineup(ctx context.Context, result *sources.FetchResult, classifications map[string]classify.Classification) (*catalog.Catalog, error)

	// Delete removes the catalog document from persistent storage
	Delete(ctx context.Context) error
}

// fileStore implements Store using the local filesystem
type fileStore struct {
	basePath string
	now      func() time.Time
}

var _ Store = (*fileStore)(nil)

// NewFileStore creates a file-based catalog store rooted at basePath.
func NewFileStore(basePath string) Store {
	return &fileStore{
		basePath: basePath,
		now:      time.Now,
	}
}

// Save writes the catalog to a JSON file
func (f *fileStore) Save(_ context.Context, cat *catalog.Catalog) error {
	if err := os.MkdirAll(f.basePath, 0750); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	now := f.now().UTC()
	cat.Metadata.Version = catalog.DocumentVersion
	cat.Metadata.LastModified = &now

	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog data: %w", err)
	}

	filePath := filepath.Join(f.basePath, CatalogFileName)

	// Write to temporary file first for atomic operation
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary catalog file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename catalog file: %w", err)
	}

	return nil
}

// Load reads and parses the catalog file
func (f *fileStore) Load(_ context.Context) (*catalog.Catalog, error) {
	filePath := filepath.Join(f.basePath, CatalogFileName)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: start from an empty catalog.
			return catalog.NewCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cat catalog.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog data: %w", err)
	}
	if cat.Artists == nil {
		cat.Artists = make(map[string]*catalog.Artist)
	}

	return &cat, nil
}

// MergeLineup implements Store.MergeLineup
func (f *fileStore) MergeLineup(
	ctx context.Context,
	result *sources.FetchResult,
	classifications map[string]classify.Classification,
) (*catalog.Catalog, error) {
	cat, err := f.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := f.now().UTC()
	ref := catalog.FestivalRef{
		Name:        result.FestivalName,
		URL:         result.FestivalURL,
		DateScraped: now,
	}

	for _, name := range result.Artists {
		classification, ok := classifications[name]
		if !ok {
			classification = classify.Unknown()
		}
		mergeArtist(cat, name, classification, ref, now)
	}

	mergeFestival(cat, catalog.Festival{
		Name:        result.FestivalName,
		URL:         result.FestivalURL,
		ArtistCount: len(result.Artists),
		DateScraped: now,
	})

	if err := f.Save(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Delete removes the catalog file
func (f *fileStore) Delete(_ context.Context) error {
	filePath := filepath.Join(f.basePath, CatalogFileName)

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete catalog file: %w", err)
	}

	return nil
}

// mergeArtist inserts or updates one artist entry. An existing entry keeps
// its known classification; the unknown placeholder is upgraded when the
// new classification carries real genres.
func mergeArtist(
	cat *catalog.Catalog,
	name string,
	classification classify.Classification,
	ref catalog.FestivalRef,
	now time.Time,
) {
	key := catalog.NormalizeKey(name)
	existing, ok := cat.Artists[key]
	if !ok {
		cat.Artists[key] = &catalog.Artist{
			Name:        name,
			Genres:      classification.Genres,
			Timbre:      classification.Timbre,
			Festivals:   []catalog.FestivalRef{ref},
			FirstSeen:   now,
			LastUpdated: now,
		}
		return
	}

	if !existing.HasKnownGenres() && len(classification.Genres) > 0 {
		existing.Genres = classification.Genres
		existing.Timbre = classification.Timbre
	}
	if !existing.AppearsAt(ref.Name) {
		existing.Festivals = append(existing.Festivals, ref)
	}
	existing.LastUpdated = now
}

// mergeFestival inserts or replaces the festival summary entry
func mergeFestival(cat *catalog.Catalog, festival catalog.Festival) {
	for i := range cat.Festivals {
		if cat.Festivals[i].Name == festival.Name {
			cat.Festivals[i] = festival
			return
		}
	}
	cat.Festivals = append(cat.Festivals, festival)
}
