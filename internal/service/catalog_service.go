package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/festivalfriend/lineup-server/internal/catalog"
	"github.com/festivalfriend/lineup-server/internal/filtering"
	"github.com/festivalfriend/lineup-server/internal/store"
)

// defaultCacheDuration is how long a loaded catalog is served before the
// store is consulted again.
const defaultCacheDuration = 30 * time.Second

// catalogSvc implements the CatalogService interface
type catalogSvc struct {
	mu    sync.RWMutex // Protects catalogData, lastFetch
	store store.Store

	catalogData *catalog.Catalog

	lastFetch     time.Time
	cacheDuration time.Duration

	filterService filtering.FilterService
}

var _ CatalogService = (*catalogSvc)(nil)

// ServiceOption is a functional option for configuring the catalogSvc
type ServiceOption func(*catalogSvc)

// WithCacheDuration sets a custom cache duration for catalog data
func WithCacheDuration(duration time.Duration) ServiceOption {
	return func(s *catalogSvc) {
		s.cacheDuration = duration
	}
}

// WithFilterService sets a custom filter service
func WithFilterService(fs filtering.FilterService) ServiceOption {
	return func(s *catalogSvc) {
		s.filterService = fs
	}
}

// New creates a new catalog service backed by the given store.
func New(ctx context.Context, catalogStore store.Store, opts ...ServiceOption) (CatalogService, error) {
	if catalogStore == nil {
		return nil, fmt.Errorf("catalog store is required")
	}

	s := &catalogSvc{
		store:         catalogStore,
		cacheDuration: defaultCacheDuration,
		filterService: filtering.NewDefaultFilterService(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.loadCatalogData(ctx); err != nil {
		slog.Warn("Failed to load initial catalog data", "error", err)
		// Don't fail service creation, allow it to retry later
	}

	return s, nil
}

// loadCatalogDataLocked loads catalog data from the store.
// Caller must hold s.mu write lock.
func (s *catalogSvc) loadCatalogDataLocked(ctx context.Context) error {
	data, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog data: %w", err)
	}

	s.catalogData = data
	s.lastFetch = time.Now()

	slog.Debug("Loaded catalog data", "artist_count", len(data.Artists))
	return nil
}

func (s *catalogSvc) loadCatalogData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCatalogDataLocked(ctx)
}

// refreshDataIfNeeded reloads the catalog if the cache has expired
func (s *catalogSvc) refreshDataIfNeeded(ctx context.Context) error {
	s.mu.RLock()
	needsRefresh := time.Since(s.lastFetch) > s.cacheDuration
	hasData := s.catalogData != nil
	s.mu.RUnlock()

	if needsRefresh {
		s.mu.Lock()
		defer s.mu.Unlock()
		// Double-check after acquiring write lock
		if time.Since(s.lastFetch) > s.cacheDuration {
			if err := s.loadCatalogDataLocked(ctx); err != nil {
				slog.Warn("Failed to refresh catalog data", "error", err)
				// Continue with stale data if available
				if !hasData {
					return err
				}
			}
		}
	}
	return nil
}

// snapshot returns the cached catalog after an optional refresh.
func (s *catalogSvc) snapshot(ctx context.Context) (*catalog.Catalog, error) {
	if err := s.refreshDataIfNeeded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalogData == nil {
		return nil, fmt.Errorf("catalog data not available")
	}
	return s.catalogData, nil
}

// CheckReadiness implements CatalogService.CheckReadiness
func (s *catalogSvc) CheckReadiness(ctx context.Context) error {
	s.mu.RLock()
	hasData := s.catalogData != nil
	s.mu.RUnlock()

	if !hasData {
		if err := s.loadCatalogData(ctx); err != nil {
			return fmt.Errorf("catalog data not available: %w", err)
		}
	}
	return nil
}

// GetCatalog implements CatalogService.GetCatalog
func (s *catalogSvc) GetCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return s.snapshot(ctx)
}

// ListArtists implements CatalogService.ListArtists.
//
// Entries are scoped to a festival when requested, narrowed by name search,
// then run through the group-filter visibility computation. The visible
// count and its label describe the filtered listing before any limit.
func (s *catalogSvc) ListArtists(ctx context.Context, opts ...Option) (*ArtistListing, error) {
	options := &ListArtistsOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	cat, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var entries []*catalog.Artist
	if options.Festival != "" {
		if cat.FestivalByName(options.Festival) == nil {
			return nil, fmt.Errorf("%w: %s", ErrFestivalNotFound, options.Festival)
		}
		entries = cat.ArtistsForFestival(options.Festival)
	} else {
		entries = cat.SortedArtists()
	}
	totalCount := len(entries)

	if options.Search != "" {
		needle := strings.ToLower(strings.TrimSpace(options.Search))
		matched := make([]*catalog.Artist, 0, len(entries))
		for _, a := range entries {
			if strings.Contains(strings.ToLower(a.Name), needle) {
				matched = append(matched, a)
			}
		}
		entries = matched
	}

	result := s.filterService.ComputeVisibility(ctx, options.Genres, options.Timbres, entries)
	visible := result.VisibleEntries()

	listing := &ArtistListing{
		Artists:      visible,
		TotalCount:   totalCount,
		VisibleCount: result.VisibleCount,
		CountLabel:   result.CountLabel(),
	}
	if options.Limit > 0 && len(listing.Artists) > options.Limit {
		listing.Artists = listing.Artists[:options.Limit]
	}
	return listing, nil
}

// GetArtist implements CatalogService.GetArtist
func (s *catalogSvc) GetArtist(ctx context.Context, name string) (*ArtistDetail, error) {
	cat, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	artist, ok := cat.Artists[catalog.NormalizeKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArtistNotFound, name)
	}

	return &ArtistDetail{
		Artist:  artist,
		Similar: catalog.SimilarArtists(artist, cat.Artists, catalog.DefaultSimilarLimit),
	}, nil
}

// ListFestivals implements CatalogService.ListFestivals
func (s *catalogSvc) ListFestivals(ctx context.Context) ([]catalog.Festival, error) {
	cat, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Festivals, nil
}

// GetFestival implements CatalogService.GetFestival
func (s *catalogSvc) GetFestival(ctx context.Context, name string) (*FestivalDetail, error) {
	cat, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	festival := cat.FestivalByName(name)
	if festival == nil {
		return nil, fmt.Errorf("%w: %s", ErrFestivalNotFound, name)
	}

	return &FestivalDetail{
		Festival: *festival,
		Artists:  cat.ArtistsForFestival(name),
	}, nil
}

// ListTags implements CatalogService.ListTags
func (s *catalogSvc) ListTags(ctx context.Context) (*TagVocabulary, error) {
	cat, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &TagVocabulary{
		Genres:  cat.Genres(),
		Timbres: cat.Timbres(),
	}, nil
}

// Invalidate implements CatalogService.Invalidate
func (s *catalogSvc) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFetch = time.Time{}
}
