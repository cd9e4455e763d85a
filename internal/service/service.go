// Package service provides the business logic for the lineup catalog API
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/festivalfriend/lineup-server/internal/catalog"
)

var (
	// ErrArtistNotFound is returned when an artist is not found
	ErrArtistNotFound = errors.New("artist not found")
	// ErrFestivalNotFound is returned when a festival is not found
	ErrFestivalNotFound = errors.New("festival not found")
	// ErrJobNotFound is returned when a background job is not found
	ErrJobNotFound = errors.New("job not found")
)

// CatalogService defines the interface for catalog read operations
type CatalogService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// GetCatalog returns the full catalog document
	GetCatalog(ctx context.Context) (*catalog.Catalog, error)

	// ListArtists returns the artist listing with group-filter visibility applied
	ListArtists(ctx context.Context, opts ...Option) (*ArtistListing, error)

	// GetArtist returns a specific artist by name, with similar artists
	GetArtist(ctx context.Context, name string) (*ArtistDetail, error)

	// ListFestivals returns all festivals known to the catalog
	ListFestivals(ctx context.Context) ([]catalog.Festival, error)

	// GetFestival returns a specific festival by name with its lineup
	GetFestival(ctx context.Context, name string) (*FestivalDetail, error)

	// ListTags returns the distinct genre and timbre vocabularies
	ListTags(ctx context.Context) (*TagVocabulary, error)

	// Invalidate discards the cached catalog so the next read reloads it
	Invalidate()
}

// ArtistListing is the result of a ListArtists operation. Artists are the
// visible entries in canonical order; VisibleCount counts them before any
// limit is applied, and CountLabel is its display form, e.g. "(12)".
type ArtistListing struct {
	Artists      []*catalog.Artist
	TotalCount   int
	VisibleCount int
	CountLabel   string
}

// ArtistDetail is one artist together with its nearest neighbours by tag
// similarity.
type ArtistDetail struct {
	Artist  *catalog.Artist
	Similar []*catalog.Artist
}

// FestivalDetail is one festival together with its lineup.
type FestivalDetail struct {
	Festival catalog.Festival
	Artists  []*catalog.Artist
}

// TagVocabulary holds the distinct tag identifiers per filter group.
type TagVocabulary struct {
	Genres  []string
	Timbres []string
}

// ListArtistsOptions is the options for the ListArtists operation
type ListArtistsOptions struct {
	Genres   []string
	Timbres  []string
	Festival string
	Search   string
	Limit    int
}

// Option is a function that sets an option for the ListArtists operation
type Option func(*ListArtistsOptions) error

// WithGenres sets the genre group selection for the ListArtists operation
func WithGenres(genres []string) Option {
	return func(o *ListArtistsOptions) error {
		o.Genres = genres
		return nil
	}
}

// WithTimbres sets the timbre group selection for the ListArtists operation
func WithTimbres(timbres []string) Option {
	return func(o *ListArtistsOptions) error {
		o.Timbres = timbres
		return nil
	}
}

// WithFestival scopes the ListArtists operation to one festival's lineup
func WithFestival(name string) Option {
	return func(o *ListArtistsOptions) error {
		if name == "" {
			return fmt.Errorf("invalid festival name: %s", name)
		}
		o.Festival = name
		return nil
	}
}

// WithSearch sets the name search for the ListArtists operation
func WithSearch(search string) Option {
	return func(o *ListArtistsOptions) error {
		if strings.TrimSpace(search) == "" {
			return fmt.Errorf("invalid search: %s", search)
		}
		o.Search = search
		return nil
	}
}

// WithLimit caps the number of artists returned by the ListArtists operation
func WithLimit(limit int) Option {
	return func(o *ListArtistsOptions) error {
		if limit <= 0 {
			return fmt.Errorf("invalid limit: %d", limit)
		}
		o.Limit = limit
		return nil
	}
}
