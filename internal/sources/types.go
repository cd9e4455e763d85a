package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/festivalfriend/lineup-server/internal/config"
)

// SourceHandler is an interface with methods to fetch lineups from external data sources
type SourceHandler interface {
	// FetchLineup retrieves the lineup from the source and returns the result
	FetchLineup(ctx context.Context, festival *config.FestivalConfig) (*FetchResult, error)

	// Validate validates the source configuration
	Validate(festival *config.FestivalConfig) error

	// CurrentHash returns the current hash of the source data without merging it
	CurrentHash(ctx context.Context, festival *config.FestivalConfig) (string, error)
}

// FetchResult contains the result of a fetch operation
type FetchResult struct {
	// FestivalName is the festival the lineup belongs to
	FestivalName string

	// FestivalURL is the page the lineup was scraped from, if any
	FestivalURL string

	// Artists are the cleaned artist names found in the source
	Artists []string

	// Hash is the SHA256 hash of the lineup for change detection
	Hash string
}

// NewFetchResult creates a FetchResult, hashing the lineup for change detection.
func NewFetchResult(festivalName, festivalURL string, artists []string) *FetchResult {
	return &FetchResult{
		FestivalName: festivalName,
		FestivalURL:  festivalURL,
		Artists:      artists,
		Hash:         LineupHash(festivalName, artists),
	}
}

// SourceHandlerFactory creates source handlers based on source type
type SourceHandlerFactory interface {
	// CreateHandler creates a source handler for the given source type
	CreateHandler(sourceType string) (SourceHandler, error)
}

// LineupHash hashes a festival's lineup. The artist order is normalized so
// that reordered pages do not look like content changes.
func LineupHash(festivalName string, artists []string) string {
	normalized := make([]string, len(artists))
	for i, artist := range artists {
		normalized[i] = strings.ToLower(strings.TrimSpace(artist))
	}
	sort.Strings(normalized)

	h := sha256.New()
	h.Write([]byte(strings.ToLower(festivalName)))
	for _, artist := range normalized {
		h.Write([]byte{0})
		h.Write([]byte(artist))
	}
	return hex.EncodeToString(h.Sum(nil))
}
