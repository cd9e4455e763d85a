package sources

import (
	"context"
	"fmt"

	"github.com/festivalfriend/lineup-server/internal/config"
	"github.com/festivalfriend/lineup-server/internal/scrape"
)

// pageSourceHandler fetches lineups by scraping festival web pages
type pageSourceHandler struct {
	scraper scrape.Scraper
}

var _ SourceHandler = (*pageSourceHandler)(nil)

// NewPageSourceHandler creates a handler that scrapes festival pages.
func NewPageSourceHandler() SourceHandler {
	return &pageSourceHandler{scraper: scrape.NewDefaultScraper()}
}

// NewPageSourceHandlerWithScraper creates a page handler with a custom scraper.
func NewPageSourceHandlerWithScraper(scraper scrape.Scraper) SourceHandler {
	return &pageSourceHandler{scraper: scraper}
}

// FetchLineup implements SourceHandler.FetchLineup
func (h *pageSourceHandler) FetchLineup(ctx context.Context, festival *config.FestivalConfig) (*FetchResult, error) {
	if err := h.Validate(festival); err != nil {
		return nil, err
	}

	scrapedName, artists, err := h.scraper.ScrapeLineup(ctx, festival.Page.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape lineup for %s: %w", festival.Name, err)
	}
	if len(artists) == 0 {
		return nil, fmt.Errorf("no artists found on %s", festival.Page.URL)
	}

	// A configured name wins over whatever the page claims.
	name := festival.Name
	if name == "" {
		name = scrapedName
	}
	return NewFetchResult(name, festival.Page.URL, artists), nil
}

// Validate implements SourceHandler.Validate
func (*pageSourceHandler) Validate(festival *config.FestivalConfig) error {
	if festival == nil || festival.Page == nil {
		return fmt.Errorf("page configuration is required")
	}
	if festival.Page.URL == "" {
		return fmt.Errorf("page.url is required")
	}
	return nil
}

// CurrentHash implements SourceHandler.CurrentHash
func (h *pageSourceHandler) CurrentHash(ctx context.Context, festival *config.FestivalConfig) (string, error) {
	result, err := h.FetchLineup(ctx, festival)
	if err != nil {
		return "", err
	}
	return result.Hash, nil
}
