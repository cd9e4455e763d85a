// Package ingest runs ad-hoc lineup ingestion requested through the API:
// scraping a festival page or importing a pasted roster, classifying the
// artists, and merging the result into the catalog. Work runs in background
// jobs so callers can poll for progress.
package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/festivalfriend/lineup-server/internal/catalog"
	"github.com/festivalfriend/lineup-server/internal/classify"
	"github.com/festivalfriend/lineup-server/internal/jobs"
	"github.com/festivalfriend/lineup-server/internal/scrape"
	"github.com/festivalfriend/lineup-server/internal/sources"
	"github.com/festivalfriend/lineup-server/internal/store"
)

// Ingestor starts background ingestion jobs and returns their job ids.
type Ingestor interface {
	// ScrapePage scrapes a festival lineup page and ingests the result
	ScrapePage(ctx context.Context, pageURL string) (string, error)

	// ImportRoster ingests an explicit list of artist names for a festival
	ImportRoster(ctx context.Context, festivalName string, artists []string) (string, error)
}

// defaultIngestor is the default implementation of Ingestor
type defaultIngestor struct {
	scraper      scrape.Scraper
	classifier   classify.Classifier
	catalogStore store.Store
	tracker      *jobs.Tracker

	// onCatalogChange is invoked after a successful merge
	onCatalogChange func()
}

var _ Ingestor = (*defaultIngestor)(nil)

// Option is a function that configures the ingestor
type Option func(*defaultIngestor)

// WithCatalogChangeHook registers a callback invoked after the catalog changes
func WithCatalogChangeHook(fn func()) Option {
	return func(i *defaultIngestor) {
		i.onCatalogChange = fn
	}
}

// New creates an ingestor with injected dependencies.
func New(
	scraper scrape.Scraper,
	classifier classify.Classifier,
	catalogStore store.Store,
	tracker *jobs.Tracker,
	opts ...Option,
) Ingestor {
	i := &defaultIngestor{
		scraper:      scraper,
		classifier:   classifier,
		catalogStore: catalogStore,
		tracker:      tracker,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ScrapePage implements Ingestor.ScrapePage
func (i *defaultIngestor) ScrapePage(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return "", fmt.Errorf("invalid page URL: %s", pageURL)
	}

	// The job outlives the originating request.
	jobCtx := context.WithoutCancel(ctx)
	id := i.tracker.Run(jobCtx, "scrape", "", func(ctx context.Context, jobID string) (int, error) {
		festivalName, artists, err := i.scraper.ScrapeLineup(ctx, pageURL)
		if err != nil {
			return 0, fmt.Errorf("failed to scrape lineup page: %w", err)
		}
		if len(artists) == 0 {
			return 0, fmt.Errorf("no artists found on page %s", pageURL)
		}
		i.tracker.SetFestival(jobID, festivalName)

		return i.classifyAndMerge(ctx, jobID, festivalName, pageURL, artists)
	})
	return id, nil
}

// ImportRoster implements Ingestor.ImportRoster
func (i *defaultIngestor) ImportRoster(ctx context.Context, festivalName string, artists []string) (string, error) {
	if strings.TrimSpace(festivalName) == "" {
		return "", fmt.Errorf("festival name is required")
	}
	cleaned := catalog.CleanLineupNames(artists)
	if len(cleaned) == 0 {
		return "", fmt.Errorf("roster contains no artist names")
	}

	jobCtx := context.WithoutCancel(ctx)
	id := i.tracker.Run(jobCtx, "import", festivalName, func(ctx context.Context, jobID string) (int, error) {
		return i.classifyAndMerge(ctx, jobID, festivalName, "", cleaned)
	})
	return id, nil
}

// classifyAndMerge classifies the artists and folds the lineup into the
// catalog, reporting progress on the job.
func (i *defaultIngestor) classifyAndMerge(
	ctx context.Context, jobID, festivalName, festivalURL string, artists []string,
) (int, error) {
	existing, err := i.catalogStore.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load catalog: %w", err)
	}

	i.tracker.BeginClassifying(jobID, len(artists))
	classifications, err := i.classifier.ClassifyBatch(ctx, artists, existing,
		func(done, _ int, current string) {
			i.tracker.Progress(jobID, done, current)
		})
	if err != nil {
		return 0, fmt.Errorf("failed to classify lineup: %w", err)
	}

	result := sources.NewFetchResult(festivalName, festivalURL, artists)
	if _, err := i.catalogStore.MergeLineup(ctx, result, classifications); err != nil {
		return 0, fmt.Errorf("failed to merge lineup into catalog: %w", err)
	}

	if i.onCatalogChange != nil {
		i.onCatalogChange()
	}
	return len(artists), nil
}
