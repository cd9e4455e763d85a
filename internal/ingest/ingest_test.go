package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalfriend/lineup-server/internal/catalog"
	"github.com/festivalfriend/lineup-server/internal/classify"
	"github.com/festivalfriend/lineup-server/internal/jobs"
	"github.com/festivalfriend/lineup-server/internal/sources"
)

type fakeScraper struct {
	festival string
	artists  []string
	err      error
}

func (f *fakeScraper) ScrapeLineup(_ context.Context, _ string) (string, []string, error) {
	return f.festival, f.artists, f.err
}

type fakeClassifier struct{}

func (*fakeClassifier) ClassifyArtist(_ context.Context, _ string) (classify.Classification, error) {
	return classify.Classification{Genres: []string{"electronic"}, Timbre: []string{"chill"}}, nil
}

func (*fakeClassifier) ClassifyBatch(
	_ context.Context, names []string, _ *catalog.Catalog, onProgress classify.ProgressFunc,
) (map[string]classify.Classification, error) {
	result := make(map[string]classify.Classification, len(names))
	for i, name := range names {
		result[name] = classify.Classification{Genres: []string{"electronic"}, Timbre: []string{"chill"}}
		if onProgress != nil {
			onProgress(i+1, len(names), name)
		}
	}
	return result, nil
}

func (*fakeClassifier) ValidateArtist(_ context.Context, _ string) (bool, error) {
	return true, nil
}

type fakeStore struct {
	mu     sync.Mutex
	merged *sources.FetchResult
}

func (f *fakeStore) Save(_ context.Context, _ *catalog.Catalog) error { return nil }

func (f *fakeStore) Load(_ context.Context) (*catalog.Catalog, error) {
	return catalog.NewCatalog(), nil
}

func (f *fakeStore) MergeLineup(
	_ context.Context, result *sources.FetchResult, _ map[string]classify.Classification,
) (*catalog.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.merged = result
	return catalog.NewCatalog(), nil
}

func (f *fakeStore) Delete(_ context.Context) error { return nil }

func (f *fakeStore) mergedResult() *sources.FetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.merged
}

func waitForJob(t *testing.T, tracker *jobs.Tracker, id string) jobs.Job {
	t.Helper()

	require.Eventually(t, func() bool {
		job, ok := tracker.Get(id)
		return ok && job.Finished()
	}, 5*time.Second, 10*time.Millisecond)

	job, _ := tracker.Get(id)
	return job
}

func TestScrapePage(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{
		festival: "Glasto Fest",
		artists:  []string{"Bonobo", "Portishead"},
	}
	st := &fakeStore{}
	tracker := jobs.NewTracker()

	var hookCalled bool
	var hookMu sync.Mutex
	ing := New(scraper, &fakeClassifier{}, st, tracker, WithCatalogChangeHook(func() {
		hookMu.Lock()
		defer hookMu.Unlock()
		hookCalled = true
	}))

	id, err := ing.ScrapePage(context.Background(), "https://glasto.example.com/lineup")
	require.NoError(t, err)

	job := waitForJob(t, tracker, id)
	assert.Equal(t, jobs.PhaseDone, job.Phase)
	assert.Equal(t, "Glasto Fest", job.Festival)
	assert.Equal(t, 2, job.ArtistCount)

	merged := st.mergedResult()
	require.NotNil(t, merged)
	assert.Equal(t, "Glasto Fest", merged.FestivalName)
	assert.Equal(t, "https://glasto.example.com/lineup", merged.FestivalURL)
	assert.Equal(t, []string{"Bonobo", "Portishead"}, merged.Artists)
	assert.NotEmpty(t, merged.Hash)

	hookMu.Lock()
	defer hookMu.Unlock()
	assert.True(t, hookCalled)
}

func TestScrapePage_InvalidURL(t *testing.T) {
	t.Parallel()

	ing := New(&fakeScraper{}, &fakeClassifier{}, &fakeStore{}, jobs.NewTracker())

	for _, pageURL := range []string{"", "not-a-url", "/relative/path", "ftp://"} {
		_, err := ing.ScrapePage(context.Background(), pageURL)
		assert.Error(t, err, "url %q", pageURL)
	}
}

func TestScrapePage_ScraperFailure(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{err: errors.New("page down")}
	tracker := jobs.NewTracker()
	ing := New(scraper, &fakeClassifier{}, &fakeStore{}, tracker)

	id, err := ing.ScrapePage(context.Background(), "https://glasto.example.com")
	require.NoError(t, err)

	job := waitForJob(t, tracker, id)
	assert.Equal(t, jobs.PhaseError, job.Phase)
	assert.Contains(t, job.Error, "page down")
}

func TestScrapePage_EmptyLineupFails(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{festival: "Glasto Fest"}
	tracker := jobs.NewTracker()
	ing := New(scraper, &fakeClassifier{}, &fakeStore{}, tracker)

	id, err := ing.ScrapePage(context.Background(), "https://glasto.example.com")
	require.NoError(t, err)

	job := waitForJob(t, tracker, id)
	assert.Equal(t, jobs.PhaseError, job.Phase)
	assert.Contains(t, job.Error, "no artists found")
}

func TestImportRoster(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	tracker := jobs.NewTracker()
	ing := New(&fakeScraper{}, &fakeClassifier{}, st, tracker)

	id, err := ing.ImportRoster(context.Background(), "Other Fest",
		[]string{"Khruangbin", "Bonobo B2B Floating Points", "khruangbin"})
	require.NoError(t, err)

	job := waitForJob(t, tracker, id)
	assert.Equal(t, jobs.PhaseDone, job.Phase)
	assert.Equal(t, "Other Fest", job.Festival)

	merged := st.mergedResult()
	require.NotNil(t, merged)
	// B2B billings are split and duplicates dropped.
	assert.Equal(t, []string{"Khruangbin", "Bonobo", "Floating Points"}, merged.Artists)
	assert.Empty(t, merged.FestivalURL)
}

func TestImportRoster_Validation(t *testing.T) {
	t.Parallel()

	ing := New(&fakeScraper{}, &fakeClassifier{}, &fakeStore{}, jobs.NewTracker())

	_, err := ing.ImportRoster(context.Background(), "  ", []string{"Bonobo"})
	assert.Error(t, err)

	_, err = ing.ImportRoster(context.Background(), "Other Fest", nil)
	assert.Error(t, err)
}
