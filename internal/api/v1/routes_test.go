package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalfriend/lineup-server/internal/catalog"
	"github.com/festivalfriend/lineup-server/internal/jobs"
	"github.com/festivalfriend/lineup-server/internal/service"
)

// fakeService returns canned data and records the options it was called with
type fakeService struct {
	listing  *service.ArtistListing
	detail   *service.ArtistDetail
	lastOpts service.ListArtistsOptions
	err      error
}

func (f *fakeService) CheckReadiness(_ context.Context) error { return f.err }

func (f *fakeService) GetCatalog(_ context.Context) (*catalog.Catalog, error) {
	return catalog.NewCatalog(), nil
}

func (f *fakeService) ListArtists(_ context.Context, opts ...service.Option) (*service.ArtistListing, error) {
	options := service.ListArtistsOptions{}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, err
		}
	}
	f.lastOpts = options
	if f.err != nil {
		return nil, f.err
	}
	return f.listing, nil
}

func (f *fakeService) GetArtist(_ context.Context, _ string) (*service.ArtistDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeService) ListFestivals(_ context.Context) ([]catalog.Festival, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []catalog.Festival{{Name: "Glasto Fest", ArtistCount: 2}}, nil
}

func (f *fakeService) GetFestival(_ context.Context, name string) (*service.FestivalDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.FestivalDetail{
		Festival: catalog.Festival{Name: name},
	}, nil
}

func (f *fakeService) ListTags(_ context.Context) (*service.TagVocabulary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.TagVocabulary{
		Genres:  []string{"electronic", "funk"},
		Timbres: []string{"chill", "groovy"},
	}, nil
}

func (*fakeService) Invalidate() {}

// fakeIngestor records ingestion requests
type fakeIngestor struct {
	jobID    string
	err      error
	pageURL  string
	festival string
	artists  []string
}

func (f *fakeIngestor) ScrapePage(_ context.Context, pageURL string) (string, error) {
	f.pageURL = pageURL
	return f.jobID, f.err
}

func (f *fakeIngestor) ImportRoster(_ context.Context, festival string, artists []string) (string, error) {
	f.festival = festival
	f.artists = artists
	return f.jobID, f.err
}

func testListing() *service.ArtistListing {
	return &service.ArtistListing{
		Artists: []*catalog.Artist{
			{Name: "Bonobo", Genres: []string{"electronic"}, Timbre: []string{"chill"}},
		},
		TotalCount:   4,
		VisibleCount: 1,
		CountLabel:   "(1)",
	}
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestListArtists_Endpoint(t *testing.T) {
	t.Parallel()

	svc := &fakeService{listing: testListing()}
	router := Router(svc, &fakeIngestor{}, jobs.NewTracker())

	rec := doRequest(t, router, http.MethodGet,
		"/artists?genre=electronic&genre=funk&timbre=chill&festival=Glasto+Fest&search=bo&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ArtistListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.VisibleCount)
	assert.Equal(t, "(1)", resp.CountLabel)
	assert.Equal(t, 4, resp.TotalCount)
	require.Len(t, resp.Artists, 1)
	assert.Equal(t, "Bonobo", resp.Artists[0].Name)

	// Query parameters arrive as service options.
	assert.Equal(t, []string{"electronic", "funk"}, svc.lastOpts.Genres)
	assert.Equal(t, []string{"chill"}, svc.lastOpts.Timbres)
	assert.Equal(t, "Glasto Fest", svc.lastOpts.Festival)
	assert.Equal(t, "bo", svc.lastOpts.Search)
	assert.Equal(t, 10, svc.lastOpts.Limit)
}

func TestListArtists_InvalidLimit(t *testing.T) {
	t.Parallel()

	router := Router(&fakeService{listing: testListing()}, &fakeIngestor{}, jobs.NewTracker())

	for _, limit := range []string{"abc", "0", "-5"} {
		rec := doRequest(t, router, http.MethodGet, "/artists?limit="+limit, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %q", limit)
	}
}

func TestListArtists_FestivalNotFound(t *testing.T) {
	t.Parallel()

	svc := &fakeService{err: service.ErrFestivalNotFound}
	router := Router(svc, &fakeIngestor{}, jobs.NewTracker())

	rec := doRequest(t, router, http.MethodGet, "/artists?festival=Nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetArtist_Endpoint(t *testing.T) {
	t.Parallel()

	svc := &fakeService{
		detail: &service.ArtistDetail{
			Artist:  &catalog.Artist{Name: "Floating Points", Genres: []string{"electronic"}},
			Similar: []*catalog.Artist{{Name: "Bonobo"}},
		},
	}
	router := Router(svc, &fakeIngestor{}, jobs.NewTracker())

	rec := doRequest(t, router, http.MethodGet, "/artists/Floating%20Points", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ArtistDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Floating Points", resp.Artist.Name)
	require.Len(t, resp.Similar, 1)
	assert.Equal(t, "Bonobo", resp.Similar[0].Name)
}

func TestGetArtist_NotFound(t *testing.T) {
	t.Parallel()

	svc := &fakeService{err: service.ErrArtistNotFound}
	router := Router(svc, &fakeIngestor{}, jobs.NewTracker())

	rec := doRequest(t, router, http.MethodGet, "/artists/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFestivalEndpoints(t *testing.T) {
	t.Parallel()

	router := Router(&fakeService{}, &fakeIngestor{}, jobs.NewTracker())

	rec := doRequest(t, router, http.MethodGet, "/festivals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list FestivalListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Festivals, 1)
	assert.Equal(t, "Glasto Fest", list.Festivals[0].Name)

	rec = doRequest(t, router, http.MethodGet, "/festivals/Glasto%20Fest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail FestivalDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Glasto Fest", detail.Festival.Name)
}

func TestFestival_NotFound(t *testing.T) {
	t.Parallel()

	svc := &fakeService{err: service.ErrFestivalNotFound}
	router := Router(svc, &fakeIngestor{}, jobs.NewTracker())

	rec := doRequest(t, router, http.MethodGet, "/festivals/Nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTags_Endpoint(t *testing.T) {
	t.Parallel()

	router := Router(&fakeService{}, &fakeIngestor{}, jobs.NewTracker())

	rec := doRequest(t, router, http.MethodGet, "/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TagsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"electronic", "funk"}, resp.Genres)
	assert.Equal(t, []string{"chill", "groovy"}, resp.Timbres)
}

func TestScrapeLineup_Endpoint(t *testing.T) {
	t.Parallel()

	ing := &fakeIngestor{jobID: "job-123"}
	router := Router(&fakeService{}, ing, jobs.NewTracker())

	body, _ := json.Marshal(ScrapeRequest{URL: "https://glasto.example.com/lineup"})
	rec := doRequest(t, router, http.MethodPost, "/lineups/scrape", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp JobAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-123", resp.JobID)
	assert.Equal(t, "https://glasto.example.com/lineup", ing.pageURL)
}

func TestScrapeLineup_BadRequests(t *testing.T) {
	t.Parallel()

	router := Router(&fakeService{}, &fakeIngestor{}, jobs.NewTracker())

	rec := doRequest(t, router, http.MethodPost, "/lineups/scrape", []byte("not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/lineups/scrape", []byte(`{"url":""}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportLineup_Endpoint(t *testing.T) {
	t.Parallel()

	ing := &fakeIngestor{jobID: "job-456"}
	router := Router(&fakeService{}, ing, jobs.NewTracker())

	body, _ := json.Marshal(ImportRequest{
		Festival: "Other Fest",
		Artists:  []string{"Bonobo"},
		Text:     "Khruangbin, Portishead\n# stage two\nFloating Points",
	})
	rec := doRequest(t, router, http.MethodPost, "/lineups/import", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp JobAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-456", resp.JobID)

	assert.Equal(t, "Other Fest", ing.festival)
	assert.Equal(t, []string{"Bonobo", "Khruangbin", "Portishead", "Floating Points"}, ing.artists)
}

func TestGetJob_Endpoint(t *testing.T) {
	t.Parallel()

	tracker := jobs.NewTracker()
	id := tracker.Start("scrape", "Glasto Fest")
	router := Router(&fakeService{}, &fakeIngestor{}, tracker)

	rec := doRequest(t, router, http.MethodGet, "/jobs/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var job jobs.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, id, job.ID)
	assert.Equal(t, jobs.PhaseScanning, job.Phase)

	rec = doRequest(t, router, http.MethodGet, "/jobs/no-such-job", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
