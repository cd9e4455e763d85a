// Package v1 provides the REST API handlers for the lineup catalog.
package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/festivalfriend/lineup-server/internal/api/common"
	"github.com/festivalfriend/lineup-server/internal/catalog"
	"github.com/festivalfriend/lineup-server/internal/ingest"
	"github.com/festivalfriend/lineup-server/internal/jobs"
	"github.com/festivalfriend/lineup-server/internal/service"
	"github.com/festivalfriend/lineup-server/internal/sources"
)

// ArtistListResponse is the response for the artist listing endpoint.
// VisibleCount counts the entries that pass the active filter selections
// and CountLabel is its display form, e.g. "(12)".
type ArtistListResponse struct {
	Artists      []*catalog.Artist `json:"artists"`
	TotalCount   int               `json:"total_count"`
	VisibleCount int               `json:"visible_count"`
	CountLabel   string            `json:"count_label"`
}

// ArtistDetailResponse is the response for a single artist lookup
type ArtistDetailResponse struct {
	Artist  *catalog.Artist   `json:"artist"`
	Similar []*catalog.Artist `json:"similar"`
}

// FestivalListResponse is the response for the festival listing endpoint
type FestivalListResponse struct {
	Festivals []catalog.Festival `json:"festivals"`
}

// FestivalDetailResponse is the response for a single festival lookup
type FestivalDetailResponse struct {
	Festival catalog.Festival  `json:"festival"`
	Artists  []*catalog.Artist `json:"artists"`
}

// TagsResponse lists the distinct tag identifiers per filter group
type TagsResponse struct {
	Genres  []string `json:"genres"`
	Timbres []string `json:"timbres"`
}

// ScrapeRequest is the request body for the scrape endpoint
type ScrapeRequest struct {
	URL string `json:"url"`
}

// ImportRequest is the request body for the roster import endpoint.
// Artists may be given as a list, as roster text, or both.
type ImportRequest struct {
	Festival string   `json:"festival"`
	Artists  []string `json:"artists,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// JobAcceptedResponse is returned when a background job has been started
type JobAcceptedResponse struct {
	JobID string `json:"job_id"`
}

// Routes defines the routes for the lineup API with dependency injection
type Routes struct {
	service service.CatalogService
	ingest  ingest.Ingestor
	jobs    *jobs.Tracker
}

// NewRoutes creates a new Routes instance with the provided dependencies
func NewRoutes(svc service.CatalogService, ing ingest.Ingestor, tracker *jobs.Tracker) *Routes {
	return &Routes{
		service: svc,
		ingest:  ing,
		jobs:    tracker,
	}
}

// Router creates a new router for the lineup API
func Router(svc service.CatalogService, ing ingest.Ingestor, tracker *jobs.Tracker) http.Handler {
	routes := NewRoutes(svc, ing, tracker)

	r := chi.NewRouter()

	r.Get("/artists", routes.listArtists)
	r.Get("/artists/{name}", routes.getArtist)
	r.Get("/festivals", routes.listFestivals)
	r.Get("/festivals/{name}", routes.getFestival)
	r.Get("/tags", routes.listTags)
	r.Post("/lineups/scrape", routes.scrapeLineup)
	r.Post("/lineups/import", routes.importLineup)
	r.Get("/jobs/{id}", routes.getJob)

	return r
}

// listArtists handles GET /api/v1/artists.
//
// Filter selections arrive as repeatable genre and timbre query parameters;
// festival, search and limit narrow the listing further.
func (rr *Routes) listArtists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var opts []service.Option
	if genres := q["genre"]; len(genres) > 0 {
		opts = append(opts, service.WithGenres(genres))
	}
	if timbres := q["timbre"]; len(timbres) > 0 {
		opts = append(opts, service.WithTimbres(timbres))
	}
	if festival := strings.TrimSpace(q.Get("festival")); festival != "" {
		opts = append(opts, service.WithFestival(festival))
	}
	if search := strings.TrimSpace(q.Get("search")); search != "" {
		opts = append(opts, service.WithSearch(search))
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			common.WriteErrorResponse(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithLimit(limit))
	}

	listing, err := rr.service.ListArtists(r.Context(), opts...)
	if err != nil {
		if errors.Is(err, service.ErrFestivalNotFound) {
			common.WriteErrorResponse(w, "Festival not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to list artists", "error", err)
		common.WriteErrorResponse(w, "Failed to list artists", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, ArtistListResponse{
		Artists:      listing.Artists,
		TotalCount:   listing.TotalCount,
		VisibleCount: listing.VisibleCount,
		CountLabel:   listing.CountLabel,
	}, http.StatusOK)
}

// getArtist handles GET /api/v1/artists/{name}
func (rr *Routes) getArtist(w http.ResponseWriter, r *http.Request) {
	name, err := common.GetAndValidateURLParam(r, "name")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	detail, err := rr.service.GetArtist(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrArtistNotFound) {
			common.WriteErrorResponse(w, "Artist not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to get artist", "artist", name, "error", err)
		common.WriteErrorResponse(w, "Failed to get artist", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, ArtistDetailResponse{
		Artist:  detail.Artist,
		Similar: detail.Similar,
	}, http.StatusOK)
}

// listFestivals handles GET /api/v1/festivals
func (rr *Routes) listFestivals(w http.ResponseWriter, r *http.Request) {
	festivals, err := rr.service.ListFestivals(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list festivals", "error", err)
		common.WriteErrorResponse(w, "Failed to list festivals", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, FestivalListResponse{Festivals: festivals}, http.StatusOK)
}

// getFestival handles GET /api/v1/festivals/{name}
func (rr *Routes) getFestival(w http.ResponseWriter, r *http.Request) {
	name, err := common.GetAndValidateURLParam(r, "name")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	detail, err := rr.service.GetFestival(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrFestivalNotFound) {
			common.WriteErrorResponse(w, "Festival not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to get festival", "festival", name, "error", err)
		common.WriteErrorResponse(w, "Failed to get festival", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, FestivalDetailResponse{
		Festival: detail.Festival,
		Artists:  detail.Artists,
	}, http.StatusOK)
}

// listTags handles GET /api/v1/tags
func (rr *Routes) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := rr.service.ListTags(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list tags", "error", err)
		common.WriteErrorResponse(w, "Failed to list tags", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, TagsResponse{
		Genres:  tags.Genres,
		Timbres: tags.Timbres,
	}, http.StatusOK)
}

// scrapeLineup handles POST /api/v1/lineups/scrape
func (rr *Routes) scrapeLineup(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		common.WriteErrorResponse(w, "Page URL is required", http.StatusBadRequest)
		return
	}

	jobID, err := rr.ingest.ScrapePage(r.Context(), req.URL)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	common.WriteJSONResponse(w, JobAcceptedResponse{JobID: jobID}, http.StatusAccepted)
}

// importLineup handles POST /api/v1/lineups/import
func (rr *Routes) importLineup(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	artists := req.Artists
	if req.Text != "" {
		artists = append(artists, sources.ParseRoster(req.Text)...)
	}

	jobID, err := rr.ingest.ImportRoster(r.Context(), req.Festival, artists)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	common.WriteJSONResponse(w, JobAcceptedResponse{JobID: jobID}, http.StatusAccepted)
}

// getJob handles GET /api/v1/jobs/{id}
func (rr *Routes) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetAndValidateURLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, ok := rr.jobs.Get(id)
	if !ok {
		common.WriteErrorResponse(w, "Job not found", http.StatusNotFound)
		return
	}

	common.WriteJSONResponse(w, job, http.StatusOK)
}
