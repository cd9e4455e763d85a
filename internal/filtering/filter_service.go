package filtering

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/festivalfriend/lineup-server/internal/catalog"
)

// FilterService coordinates the genre and timbre group filters to compute
// per-entry visibility over a catalog listing.
type FilterService interface {
	// ComputeVisibility evaluates every entry against the two group
	// selections and returns one decision per entry, in input order,
	// together with the aggregate visible count.
	ComputeVisibility(
		ctx context.Context,
		genreSelection []string,
		timbreSelection []string,
		entries []*catalog.Artist,
	) *VisibilityResult
}

// Decision is the visibility outcome for a single entry.
type Decision struct {
	Entry   *catalog.Artist
	Visible bool
	Reason  string
}

// VisibilityResult holds the outcome of one full recomputation. Decisions
// are in the same order as the input entries.
type VisibilityResult struct {
	Decisions    []Decision
	VisibleCount int
}

// CountLabel formats the visible count for display, e.g. "(12)".
func (r *VisibilityResult) CountLabel() string {
	return fmt.Sprintf("(%d)", r.VisibleCount)
}

// VisibleEntries returns the visible entries in input order.
func (r *VisibilityResult) VisibleEntries() []*catalog.Artist {
	visible := make([]*catalog.Artist, 0, r.VisibleCount)
	for _, d := range r.Decisions {
		if d.Visible {
			visible = append(visible, d.Entry)
		}
	}
	return visible
}

// defaultFilterService implements visibility computation using one group
// filter per tag dimension
type defaultFilterService struct {
	genreFilter  GroupFilter
	timbreFilter GroupFilter
}

// NewDefaultFilterService creates a new defaultFilterService with default group filters
func NewDefaultFilterService() FilterService {
	return &defaultFilterService{
		genreFilter:  NewDefaultGroupFilter(),
		timbreFilter: NewDefaultGroupFilter(),
	}
}

// NewFilterService creates a new defaultFilterService with custom group filters
func NewFilterService(genreFilter, timbreFilter GroupFilter) FilterService {
	return &defaultFilterService{
		genreFilter:  genreFilter,
		timbreFilter: timbreFilter,
	}
}

// ComputeVisibility evaluates every entry against the two group selections.
//
// The computation:
//  1. For each entry, test its genres against the genre selection and its
//     timbre descriptors against the timbre selection
//  2. The entry is visible only if both groups match (AND across groups;
//     an empty selection matches vacuously)
//  3. Count the visible entries
//
// Entry order is preserved; the engine never reorders, only hides.
func (s *defaultFilterService) ComputeVisibility(
	ctx context.Context,
	genreSelection []string,
	timbreSelection []string,
	entries []*catalog.Artist,
) *VisibilityResult {
	result := &VisibilityResult{
		Decisions: make([]Decision, 0, len(entries)),
	}

	for _, entry := range entries {
		visible, reason := s.decide(entry, genreSelection, timbreSelection)
		if visible {
			result.VisibleCount++
		}
		result.Decisions = append(result.Decisions, Decision{
			Entry:   entry,
			Visible: visible,
			Reason:  reason,
		})
	}

	slog.DebugContext(ctx, "Computed listing visibility",
		"entry_count", len(entries),
		"genre_selection", genreSelection,
		"timbre_selection", timbreSelection,
		"visible_count", result.VisibleCount)

	return result
}

// decide evaluates one entry. Both groups must match for the entry to be
// visible.
func (s *defaultFilterService) decide(
	entry *catalog.Artist, genreSelection, timbreSelection []string,
) (bool, string) {
	genreMatch, genreReason := s.genreFilter.Matches(entry.Genres, genreSelection)
	if !genreMatch {
		return false, fmt.Sprintf("genre group: %s", genreReason)
	}

	timbreMatch, timbreReason := s.timbreFilter.Matches(entry.Timbre, timbreSelection)
	if !timbreMatch {
		return false, fmt.Sprintf("timbre group: %s", timbreReason)
	}

	if len(genreSelection) == 0 && len(timbreSelection) == 0 {
		return true, "no selections, default visible"
	}
	return true, fmt.Sprintf("genre group: %s AND timbre group: %s", genreReason, timbreReason)
}
