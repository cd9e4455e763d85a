package filtering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalfriend/lineup-server/internal/catalog"
)

func entry(name string, genres, timbre []string) *catalog.Artist {
	return &catalog.Artist{Name: name, Genres: genres, Timbre: timbre}
}

func visibleNames(result *VisibilityResult) []string {
	names := make([]string, 0, result.VisibleCount)
	for _, a := range result.VisibleEntries() {
		names = append(names, a.Name)
	}
	return names
}

func TestNewDefaultFilterService(t *testing.T) {
	t.Parallel()

	service := NewDefaultFilterService()
	assert.NotNil(t, service)
}

func TestNewFilterService(t *testing.T) {
	t.Parallel()

	genreFilter := NewDefaultGroupFilter()
	timbreFilter := NewDefaultGroupFilter()

	service := NewFilterService(genreFilter, timbreFilter)
	require.IsType(t, &defaultFilterService{}, service)
	impl := service.(*defaultFilterService)
	assert.Equal(t, genreFilter, impl.genreFilter)
	assert.Equal(t, timbreFilter, impl.timbreFilter)
}

func TestComputeVisibility_NoSelections(t *testing.T) {
	t.Parallel()

	service := NewDefaultFilterService()
	entries := []*catalog.Artist{
		entry("A", []string{"jazz"}, nil),
		entry("B", nil, []string{"warm"}),
		entry("C", nil, nil),
	}

	result := service.ComputeVisibility(context.Background(), nil, nil, entries)

	assert.Equal(t, len(entries), result.VisibleCount)
	for _, d := range result.Decisions {
		assert.True(t, d.Visible, "empty selections must make every entry visible")
	}
	assert.Equal(t, "(3)", result.CountLabel())
}

func TestComputeVisibility_GenreOnly(t *testing.T) {
	t.Parallel()

	service := NewDefaultFilterService()
	entries := []*catalog.Artist{
		entry("A", []string{"jazz"}, nil),
		entry("B", []string{"folk"}, nil),
		entry("C", []string{"blues", "jazz"}, nil),
	}

	result := service.ComputeVisibility(context.Background(), []string{"jazz"}, nil, entries)

	assert.Equal(t, []string{"A", "C"}, visibleNames(result))
	assert.Equal(t, 2, result.VisibleCount)

	// Every visible entry intersects the selection.
	for _, d := range result.Decisions {
		if d.Visible {
			assert.Contains(t, d.Entry.Genres, "jazz")
		}
	}
}

func TestComputeVisibility_Conjunction(t *testing.T) {
	t.Parallel()

	service := NewDefaultFilterService()
	genreFilter := NewDefaultGroupFilter()
	timbreFilter := NewDefaultGroupFilter()

	entries := []*catalog.Artist{
		entry("A", []string{"jazz"}, []string{"smooth"}),
		entry("B", []string{"jazz"}, []string{"warm"}),
		entry("C", []string{"folk"}, []string{"warm"}),
		entry("D", nil, nil),
	}
	genreSel := []string{"jazz"}
	timbreSel := []string{"warm"}

	result := service.ComputeVisibility(context.Background(), genreSel, timbreSel, entries)

	// visible == genreMatch AND timbreMatch, computed independently per group.
	for i, e := range entries {
		genreMatch, _ := genreFilter.Matches(e.Genres, genreSel)
		timbreMatch, _ := timbreFilter.Matches(e.Timbre, timbreSel)
		assert.Equal(t, genreMatch && timbreMatch, result.Decisions[i].Visible,
			"entry %s must satisfy the conjunction property", e.Name)
	}
	assert.Equal(t, []string{"B"}, visibleNames(result))
}

func TestComputeVisibility_JazzBluesWarmScenario(t *testing.T) {
	t.Parallel()

	service := NewDefaultFilterService()
	entries := []*catalog.Artist{
		entry("A", []string{"jazz"}, nil),
		entry("B", []string{"blues"}, []string{"warm"}),
		entry("C", []string{"jazz", "blues"}, nil),
	}

	// Selecting genre=jazz -> {A, C}.
	result := service.ComputeVisibility(context.Background(), []string{"jazz"}, nil, entries)
	assert.Equal(t, []string{"A", "C"}, visibleNames(result))
	assert.Equal(t, 2, result.VisibleCount)

	// Additionally selecting timbre=warm -> {}: A and C lack "warm", B lacks "jazz".
	result = service.ComputeVisibility(context.Background(), []string{"jazz"}, []string{"warm"}, entries)
	assert.Empty(t, visibleNames(result))
	assert.Equal(t, 0, result.VisibleCount)
	assert.Equal(t, "(0)", result.CountLabel())

	// Clearing all selections -> {A, B, C}.
	result = service.ComputeVisibility(context.Background(), nil, nil, entries)
	assert.Equal(t, []string{"A", "B", "C"}, visibleNames(result))
	assert.Equal(t, 3, result.VisibleCount)
}

func TestComputeVisibility_Idempotent(t *testing.T) {
	t.Parallel()

	service := NewDefaultFilterService()
	entries := []*catalog.Artist{
		entry("A", []string{"jazz"}, []string{"smooth"}),
		entry("B", []string{"blues"}, []string{"warm"}),
	}

	first := service.ComputeVisibility(context.Background(), []string{"jazz"}, []string{"smooth"}, entries)
	second := service.ComputeVisibility(context.Background(), []string{"jazz"}, []string{"smooth"}, entries)

	assert.Equal(t, first, second, "unchanged inputs must yield identical results")
}

func TestComputeVisibility_PreservesOrder(t *testing.T) {
	t.Parallel()

	service := NewDefaultFilterService()
	entries := []*catalog.Artist{
		entry("Zed", []string{"rock"}, nil),
		entry("Mid", []string{"pop"}, nil),
		entry("Alpha", []string{"rock"}, nil),
	}

	result := service.ComputeVisibility(context.Background(), []string{"rock"}, nil, entries)

	// Filtering hides, it never reorders.
	require.Len(t, result.Decisions, 3)
	assert.Equal(t, "Zed", result.Decisions[0].Entry.Name)
	assert.Equal(t, "Mid", result.Decisions[1].Entry.Name)
	assert.Equal(t, "Alpha", result.Decisions[2].Entry.Name)
	assert.Equal(t, []string{"Zed", "Alpha"}, visibleNames(result))
}

func TestComputeVisibility_EmptyEntries(t *testing.T) {
	t.Parallel()

	service := NewDefaultFilterService()
	result := service.ComputeVisibility(context.Background(), []string{"jazz"}, nil, nil)

	assert.Empty(t, result.Decisions)
	assert.Equal(t, 0, result.VisibleCount)
	assert.Equal(t, "(0)", result.CountLabel())
}

func TestComputeVisibility_Reasons(t *testing.T) {
	t.Parallel()

	service := NewDefaultFilterService()
	entries := []*catalog.Artist{
		entry("A", []string{"jazz"}, []string{"warm"}),
		entry("B", []string{"folk"}, []string{"warm"}),
		entry("C", []string{"jazz"}, []string{"harsh"}),
	}

	result := service.ComputeVisibility(context.Background(), []string{"jazz"}, []string{"warm"}, entries)

	assert.Contains(t, result.Decisions[0].Reason, "genre group")
	assert.Contains(t, result.Decisions[0].Reason, "timbre group")
	assert.Contains(t, result.Decisions[1].Reason, "genre group")
	assert.Contains(t, result.Decisions[2].Reason, "timbre group")

	noSelections := service.ComputeVisibility(context.Background(), nil, nil, entries[:1])
	assert.Equal(t, "no selections, default visible", noSelections.Decisions[0].Reason)
}
