package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	c := NewCatalog()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	c.Artists["bicep"] = &Artist{
		Name:   "Bicep",
		Genres: []string{"electronic", "house"},
		Timbre: []string{"groovy"},
		Festivals: []FestivalRef{
			{Name: "Field Day", URL: "https://fieldday.example", DateScraped: now},
		},
	}
	c.Artists["low"] = &Artist{
		Name:   "Low",
		Genres: []string{"slowcore"},
		Timbre: []string{"dreamy", "atmospheric"},
		Festivals: []FestivalRef{
			{Name: "End of the Road", URL: "https://eotr.example", DateScraped: now},
		},
	}
	c.Artists["anna"] = &Artist{
		Name:   "ANNA",
		Genres: []string{"techno", "electronic"},
		Timbre: []string{"electronic"},
		Festivals: []FestivalRef{
			{Name: "Field Day", URL: "https://fieldday.example", DateScraped: now},
		},
	}
	c.Festivals = []Festival{
		{Name: "Field Day", URL: "https://fieldday.example", ArtistCount: 2, DateScraped: now},
		{Name: "End of the Road", URL: "https://eotr.example", ArtistCount: 1, DateScraped: now},
	}
	return c
}

func TestCatalog_SortedArtists(t *testing.T) {
	t.Parallel()

	c := testCatalog()
	artists := c.SortedArtists()
	require.Len(t, artists, 3)
	assert.Equal(t, "ANNA", artists[0].Name)
	assert.Equal(t, "Bicep", artists[1].Name)
	assert.Equal(t, "Low", artists[2].Name)
}

func TestCatalog_Vocabularies(t *testing.T) {
	t.Parallel()

	c := testCatalog()
	assert.Equal(t, []string{"electronic", "house", "slowcore", "techno"}, c.Genres())
	assert.Equal(t, []string{"atmospheric", "dreamy", "electronic", "groovy"}, c.Timbres())
}

func TestCatalog_ArtistsForFestival(t *testing.T) {
	t.Parallel()

	c := testCatalog()
	artists := c.ArtistsForFestival("Field Day")
	require.Len(t, artists, 2)
	assert.Equal(t, "ANNA", artists[0].Name)
	assert.Equal(t, "Bicep", artists[1].Name)

	assert.Empty(t, c.ArtistsForFestival("Glastonbury"))
}

func TestCatalog_FestivalByName(t *testing.T) {
	t.Parallel()

	c := testCatalog()
	f := c.FestivalByName("End of the Road")
	require.NotNil(t, f)
	assert.Equal(t, 1, f.ArtistCount)
	assert.Nil(t, c.FestivalByName("nope"))
}

func TestArtist_HasKnownGenres(t *testing.T) {
	t.Parallel()

	assert.False(t, (&Artist{}).HasKnownGenres())
	assert.False(t, (&Artist{Genres: []string{UnknownTag}}).HasKnownGenres())
	assert.True(t, (&Artist{Genres: []string{"jazz"}}).HasKnownGenres())
	assert.True(t, (&Artist{Genres: []string{UnknownTag, "jazz"}}).HasKnownGenres())
}

func TestArtist_AppearsAt(t *testing.T) {
	t.Parallel()

	a := &Artist{Festivals: []FestivalRef{{Name: "Field Day", URL: "https://fieldday.example"}}}
	assert.True(t, a.AppearsAt("Field Day"))
	assert.False(t, a.AppearsAt("Other Fest"))
}
