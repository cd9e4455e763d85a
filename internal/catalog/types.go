package catalog

import (
	"sort"
	"time"
)

const (
	// UnknownTag is the placeholder tag assigned when classification
	// could not determine real genres or timbre descriptors.
	UnknownTag = "unknown"

	// DocumentVersion is the current catalog document schema version.
	DocumentVersion = 1
)

// FestivalRef records one festival appearance on an artist entry.
type FestivalRef struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	DateScraped time.Time `json:"date_scraped"`
}

// Festival is a festival known to the catalog, with the number of
// artists ingested from its lineup.
type Festival struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	ArtistCount int       `json:"artist_count"`
	DateScraped time.Time `json:"date_scraped"`
}

// Artist is one catalog entry. Genres and Timbre are the two independent
// tag sets the visibility filter operates on; both are treated as
// unordered and duplicate-insensitive.
type Artist struct {
	Name        string        `json:"name"`
	Genres      []string      `json:"genres"`
	Timbre      []string      `json:"timbre"`
	Festivals   []FestivalRef `json:"festivals"`
	FirstSeen   time.Time     `json:"first_seen"`
	LastUpdated time.Time     `json:"last_updated"`
}

// HasKnownGenres reports whether the artist carries real classification
// data rather than the "unknown" placeholder.
func (a *Artist) HasKnownGenres() bool {
	if len(a.Genres) == 0 {
		return false
	}
	return !(len(a.Genres) == 1 && a.Genres[0] == UnknownTag)
}

// AppearsAt reports whether the artist already lists the named festival.
// Festivals are identified by name throughout the catalog; file and roster
// sources carry no URL.
func (a *Artist) AppearsAt(name string) bool {
	for _, f := range a.Festivals {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Metadata describes the catalog document itself.
type Metadata struct {
	Version      int        `json:"version"`
	LastModified *time.Time `json:"last_modified"`
}

// Catalog is the full catalog document. Artists are keyed by their
// normalized name (see NormalizeKey).
type Catalog struct {
	Artists   map[string]*Artist `json:"artists"`
	Festivals []Festival         `json:"festivals"`
	Metadata  Metadata           `json:"metadata"`
}

// NewCatalog returns an empty catalog document.
func NewCatalog() *Catalog {
	return &Catalog{
		Artists:   make(map[string]*Artist),
		Festivals: make([]Festival, 0),
		Metadata:  Metadata{Version: DocumentVersion},
	}
}

// SortedArtists returns all artists ordered by case-insensitive name.
// This is the canonical entry order the presentation layer preserves.
func (c *Catalog) SortedArtists() []*Artist {
	artists := make([]*Artist, 0, len(c.Artists))
	for _, a := range c.Artists {
		artists = append(artists, a)
	}
	sort.Slice(artists, func(i, j int) bool {
		return NormalizeKey(artists[i].Name) < NormalizeKey(artists[j].Name)
	})
	return artists
}

// FestivalByName returns the festival with the given name, or nil.
func (c *Catalog) FestivalByName(name string) *Festival {
	for i := range c.Festivals {
		if c.Festivals[i].Name == name {
			return &c.Festivals[i]
		}
	}
	return nil
}

// ArtistsForFestival returns the artists appearing at the named festival,
// ordered by case-insensitive name.
func (c *Catalog) ArtistsForFestival(name string) []*Artist {
	var artists []*Artist
	for _, a := range c.Artists {
		for _, f := range a.Festivals {
			if f.Name == name {
				artists = append(artists, a)
				break
			}
		}
	}
	sort.Slice(artists, func(i, j int) bool {
		return NormalizeKey(artists[i].Name) < NormalizeKey(artists[j].Name)
	})
	return artists
}

// Genres returns the sorted distinct genre vocabulary across all artists.
// These are the identifiers the genre filter group is built from.
func (c *Catalog) Genres() []string {
	return c.collectTags(func(a *Artist) []string { return a.Genres })
}

// Timbres returns the sorted distinct timbre vocabulary across all artists.
func (c *Catalog) Timbres() []string {
	return c.collectTags(func(a *Artist) []string { return a.Timbre })
}

func (c *Catalog) collectTags(pick func(*Artist) []string) []string {
	seen := make(map[string]struct{})
	for _, a := range c.Artists {
		for _, tag := range pick(a) {
			if tag == "" {
				continue
			}
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
