package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/festivalfriend/lineup-server/internal/catalog"
)

const (
	// exactMatchScore accepts a search hit whose name matches exactly
	exactMatchScore = 90

	// fuzzyMatchScore accepts a close-but-inexact search hit
	fuzzyMatchScore = 80

	// maxEditDistance bounds how far a fuzzy hit may drift from the query
	maxEditDistance = 2

	// searchLimit is how many candidates to request per artist search
	searchLimit = 3
)

// Classification holds the derived tag sets for one artist.
type Classification struct {
	Genres []string
	Timbre []string
}

// Unknown returns a classification for an artist that could not be resolved.
func Unknown() Classification {
	return Classification{
		Genres: []string{catalog.UnknownTag},
		Timbre: []string{catalog.UnknownTag},
	}
}

// ProgressFunc is called after each artist in a batch is classified.
type ProgressFunc func(done, total int, current string)

// Classifier resolves artist names into genre and timbre tag sets.
type Classifier interface {
	// ClassifyArtist classifies a single artist by name. Artists that
	// cannot be resolved get the unknown classification, not an error.
	ClassifyArtist(ctx context.Context, name string) (Classification, error)

	// ClassifyBatch classifies a list of artist names, skipping names that
	// already have a known classification in the given catalog.
	ClassifyBatch(ctx context.Context, names []string, existing *catalog.Catalog, onProgress ProgressFunc) (map[string]Classification, error)

	// ValidateArtist reports whether a name resolves to a real artist.
	ValidateArtist(ctx context.Context, name string) (bool, error)
}

// defaultClassifier implements Classifier against MusicBrainz
type defaultClassifier struct {
	client MusicBrainzClient
}

var _ Classifier = (*defaultClassifier)(nil)

// NewDefaultClassifier creates a classifier backed by the public
// MusicBrainz web service.
func NewDefaultClassifier() Classifier {
	return NewClassifier(NewMusicBrainzClient())
}

// NewClassifier creates a classifier backed by the given client.
func NewClassifier(client MusicBrainzClient) Classifier {
	return &defaultClassifier{client: client}
}

// ClassifyArtist implements Classifier.ClassifyArtist
func (c *defaultClassifier) ClassifyArtist(ctx context.Context, name string) (Classification, error) {
	match, err := c.bestMatch(ctx, name)
	if err != nil {
		return Classification{}, err
	}
	if match == nil {
		slog.DebugContext(ctx, "No acceptable MusicBrainz match", "artist", name)
		return Unknown(), nil
	}

	tags, err := c.client.ArtistTags(ctx, match.ID)
	if err != nil {
		return Classification{}, fmt.Errorf("failed to fetch tags for %q: %w", name, err)
	}

	return Classification{
		Genres: TagsToGenres(tags),
		Timbre: TagsToTimbre(tags),
	}, nil
}

// ClassifyBatch implements Classifier.ClassifyBatch
func (c *defaultClassifier) ClassifyBatch(
	ctx context.Context,
	names []string,
	existing *catalog.Catalog,
	onProgress ProgressFunc,
) (map[string]Classification, error) {
	results := make(map[string]Classification, len(names))
	total := len(names)

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if known := knownClassification(existing, name); known != nil {
			results[name] = *known
		} else {
			classification, err := c.ClassifyArtist(ctx, name)
			if err != nil {
				// One bad lookup should not sink the whole batch.
				slog.WarnContext(ctx, "Classification failed", "artist", name, "error", err)
				classification = Unknown()
			}
			results[name] = classification
		}

		if onProgress != nil {
			onProgress(i+1, total, name)
		}
	}
	return results, nil
}

// ValidateArtist implements Classifier.ValidateArtist
func (c *defaultClassifier) ValidateArtist(ctx context.Context, name string) (bool, error) {
	match, err := c.bestMatch(ctx, name)
	if err != nil {
		return false, err
	}
	return match != nil, nil
}

// bestMatch searches MusicBrainz and returns the first acceptable hit, or
// nil when nothing matches well enough.
func (c *defaultClassifier) bestMatch(ctx context.Context, name string) (*MBArtist, error) {
	artists, err := c.client.SearchArtists(ctx, name, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search for %q: %w", name, err)
	}

	want := normalizeTag(name)
	for i := range artists {
		candidate := artists[i]
		got := normalizeTag(candidate.Name)

		if candidate.Score >= exactMatchScore && got == want {
			return &candidate, nil
		}
		if candidate.Score >= fuzzyMatchScore && closeEnough(want, got) {
			return &candidate, nil
		}
	}
	return nil, nil
}

// closeEnough accepts small spelling drift between the query and the hit.
func closeEnough(a, b string) bool {
	if len(a)-len(b) > maxEditDistance || len(b)-len(a) > maxEditDistance {
		return false
	}
	return editDistance(a, b) <= maxEditDistance
}

// editDistance computes the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	ar := []rune(strings.ToLower(a))
	br := []rune(strings.ToLower(b))

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

// knownClassification returns the stored classification for a name when the
// catalog already has real (non-unknown) genres for it.
func knownClassification(existing *catalog.Catalog, name string) *Classification {
	if existing == nil {
		return nil
	}
	artist, ok := existing.Artists[catalog.NormalizeKey(name)]
	if !ok || !artist.HasKnownGenres() {
		return nil
	}
	return &Classification{
		Genres: append([]string(nil), artist.Genres...),
		Timbre: append([]string(nil), artist.Timbre...),
	}
}
