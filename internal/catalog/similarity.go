package catalog

import (
	"math"
	"sort"
)

// DefaultSimilarLimit is the number of neighbours SimilarArtists returns
// when the caller passes k <= 0.
const DefaultSimilarLimit = 3

// SimilarArtists returns the k nearest neighbours of target by cosine
// similarity over one-hot genre+timbre vectors. The "unknown" placeholder
// is excluded from the vocabulary, and artists classified as unknown are
// never returned as neighbours.
func SimilarArtists(target *Artist, all map[string]*Artist, k int) []*Artist {
	if k <= 0 {
		k = DefaultSimilarLimit
	}

	vocab := buildVocabulary(all)
	if len(vocab) == 0 {
		return nil
	}

	targetVec := toVector(target, vocab)
	targetKey := NormalizeKey(target.Name)

	type scored struct {
		sim    float64
		artist *Artist
	}
	var candidates []scored
	for key, a := range all {
		if key == targetKey {
			continue
		}
		if !a.HasKnownGenres() {
			continue
		}
		candidates = append(candidates, scored{
			sim:    cosineSimilarity(targetVec, toVector(a, vocab)),
			artist: a,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		// Tie-break on name so results are deterministic.
		return NormalizeKey(candidates[i].artist.Name) < NormalizeKey(candidates[j].artist.Name)
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	result := make([]*Artist, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.artist)
	}
	return result
}

// buildVocabulary collects the distinct genre and timbre tags across all
// artists, excluding the "unknown" placeholder, in sorted order.
func buildVocabulary(all map[string]*Artist) []string {
	seen := make(map[string]struct{})
	for _, a := range all {
		for _, g := range a.Genres {
			seen[g] = struct{}{}
		}
		for _, t := range a.Timbre {
			seen[t] = struct{}{}
		}
	}
	delete(seen, UnknownTag)

	vocab := make([]string, 0, len(seen))
	for tag := range seen {
		vocab = append(vocab, tag)
	}
	sort.Strings(vocab)
	return vocab
}

func toVector(a *Artist, vocab []string) []float64 {
	index := make(map[string]int, len(vocab))
	for i, tag := range vocab {
		index[tag] = i
	}
	vec := make([]float64, len(vocab))
	for _, g := range a.Genres {
		if i, ok := index[g]; ok {
			vec[i] = 1
		}
	}
	for _, t := range a.Timbre {
		if i, ok := index[t]; ok {
			vec[i] = 1
		}
	}
	return vec
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
