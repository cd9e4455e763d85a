package classify

import (
	"regexp"
	"strings"

	"github.com/festivalfriend/lineup-server/internal/catalog"
)

const (
	// maxGenres caps how many genre tags an artist keeps
	maxGenres = 3

	// maxTimbre caps how many timbre descriptors an artist keeps
	maxTimbre = 4

	// fallbackTimbre is used when no timbre keyword matches any tag
	fallbackTimbre = "dynamic"
)

// nonGenrePattern matches MusicBrainz community tags that are not genres:
// nationalities, decades, and meta tags like "seen live".
var nonGenrePattern = regexp.MustCompile(
	`^(seen live|favou?rites?|own(ed)? .*|american|british|english|french|german|swedish|norwegian|danish|dutch|belgian|canadian|australian|japanese|korean|icelandic|irish|scottish|italian|spanish|brazilian|usa|uk|male|female|male vocalists?|female vocalists?|singer-?songwriters?|[0-9]{2,4}s?|under [0-9]+ listeners)$`,
)

// timbreEntry maps one timbre descriptor to the genre keywords that imply it.
type timbreEntry struct {
	descriptor string
	keywords   []string
}

// timbreVocabulary is ordered so that classification is deterministic for a
// given tag set.
var timbreVocabulary = []timbreEntry{
	{"energetic", []string{"punk", "metal", "hardcore", "thrash", "drum and bass", "dnb", "breakbeat", "hard rock"}},
	{"chill", []string{"ambient", "chillout", "downtempo", "lo-fi", "lofi", "trip hop", "trip-hop"}},
	{"dark", []string{"doom", "black metal", "gothic", "darkwave", "industrial", "noir"}},
	{"dreamy", []string{"shoegaze", "dream pop", "dreampop", "psychedelic", "ethereal"}},
	{"groovy", []string{"funk", "disco", "house", "soul", "groove", "boogie"}},
	{"melodic", []string{"pop", "indie pop", "melodic", "synth-pop", "synthpop"}},
	{"heavy", []string{"metal", "sludge", "stoner", "doom", "grindcore"}},
	{"atmospheric", []string{"post-rock", "post rock", "ambient", "atmospheric", "soundscape"}},
	{"raw", []string{"garage", "punk", "lo-fi", "lofi", "noise", "grunge"}},
	{"experimental", []string{"experimental", "avant-garde", "avantgarde", "idm", "glitch", "free jazz"}},
	{"smooth", []string{"jazz", "soul", "r&b", "rnb", "bossa nova", "smooth"}},
	{"uplifting", []string{"trance", "gospel", "uplifting", "eurodance", "happy hardcore"}},
	{"electronic", []string{"electronic", "techno", "house", "edm", "electro", "synth"}},
	{"acoustic", []string{"folk", "acoustic", "singer-songwriter", "bluegrass", "americana"}},
}

// normalizeTag lowercases and trims a tag for comparison
func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// IsGenreTag reports whether a community tag looks like an actual genre.
func IsGenreTag(tag string) bool {
	return !nonGenrePattern.MatchString(normalizeTag(tag))
}

// TagsToGenres derives an artist's genre list from its community tags,
// which must already be sorted by popularity. Non-genre tags are filtered
// out; if nothing survives the filter the raw top tags are kept rather than
// losing the artist entirely.
func TagsToGenres(tags []string) []string {
	if len(tags) == 0 {
		return []string{catalog.UnknownTag}
	}

	genres := make([]string, 0, maxGenres)
	for _, tag := range tags {
		if len(genres) >= maxGenres {
			break
		}
		normalized := normalizeTag(tag)
		if normalized == "" || !IsGenreTag(normalized) {
			continue
		}
		genres = append(genres, normalized)
	}
	if len(genres) > 0 {
		return genres
	}

	// Every tag was filtered out; fall back to the raw top tags.
	for _, tag := range tags {
		if len(genres) >= maxGenres {
			break
		}
		normalized := normalizeTag(tag)
		if normalized != "" {
			genres = append(genres, normalized)
		}
	}
	if len(genres) == 0 {
		return []string{catalog.UnknownTag}
	}
	return genres
}

// TagsToTimbre derives timbre descriptors from the full community tag list
// by substring matching against the timbre vocabulary. It works on the raw
// tags rather than the filtered genres so descriptors implied by tags beyond
// the genre cap are not lost.
func TagsToTimbre(tags []string) []string {
	if len(tags) == 0 {
		return []string{catalog.UnknownTag}
	}

	descriptors := make([]string, 0, maxTimbre)
	for _, entry := range timbreVocabulary {
		if len(descriptors) >= maxTimbre {
			break
		}
		if timbreMatches(entry, tags) {
			descriptors = append(descriptors, entry.descriptor)
		}
	}
	if len(descriptors) == 0 {
		return []string{fallbackTimbre}
	}
	return descriptors
}

func timbreMatches(entry timbreEntry, tags []string) bool {
	for _, tag := range tags {
		normalized := normalizeTag(tag)
		for _, keyword := range entry.keywords {
			if strings.Contains(normalized, keyword) {
				return true
			}
		}
	}
	return false
}
