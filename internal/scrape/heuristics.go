package scrape

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	minNameLength = 2
	maxNameLength = 80
	maxNameWords  = 6

	// minAlphaRatio is the fraction of a candidate that must be letters
	minAlphaRatio = 0.4
)

// noisePattern matches lines that are clearly page furniture rather than
// artist names.
var noisePattern = regexp.MustCompile(
	`(?i)\b(buy|tickets?|sign.?up|newsletter|cookies?|privacy|policy|copyright|all rights|menu|login|log in|register|subscribe|follow us|facebook|instagram|twitter|youtube|more info|read more|sold out|stage times|faq|contact|about us)\b`,
)

// SplitCandidates breaks a blob of page text into candidate artist names,
// splitting on newlines and the separators lineup lists typically use.
func SplitCandidates(text string) []string {
	separators := strings.NewReplacer(
		"•", "\n",
		"·", "\n",
		"|", "\n",
		"/", "\n",
		"★", "\n",
		"*", "\n",
		",", "\n",
		";", "\n",
	)
	var candidates []string
	for _, line := range strings.Split(separators.Replace(text), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			candidates = append(candidates, line)
		}
	}
	return candidates
}

// PlausibleArtistName reports whether a candidate line looks like an artist
// name rather than page noise.
func PlausibleArtistName(candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if len(candidate) < minNameLength || len(candidate) > maxNameLength {
		return false
	}
	if len(strings.Fields(candidate)) > maxNameWords {
		return false
	}
	if noisePattern.MatchString(candidate) {
		return false
	}
	lower := strings.ToLower(candidate)
	if strings.Contains(lower, "http") || strings.Contains(lower, "www.") || strings.Contains(lower, "@") {
		return false
	}

	letters := 0
	total := 0
	for _, r := range candidate {
		if !unicode.IsSpace(r) {
			total++
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return false
	}
	return float64(letters)/float64(total) >= minAlphaRatio
}
