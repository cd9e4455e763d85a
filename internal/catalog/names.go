package catalog

import (
	"regexp"
	"strings"
)

var (
	// b2bPattern splits back-to-back billings like "Artist A B2B Artist B".
	b2bPattern = regexp.MustCompile(`\s*[Bb]2[Bb]\s*`)

	// parenPattern strips parenthesized set notes like "(Sunrise Set)".
	parenPattern = regexp.MustCompile(`\s*\([^)]*\)`)
)

// NormalizeKey returns the canonical map key for an artist name.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CleanLineupNames prepares raw lineup billings for classification: B2B
// combos are split into individual artists, parenthesized set notes are
// stripped, and the result is deduplicated case-insensitively with the
// original order preserved.
func CleanLineupNames(names []string) []string {
	var cleaned []string
	for _, name := range names {
		for _, part := range b2bPattern.Split(name, -1) {
			part = strings.TrimSpace(parenPattern.ReplaceAllString(part, ""))
			if part != "" {
				cleaned = append(cleaned, part)
			}
		}
	}
	return DedupeNames(cleaned)
}

// DedupeNames removes duplicate names case-insensitively, preserving the
// order of first occurrence. Names are trimmed; empty strings are dropped.
func DedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := NormalizeKey(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, name)
	}
	return result
}
