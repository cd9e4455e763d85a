package filtering

import (
	"fmt"
	"strings"
)

// GroupFilter decides whether an entry's tag set passes one filter group's
// selection.
type GroupFilter interface {
	// Matches determines if an entry with the given tags passes the group's
	// selection. Returns (matches bool, reason string).
	Matches(tags []string, selection []string) (bool, string)
}

// defaultGroupFilter implements union matching within a group
type defaultGroupFilter struct{}

var _ GroupFilter = (*defaultGroupFilter)(nil)

// NewDefaultGroupFilter creates a new defaultGroupFilter
func NewDefaultGroupFilter() GroupFilter {
	return &defaultGroupFilter{}
}

// Matches determines if an entry with the given tags passes the group's
// selection.
//
// Logic:
//  1. If the selection is empty -> match (the group imposes no constraint)
//  2. If any entry tag equals any selected tag -> match
//  3. Otherwise -> no match
//
// Comparison is case-insensitive on trimmed tags. Duplicate tags on the
// entry have no effect; tags unknown to the selection never gate anything.
func (*defaultGroupFilter) Matches(tags []string, selection []string) (bool, string) {
	if len(selection) == 0 {
		return true, "no selection in group"
	}

	selected := make(map[string]struct{}, len(selection))
	for _, s := range selection {
		s = normalizeTag(s)
		if s == "" {
			continue
		}
		selected[s] = struct{}{}
	}
	// A selection of only blank identifiers imposes no constraint either.
	if len(selected) == 0 {
		return true, "no selection in group"
	}

	for _, tag := range tags {
		if _, ok := selected[normalizeTag(tag)]; ok {
			return true, fmt.Sprintf("matched selected tag '%s'", normalizeTag(tag))
		}
	}

	return false, fmt.Sprintf("no tag in %v matches selection %v", tags, selection)
}

// normalizeTag canonicalizes a tag identifier for comparison.
func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
