package filtering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultGroupFilter(t *testing.T) {
	t.Parallel()

	filter := NewDefaultGroupFilter()
	assert.NotNil(t, filter)
}

func TestDefaultGroupFilter_Matches(t *testing.T) {
	t.Parallel()

	filter := NewDefaultGroupFilter()

	tests := []struct {
		name      string
		tags      []string
		selection []string
		expected  bool
		reason    string
	}{
		{
			name:      "empty selection matches vacuously",
			tags:      []string{"jazz"},
			selection: []string{},
			expected:  true,
			reason:    "empty selection imposes no constraint",
		},
		{
			name:      "nil selection matches vacuously",
			tags:      []string{"jazz"},
			selection: nil,
			expected:  true,
			reason:    "nil selection imposes no constraint",
		},
		{
			name:      "empty tags with empty selection",
			tags:      nil,
			selection: nil,
			expected:  true,
			reason:    "no constraint means everything passes",
		},
		{
			name:      "single tag matches selection",
			tags:      []string{"jazz"},
			selection: []string{"jazz"},
			expected:  true,
			reason:    "exact tag match",
		},
		{
			name:      "union match within group",
			tags:      []string{"blues"},
			selection: []string{"jazz", "blues"},
			expected:  true,
			reason:    "any selected tag matching any entry tag is enough",
		},
		{
			name:      "no overlap",
			tags:      []string{"folk", "country"},
			selection: []string{"jazz", "blues"},
			expected:  false,
			reason:    "disjoint sets must not match",
		},
		{
			name:      "empty tags never match a non-empty selection",
			tags:      nil,
			selection: []string{"jazz"},
			expected:  false,
			reason:    "missing tag data degrades to no match, not an error",
		},
		{
			name:      "duplicate entry tags have no effect",
			tags:      []string{"jazz", "jazz", "jazz"},
			selection: []string{"jazz"},
			expected:  true,
			reason:    "deduplication-insensitive",
		},
		{
			name:      "unknown tags are inert",
			tags:      []string{"not-a-real-option", "jazz"},
			selection: []string{"jazz"},
			expected:  true,
			reason:    "tags without a matching option never gate anything",
		},
		{
			name:      "comparison is case-insensitive",
			tags:      []string{"Jazz"},
			selection: []string{"JAZZ"},
			expected:  true,
			reason:    "identifiers are normalized before comparison",
		},
		{
			name:      "whitespace is trimmed",
			tags:      []string{" jazz "},
			selection: []string{"jazz"},
			expected:  true,
			reason:    "identifiers are normalized before comparison",
		},
		{
			name:      "selection of blank identifiers imposes no constraint",
			tags:      []string{"folk"},
			selection: []string{"", "  "},
			expected:  true,
			reason:    "blank identifiers are dropped from the selection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			matches, reason := filter.Matches(tt.tags, tt.selection)
			assert.Equal(t, tt.expected, matches, tt.reason)
			assert.NotEmpty(t, reason)
		})
	}
}
