package sources

import (
	"strings"

	"github.com/festivalfriend/lineup-server/internal/catalog"
)

// ParseRoster parses a plain text roster into cleaned artist names. Each
// line holds one artist or a comma-separated list; blank lines and lines
// starting with '#' are skipped.
func ParseRoster(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				names = append(names, part)
			}
		}
	}
	return catalog.CleanLineupNames(names)
}
