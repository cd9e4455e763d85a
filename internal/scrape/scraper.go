// Package scrape extracts festival names and artist lineups from festival
// web pages. Pages are wildly inconsistent, so extraction is heuristic:
// likely lineup containers are tried first, then visible text is split into
// candidate lines and filtered for plausibility.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/festivalfriend/lineup-server/internal/catalog"
	"github.com/festivalfriend/lineup-server/internal/httpclient"
)

// lineupSelectors are CSS selectors commonly used for lineup blocks,
// tried in order of specificity.
var lineupSelectors = []string{
	"[class*='lineup'] li",
	"[class*='line-up'] li",
	"[class*='artist'] li",
	"[id*='lineup'] li",
	"[class*='lineup'] h3",
	"[class*='lineup'] h4",
	"[class*='artist'] h3",
	".lineup a",
	".artists a",
}

// contentSelectors scope text extraction away from navigation and footers
var contentSelectors = []string{"main", "article", "#content", ".content", "body"}

// Scraper fetches a festival page and extracts its lineup.
type Scraper interface {
	// ScrapeLineup fetches the page at pageURL and returns the festival
	// name and the cleaned artist names found on it.
	ScrapeLineup(ctx context.Context, pageURL string) (string, []string, error)
}

// defaultScraper implements Scraper over an HTTP client
type defaultScraper struct {
	client httpclient.Client
}

var _ Scraper = (*defaultScraper)(nil)

// NewDefaultScraper creates a scraper with the default HTTP client.
func NewDefaultScraper() Scraper {
	return NewScraper(httpclient.NewDefaultClient())
}

// NewScraper creates a scraper using the given HTTP client.
func NewScraper(client httpclient.Client) Scraper {
	return &defaultScraper{client: client}
}

// ScrapeLineup implements Scraper.ScrapeLineup
func (s *defaultScraper) ScrapeLineup(ctx context.Context, pageURL string) (string, []string, error) {
	body, err := s.client.Get(ctx, pageURL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	name := ExtractFestivalName(doc, pageURL)
	artists := ExtractArtists(doc)

	slog.InfoContext(ctx, "Scraped lineup page",
		"url", pageURL,
		"festival", name,
		"artists", len(artists))
	return name, artists, nil
}

// genericTitleWords are page titles that say nothing about which festival
// this is.
var genericTitleWords = map[string]bool{
	"lineup":   true,
	"line-up":  true,
	"line up":  true,
	"artists":  true,
	"schedule": true,
	"tickets":  true,
	"home":     true,
	"festival": true,
}

// ExtractFestivalName derives a festival name from the page title, the
// first heading, or the host name as a last resort.
func ExtractFestivalName(doc *goquery.Document, pageURL string) string {
	candidates := []string{
		doc.Find("title").First().Text(),
		doc.Find("h1").First().Text(),
	}
	for _, candidate := range candidates {
		if name := cleanTitle(candidate); name != "" {
			return name
		}
	}
	return nameFromHost(pageURL)
}

// cleanTitle strips separator suffixes ("Foo Fest | Lineup 2026") and
// rejects titles that are only generic words.
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	for _, sep := range []string{"|", " - ", "–", "—"} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = strings.TrimSpace(title[:idx])
		}
	}
	if title == "" || len(title) > 80 {
		return ""
	}

	// Titles consisting entirely of generic words are useless.
	words := strings.Fields(strings.ToLower(title))
	generic := 0
	for _, word := range words {
		if genericTitleWords[strings.Trim(word, "0123456789")] || genericTitleWords[word] {
			generic++
		}
	}
	if generic == len(words) {
		return ""
	}
	return title
}

// nameFromHost turns "www.glasto-fest.co.uk" into "Glasto Fest".
func nameFromHost(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return "Unknown Festival"
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	if idx := strings.Index(host, "."); idx > 0 {
		host = host[:idx]
	}
	host = strings.NewReplacer("-", " ", "_", " ").Replace(host)
	return titleCase(host)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// ExtractArtists pulls candidate artist names out of the document. Lineup
// containers are preferred; when none match, visible text in the main
// content area is split into lines and filtered.
func ExtractArtists(doc *goquery.Document) []string {
	for _, selector := range lineupSelectors {
		names := collectPlausible(doc.Find(selector))
		if len(names) >= 3 {
			return catalog.CleanLineupNames(names)
		}
	}
	return catalog.CleanLineupNames(artistsFromText(doc))
}

// collectPlausible gathers the text of each selected node, keeping only
// plausible artist names.
func collectPlausible(selection *goquery.Selection) []string {
	var names []string
	selection.Each(func(_ int, node *goquery.Selection) {
		for _, candidate := range SplitCandidates(node.Text()) {
			if PlausibleArtistName(candidate) {
				names = append(names, candidate)
			}
		}
	})
	return names
}

// artistsFromText is the fallback: split the main content's text into
// candidate lines and keep the plausible ones.
func artistsFromText(doc *goquery.Document) []string {
	for _, selector := range contentSelectors {
		content := doc.Find(selector).First()
		if content.Length() == 0 {
			continue
		}
		content.Find("script, style, nav, footer, header").Remove()

		var names []string
		for _, candidate := range SplitCandidates(content.Text()) {
			if PlausibleArtistName(candidate) {
				names = append(names, candidate)
			}
		}
		if len(names) > 0 {
			return names
		}
	}
	return nil
}
