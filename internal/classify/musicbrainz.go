package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/festivalfriend/lineup-server/internal/httpclient"
)

const (
	// DefaultMusicBrainzEndpoint is the base URL of the MusicBrainz web service
	DefaultMusicBrainzEndpoint = "https://musicbrainz.org/ws/2"

	// defaultRequestInterval keeps us under the MusicBrainz courtesy limit
	// of one request per second.
	defaultRequestInterval = 1100 * time.Millisecond

	// maxRetries bounds retries on 503 responses
	maxRetries = 4
)

// MBArtist is one artist result from the MusicBrainz search endpoint.
type MBArtist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// MusicBrainzClient is an interface for the subset of the MusicBrainz web
// service the classifier needs.
type MusicBrainzClient interface {
	// SearchArtists searches for artists by name, best matches first.
	SearchArtists(ctx context.Context, name string, limit int) ([]MBArtist, error)

	// ArtistTags returns the community tags for an artist, most popular
	// first, lowercased, zero-count tags dropped.
	ArtistTags(ctx context.Context, artistID string) ([]string, error)
}

// MBOption configures a defaultMusicBrainzClient
type MBOption func(*defaultMusicBrainzClient)

// WithEndpoint overrides the MusicBrainz base URL (used in tests).
func WithEndpoint(endpoint string) MBOption {
	return func(c *defaultMusicBrainzClient) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client httpclient.Client) MBOption {
	return func(c *defaultMusicBrainzClient) {
		c.client = client
	}
}

// WithRequestInterval overrides the courtesy rate limit interval.
func WithRequestInterval(interval time.Duration) MBOption {
	return func(c *defaultMusicBrainzClient) {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// defaultMusicBrainzClient implements MusicBrainzClient over HTTP
type defaultMusicBrainzClient struct {
	endpoint string
	client   httpclient.Client
	limiter  *rate.Limiter
}

var _ MusicBrainzClient = (*defaultMusicBrainzClient)(nil)

// NewMusicBrainzClient creates a rate-limited MusicBrainz client.
func NewMusicBrainzClient(opts ...MBOption) MusicBrainzClient {
	c := &defaultMusicBrainzClient{
		endpoint: DefaultMusicBrainzEndpoint,
		client: httpclient.NewDefaultClient(
			httpclient.WithTimeout(10*time.Second),
			httpclient.WithAccept("application/json"),
		),
		limiter: rate.NewLimiter(rate.Every(defaultRequestInterval), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchArtists implements MusicBrainzClient.SearchArtists
func (c *defaultMusicBrainzClient) SearchArtists(ctx context.Context, name string, limit int) ([]MBArtist, error) {
	if limit <= 0 {
		limit = 1
	}

	query := url.Values{}
	query.Set("query", fmt.Sprintf("artist:%q", name))
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("fmt", "json")

	body, err := c.get(ctx, fmt.Sprintf("%s/artist?%s", c.endpoint, query.Encode()))
	if err != nil {
		return nil, fmt.Errorf("artist search for %q failed: %w", name, err)
	}

	var result struct {
		Artists []MBArtist `json:"artists"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse artist search response: %w", err)
	}
	return result.Artists, nil
}

// ArtistTags implements MusicBrainzClient.ArtistTags
func (c *defaultMusicBrainzClient) ArtistTags(ctx context.Context, artistID string) ([]string, error) {
	query := url.Values{}
	query.Set("inc", "tags")
	query.Set("fmt", "json")

	body, err := c.get(ctx, fmt.Sprintf("%s/artist/%s?%s", c.endpoint, url.PathEscape(artistID), query.Encode()))
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			// Tag lookup failures are not fatal, the artist is just unclassified.
			return nil, nil
		}
		return nil, fmt.Errorf("tag lookup for artist %s failed: %w", artistID, err)
	}

	var result struct {
		Tags []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"tags"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse artist tags response: %w", err)
	}

	sort.SliceStable(result.Tags, func(i, j int) bool {
		return result.Tags[i].Count > result.Tags[j].Count
	})

	tags := make([]string, 0, len(result.Tags))
	for _, tag := range result.Tags {
		if tag.Count > 0 {
			tags = append(tags, normalizeTag(tag.Name))
		}
	}
	return tags, nil
}

// get performs a rate-limited GET with retries on 503 responses.
func (c *defaultMusicBrainzClient) get(ctx context.Context, requestURL string) ([]byte, error) {
	operation := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		body, err := c.client.Get(ctx, requestURL)
		if err != nil {
			var httpErr *httpclient.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusServiceUnavailable {
				// MusicBrainz signals throttling with 503; back off and retry.
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return body, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxRetries),
	)
}
