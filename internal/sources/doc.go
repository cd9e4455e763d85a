// Package sources provides handlers for fetching festival lineups from
// external data sources. Each source type (web page, roster file) has a
// handler that fetches the raw lineup, cleans the artist names, and hashes
// the result for change detection.
package sources
