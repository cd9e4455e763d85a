// Package classify resolves artist names against the MusicBrainz web
// service and derives the two tag sets the catalog filters on: genres
// (taken from MusicBrainz community tags, with non-genre tags filtered
// out) and timbre descriptors (a fixed vocabulary mapped from genre
// keywords).
package classify
