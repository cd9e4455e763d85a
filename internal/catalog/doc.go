// Package catalog defines the core data model for the lineup catalog:
// artists with their genre and timbre tags, the festivals they were seen
// at, and the document that holds them all.
package catalog
