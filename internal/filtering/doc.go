// Package filtering implements the visibility engine for catalog listings.
//
// The engine combines two independently selected filter groups — genres and
// timbre descriptors — into a single visibility decision per artist entry,
// plus an aggregate visible count.
//
// # Matching rules
//
// Within a group, matching is disjunctive: an entry passes a group's test
// when any of its tags is in the group's selection ("jazz OR blues"). An
// empty selection imposes no constraint from that group (vacuous match).
// Across groups, matching is conjunctive: an entry is visible only when it
// passes both the genre test and the timbre test ("(jazz OR blues) AND
// warm").
//
// # Properties
//
// Computation is a pure function of the two selections and the entry
// sequence: deterministic, idempotent, order-preserving (entries are hidden,
// never reordered), and total. Entries with missing tag data simply never
// match a non-empty selection; tags that correspond to no known filter
// option are inert. There are no error conditions.
//
// # Usage
//
//	service := NewDefaultFilterService()
//	result := service.ComputeVisibility(ctx, []string{"jazz", "blues"}, []string{"warm"}, entries)
//	for _, d := range result.Decisions { ... }
//	label := result.CountLabel() // "(2)"
//
// Each decision carries a human-readable reason for inclusion or exclusion,
// which makes filter behavior easy to debug.
package filtering
