// Package diff computes set-level differences between two following-list
// snapshots. Relations are compared by ID only, so a renamed account (same
// ID, different username or name) lands in Unchanged and produces no event.
// Both inputs are treated as unordered sets: the upstream fetch does not
// guarantee stable ordering across calls.
package diff

import "github.com/victoravtr/LEC-Ditto/internal/domain"

// Compute classifies fresh relative to old. Removed entries carry the old
// copy of the relation (last-known username and name for display); Added
// entries carry the fresh copy.
func Compute(old, fresh []domain.FollowRelation) domain.Delta {
	oldByID := make(map[string]domain.FollowRelation, len(old))
	for _, rel := range old {
		oldByID[rel.ID] = rel
	}
	freshByID := make(map[string]domain.FollowRelation, len(fresh))
	for _, rel := range fresh {
		freshByID[rel.ID] = rel
	}

	var delta domain.Delta
	for _, rel := range old {
		if _, ok := freshByID[rel.ID]; !ok {
			delta.Removed = append(delta.Removed, rel)
		}
	}
	for _, rel := range fresh {
		if _, ok := oldByID[rel.ID]; ok {
			delta.Unchanged = append(delta.Unchanged, rel)
		} else {
			delta.Added = append(delta.Added, rel)
		}
	}
	return delta
}
