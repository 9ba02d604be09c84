// Package diff computes the change between two tag sets.
package diff

import "sort"

// Diff returns removed = old − new and added = new − old. Both results are
// sorted and free of duplicates; inputs are treated as sets.
func Diff(old, new []string) (removed, added []string) {
	oldSet := toSet(old)
	newSet := toSet(new)

	for t := range oldSet {
		if _, ok := newSet[t]; !ok {
			removed = append(removed, t)
		}
	}
	for t := range newSet {
		if _, ok := oldSet[t]; !ok {
			added = append(added, t)
		}
	}
	sort.Strings(removed)
	sort.Strings(added)
	return removed, added
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
