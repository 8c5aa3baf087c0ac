package search

// candidates is one facet's resolution outcome. A facet that imposes no
// constraint is unrestricted, which is distinct from an empty restricted
// set: the latter short-circuits the whole request to zero results.
type candidates struct {
	ids        []string
	restricted bool
}

func unrestricted() candidates {
	return candidates{}
}

func restricted(ids []string) candidates {
	return candidates{ids: ids, restricted: true}
}

// intersect discards unrestricted entries and intersects the rest by set
// membership. With zero restricted entries the result is unrestricted.
// The first restricted set's order is preserved.
func intersect(all []candidates) candidates {
	var acc []string
	found := false
	for _, c := range all {
		if !c.restricted {
			continue
		}
		if !found {
			acc = append([]string(nil), c.ids...)
			found = true
			continue
		}
		members := make(map[string]struct{}, len(c.ids))
		for _, id := range c.ids {
			members[id] = struct{}{}
		}
		next := acc[:0]
		for _, id := range acc {
			if _, ok := members[id]; ok {
				next = append(next, id)
			}
		}
		acc = next
	}
	if !found {
		return unrestricted()
	}
	return restricted(acc)
}

// mergeSubsets concatenates the per-value subsets of an Individual-strategy
// facet. The result is a union, not an intersection, of the subsets; when
// dedupe is set, later duplicates are dropped with first-occurrence order
// preserved.
func mergeSubsets(subsets [][]string, dedupe bool) []string {
	merged := []string{}
	for _, s := range subsets {
		merged = append(merged, s...)
	}
	if !dedupe {
		return merged
	}
	seen := make(map[string]struct{}, len(merged))
	out := merged[:0]
	for _, id := range merged {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
