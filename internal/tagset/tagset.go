// Package tagset holds the consistency rules between a story's primary genre
// and its genre tag set.
package tagset

// Canonical returns the tag set to persist for the requested primary genre and
// tag ids: non-positive ids are dropped, duplicates removed (first occurrence
// wins) and the primary genre appended when it is not already present.
//
// Canonical never fails. Whether the ids exist is checked by the caller.
func Canonical(primary *int64, ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids)+1)
	out := make([]int64, 0, len(ids)+1)

	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	if primary != nil && *primary > 0 {
		if _, ok := seen[*primary]; !ok {
			out = append(out, *primary)
		}
	}

	return out
}

// Contains reports whether id is in set
func Contains(set []int64, id int64) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// Consistent reports whether primary, when set, is a member of tags
func Consistent(primary *int64, tags []int64) bool {
	return primary == nil || Contains(tags, *primary)
}

// Intersects reports whether any element of a is in b
func Intersects(a, b []int64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	idx := make(map[int64]struct{}, len(b))
	for _, v := range b {
		idx[v] = struct{}{}
	}
	for _, v := range a {
		if _, ok := idx[v]; ok {
			return true
		}
	}
	return false
}
