package sync

import "slices"

// normalizeSet deduplicates keys, keeping first-seen order.
func normalizeSet(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

// removeKey returns a copy of perms without key.
func removeKey(perms []string, key string) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if p != key {
			out = append(out, p)
		}
	}
	return out
}

// equalSets compares two permission lists order-insensitively, ignoring
// duplicates.
func equalSets(a, b []string) bool {
	seen := make(map[string]struct{}, len(a))
	for _, k := range a {
		seen[k] = struct{}{}
	}
	matched := make(map[string]struct{}, len(b))
	for _, k := range b {
		if _, ok := seen[k]; !ok {
			return false
		}
		matched[k] = struct{}{}
	}
	return len(matched) == len(seen)
}
