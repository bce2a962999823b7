package gps

import (
	"strings"
	"unicode"
)

// normalizeKey strips all whitespace and lowercases, so that
// "GPS GPSLatitude" and "gpsgpslatitude" compare equal.
func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// FindKey returns the key actually present in tags whose normalized form
// matches one of the candidate spellings, trying candidates in order.
// Lookup is insensitive to case and whitespace. The second return value
// is false when no candidate matches.
func FindKey[V any](tags map[string]V, candidates ...string) (string, bool) {
	if len(tags) == 0 {
		return "", false
	}

	norm := make(map[string]string, len(tags))
	for k := range tags {
		nk := normalizeKey(k)
		// Keep the lexicographically smallest key on collision so the
		// result does not depend on map iteration order.
		if cur, ok := norm[nk]; !ok || k < cur {
			norm[nk] = k
		}
	}

	for _, cand := range candidates {
		if k, ok := norm[normalizeKey(cand)]; ok {
			return k, true
		}
	}

	return "", false
}
