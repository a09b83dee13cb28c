// Package wall implements the message wall: post publication, listing, and
// the like ledger that ties posts to anonymous identities.
package wall

import (
	"math"
	"strconv"
)

// Ledger is the persisted like relation: one entry per (post, identity) pair,
// keyed by a composite string. The value is always 1; presence alone means
// membership. The map shape is wire-compatible with historical data files.
type Ledger map[string]int

// CanonicalKey is the current-format composite key for a like entry.
func CanonicalKey(postID, anonID string) string {
	return postID + "_" + anonID
}

// CompositeKeys returns every historically valid key encoding for the pair.
// Early data files keyed numeric post ids through a number round-trip, so
// "007" was stored as "7_<anon>"; lookups must still recognize that form.
func CompositeKeys(postID, anonID string) []string {
	keys := []string{CanonicalKey(postID, anonID)}
	// ParseFloat also accepts "Inf" and "NaN"; only finite ids ever had a
	// legacy form.
	if n, err := strconv.ParseFloat(postID, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		legacy := CanonicalKey(strconv.FormatFloat(n, 'f', -1, 64), anonID)
		if legacy != keys[0] {
			keys = append(keys, legacy)
		}
	}
	return keys
}

// Liked reports whether the identity has liked the post under any key form.
func (l Ledger) Liked(postID, anonID string) bool {
	for _, k := range CompositeKeys(postID, anonID) {
		if l[k] != 0 {
			return true
		}
	}
	return false
}

// Like records the relation under the canonical key. When the pair was
// already a member it only normalizes storage, deleting stale alternate-form
// keys; changed is false in that case so the caller does not double-count.
func (l Ledger) Like(postID, anonID string) (changed bool) {
	changed = !l.Liked(postID, anonID)
	canonical := CanonicalKey(postID, anonID)
	for _, k := range CompositeKeys(postID, anonID) {
		if k != canonical {
			delete(l, k)
		}
	}
	l[canonical] = 1
	return changed
}

// Unlike removes the relation under every key form. changed is false when
// the pair was not a member, making repeated unlikes a no-op.
func (l Ledger) Unlike(postID, anonID string) (changed bool) {
	changed = l.Liked(postID, anonID)
	for _, k := range CompositeKeys(postID, anonID) {
		delete(l, k)
	}
	return changed
}
