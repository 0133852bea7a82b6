package cache

import "strings"

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// Key is the ordered segment sequence identifying a cached read result:
// a resource tag, a qualifier (list, detail, book, my, ...), then zero or
// more parameter segments. Keys are used both for cache lookup and for
// segment-wise prefix invalidation, so segments are compared whole --
// "reviews" is never a prefix of "reviewers".
type Key []string

// NewKey builds a key from a resource tag, a qualifier, and pre-serialized
// parameter segments. Use a KeySerializer to turn arbitrary values into
// stable segments.
func NewKey(resource, qualifier string, params ...string) Key {
	k := make(Key, 0, 2+len(params))
	k = append(k, resource, qualifier)
	return append(k, params...)
}

// Prefix builds a partial key for invalidation matching. A single-segment
// prefix addresses a whole resource key-space.
func Prefix(segments ...string) Key {
	return Key(segments)
}

// String renders the key in its canonical cache-slot form.
func (k Key) String() string {
	return strings.Join(k, KeySeparator)
}

// Equal reports whether two keys are structurally equal. Structurally equal
// keys always resolve to the same cache slot.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether the leading segments of k match prefix exactly.
// Matching is per segment, never per character.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// clone returns an independent copy so callers cannot mutate indexed keys.
func (k Key) clone() Key {
	return append(Key(nil), k...)
}
