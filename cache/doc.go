// Package cache provides the key taxonomy, caching policies, and caching
// interfaces used by the storefront resource services.
//
// # Overview
//
// The package exports four pieces:
//
//   - Key: an ordered segment sequence (resource, qualifier, params)
//     identifying one cached read result
//   - KeySerializer: turns read parameters into stable key segments
//   - Policy: the staleness/retention windows of a read operation
//   - Service: the read-through cache contract, plus KeyIndex for
//     prefix-based invalidation
//
// # Key taxonomy
//
// Every read derives its key from a resource tag, a qualifier, and its
// identifying parameters:
//
//	ser := cache.NewDefaultKeySerializer()
//	key := ser.Key("reviews", "book", bookID, page, limit)
//	// reviews::book::7::1::20
//
// Two reads with structurally equal key sequences resolve to the same
// cache slot; reads differing in qualifier or parameters never collide.
//
// # Serialization strategy
//
// The default serializer handles Go values deterministically: basic types
// verbatim, pointers dereferenced, slices element-wise, maps with sorted
// keys, structs as snake_case field:value pairs, JSON as a last resort.
// Oversized segments are replaced with an xxhash digest so keys stay
// bounded. Keys never fail to build; stability is preferred over
// perfection.
//
// # Invalidation
//
// Writes declare invalidation sets as key prefixes. KeyIndex stores live
// keys in a trie over segments, so a prefix such as {"reviews", "book",
// "7"} matches exactly the keys it should and nothing that merely shares
// leading characters:
//
//	keys := index.Drop(cache.Prefix("reviews", "book", "7"))
//	service.InvalidateKeys(ctx, render(keys))
//
// Invalidation removes entries; it never mutates cached values in place,
// and it does not cancel in-flight fetches for the same key.
//
// # See also
//
// The sturdyc-backed Service implementation lives in internal/cacheinfra.
// The resource services in package storefront show the taxonomy in use.
package cache
