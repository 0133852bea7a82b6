// Package storefront provides the typed resource services of the
// Paperleaf storefront API: reviews, books, authors, categories, and the
// current user's profile.
//
// # Overview
//
// Each service wraps a slice of the REST API with declarative caching.
// Reads build a hierarchical key (resource :: qualifier :: params), run
// through the shared cache.Service, and register the key in a KeyIndex.
// Writes pass straight through to the transport; on confirmed success
// each declares an invalidation set of key prefixes that is resolved
// against the index and removed from the cache, so the next observation
// of an affected read refetches. On failure nothing is invalidated --
// there is no partial success.
//
// # Read gating
//
// A read whose identifying parameter is missing does not fire at all:
// detail reads require a positive id, ListMine requires a bearer token
// unless forced with WithForcedFetch. Gated-off reads return a
// CodeValidation or CodeUnauthorized error without touching the network.
//
// # Cross-resource invalidation
//
// Creating a review also invalidates the profile key-space. Profile views
// surface review counts, and without this coupling a profile read would
// keep serving the stale count until its own staleness window expired.
// The set is declared in ReviewsService.Create and resolved like any
// other prefix.
//
// # Notifications
//
// Mutations emit success and error messages through notify.Notifier.
// Error messages prefer the server-provided text and fall back to a
// generic one. The package never depends on a UI layer.
//
// # Usage
//
//	deps := storefront.Deps{Rest: restClient, Cache: cacheService}
//	reviews := storefront.NewReviewsService(deps, storefront.ReviewPolicies{})
//
//	page, err := reviews.ListForBook(ctx, bookID, 1, 20)
//
// pkg/di wires a complete dependency set in one call.
package storefront
