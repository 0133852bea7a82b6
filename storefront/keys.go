package storefront

// Resource tags and qualifiers for the cache-key taxonomy. Keys are built
// as resource :: qualifier :: params; invalidation sets reference the same
// constants so read keys and write prefixes can never drift apart.
const (
	resourceReviews    = "reviews"
	resourceBooks      = "books"
	resourceAuthors    = "authors"
	resourceCategories = "categories"
	resourceProfile    = "profile"

	qualifierList   = "list"
	qualifierDetail = "detail"
	qualifierBook   = "book"
	qualifierMine   = "my"
)
