// Package cart maintains the shopping cart: an idempotent,
// quantity-aggregated list of book snapshots with synchronous best-effort
// persistence.
//
// The in-memory state is the source of truth for the running session.
// Durable storage only exists so the next session can rehydrate; a storage
// failure is logged and swallowed, it never blocks or rolls back a
// mutation. All mutations funnel through the Store's fixed operation set.
package cart

import (
	"strings"
	"time"
)

// Book is the snapshot of a catalog book captured when it enters the cart.
// Later catalog edits do not reach into existing cart items.
type Book struct {
	ID       string  `msgpack:"id" json:"id"`
	Title    string  `msgpack:"title" json:"title"`
	Author   string  `msgpack:"author" json:"author"`
	CoverURL string  `msgpack:"cover_url" json:"coverUrl"`
	Price    float64 `msgpack:"price" json:"price"`
}

// Item is one cart line. Quantity is always >= 1; a quantity reaching
// zero removes the item instead.
type Item struct {
	Book     Book      `msgpack:"book" json:"book"`
	Quantity int       `msgpack:"quantity" json:"quantity"`
	AddedAt  time.Time `msgpack:"added_at" json:"addedAt"`
}

// Snapshot is the persisted form of the cart, written under a single
// storage key on every mutation and read back at session start.
type Snapshot struct {
	Items      []Item `msgpack:"items"`
	TotalItems int    `msgpack:"total_items"`
	IsOpen     bool   `msgpack:"is_open"`
}

// NormalizeID canonicalizes a book identifier for cart uniqueness.
// At most one cart item exists per normalized id.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
