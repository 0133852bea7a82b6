package cart

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vmihailenco/msgpack/v5"
)

// Store is the process-wide cart state. Reads go straight to the
// concurrent item map; mutations serialize on a mutex so the recomputed
// total and the persisted snapshot always describe the same state.
type Store struct {
	mu      sync.Mutex
	items   *xsync.MapOf[string, Item]
	total   int
	open    bool
	storage Storage
	log     *slog.Logger
	clock   func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger storage failures are reported to.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source for AddedAt stamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStore creates an empty cart backed by storage. A nil storage keeps
// the cart purely in-memory.
func NewStore(storage Storage, opts ...Option) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{
		items:   xsync.NewMapOf[string, Item](),
		storage: storage,
		log:     slog.Default(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add puts a book into the cart. Adding a book that is already present
// increments its quantity by one instead of duplicating the line.
func (s *Store) Add(ctx context.Context, book Book) {
	id := NormalizeID(book.ID)
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items.Compute(id, func(old Item, loaded bool) (Item, bool) {
		if loaded {
			old.Quantity++
			return old, false
		}
		book.ID = id
		return Item{Book: book, Quantity: 1, AddedAt: s.clock()}, false
	})
	s.recomputeLocked()
	s.persistLocked(ctx)
}

// Remove drops the item for bookID; absent ids are a no-op.
func (s *Store) Remove(ctx context.Context, bookID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items.Delete(NormalizeID(bookID))
	s.recomputeLocked()
	s.persistLocked(ctx)
}

// SetQuantity sets the quantity for bookID directly. A quantity <= 0
// removes the item. Setting a quantity on an absent id is a no-op.
func (s *Store) SetQuantity(ctx context.Context, bookID string, quantity int) {
	id := NormalizeID(bookID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.items.Delete(id)
	} else {
		s.items.Compute(id, func(old Item, loaded bool) (Item, bool) {
			if !loaded {
				return old, true
			}
			old.Quantity = quantity
			return old, false
		})
	}
	s.recomputeLocked()
	s.persistLocked(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items.Clear()
	s.total = 0
	s.persistLocked(ctx)
}

// Toggle flips the cart panel visibility. Visibility rides along in the
// persisted snapshot but carries no domain invariant.
func (s *Store) Toggle(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
	s.persistLocked(ctx)
}

// Open shows the cart panel.
func (s *Store) Open(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.persistLocked(ctx)
}

// Close hides the cart panel.
func (s *Store) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.persistLocked(ctx)
}

// LoadFromStorage replaces the in-memory state with the persisted
// snapshot. Absent or malformed data yields the default empty cart;
// storage failures are logged, never thrown.
func (s *Store) LoadFromStorage(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap Snapshot
	data, err := s.storage.Load(ctx)
	switch {
	case err != nil:
		s.log.LogAttrs(ctx, slog.LevelWarn, "cart storage read failed",
			slog.String("error", err.Error()))
	case len(data) > 0:
		if err := msgpack.Unmarshal(data, &snap); err != nil {
			s.log.LogAttrs(ctx, slog.LevelWarn, "cart snapshot malformed, starting empty",
				slog.String("error", err.Error()))
			snap = Snapshot{}
		}
	}

	s.items.Clear()
	total := 0
	for _, item := range snap.Items {
		id := NormalizeID(item.Book.ID)
		if id == "" || item.Quantity < 1 {
			continue
		}
		item.Book.ID = id
		s.items.Store(id, item)
		total += item.Quantity
	}
	s.total = total
	s.open = snap.IsOpen
}

// Items returns the cart lines ordered by the time they were added.
func (s *Store) Items() []Item {
	var out []Item
	s.items.Range(func(_ string, item Item) bool {
		out = append(out, item)
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].Book.ID < out[j].Book.ID
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out
}

// Quantity reports the quantity for bookID, zero when absent.
func (s *Store) Quantity(bookID string) int {
	item, ok := s.items.Load(NormalizeID(bookID))
	if !ok {
		return 0
	}
	return item.Quantity
}

// TotalItems reports the sum of all quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Len reports the number of distinct cart lines.
func (s *Store) Len() int {
	return s.items.Size()
}

// IsOpen reports the cart panel visibility.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Snapshot captures the current state in its persisted form.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	var items []Item
	s.items.Range(func(_ string, item Item) bool {
		items = append(items, item)
		return true
	})
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].Book.ID < items[j].Book.ID
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
	return Snapshot{Items: items, TotalItems: s.total, IsOpen: s.open}
}

func (s *Store) recomputeLocked() {
	total := 0
	s.items.Range(func(_ string, item Item) bool {
		total += item.Quantity
		return true
	})
	s.total = total
}

// persistLocked writes the snapshot synchronously and fire-and-forget:
// a failed write is logged and the in-memory mutation stands.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := msgpack.Marshal(s.snapshotLocked())
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "cart snapshot encode failed",
			slog.String("error", err.Error()))
		return
	}
	if err := s.storage.Save(ctx, data); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "cart storage write failed",
			slog.String("error", err.Error()))
	}
}
