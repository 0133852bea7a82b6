// Package selection holds the transient catalog filter state: the chosen
// category, an optional minimum rating, a loading flag, and the last
// error. The state is session-scoped and never persisted; a reload starts
// clean.
package selection

import "sync"

// Category identifies the selected catalog category.
type Category struct {
	ID   int64
	Name string
}

// State is a point-in-time copy of the selection.
type State struct {
	// Category is nil when no category is selected.
	Category *Category

	// Rating is the minimum star filter, zero when unset.
	Rating int

	Loading   bool
	LastError string
}

// Store is the selection state holder. All methods are safe for
// concurrent use.
type Store struct {
	mu       sync.RWMutex
	category *Category
	rating   int
	loading  bool
	lastErr  string
}

// NewStore creates an empty selection.
func NewStore() *Store {
	return &Store{}
}

// SetCategory selects a category.
func (s *Store) SetCategory(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = &Category{ID: id, Name: name}
}

// ClearCategory clears the category and, with it, the rating filter --
// a rating without a category has no list to apply to.
func (s *Store) ClearCategory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = nil
	s.rating = 0
}

// SetRating sets the minimum star filter. Values outside [1,5] clear it.
func (s *Store) SetRating(rating int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rating < 1 || rating > 5 {
		s.rating = 0
		return
	}
	s.rating = rating
}

// ClearRating clears the rating filter only.
func (s *Store) ClearRating() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rating = 0
}

// SetLoading flips the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records the last error message; "" clears it.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = message
}

// Current returns a copy of the selection state.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := State{
		Rating:    s.rating,
		Loading:   s.loading,
		LastError: s.lastErr,
	}
	if s.category != nil {
		c := *s.category
		state.Category = &c
	}
	return state
}
