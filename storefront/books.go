package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/paperleaf/storefront-go/apperr"
	"github.com/paperleaf/storefront-go/cache"
)

// BookPolicies holds the per-read caching policies of the books service.
type BookPolicies struct {
	List   cache.Policy
	Detail cache.Policy
}

func (p BookPolicies) withDefaults() BookPolicies {
	if p.List == (cache.Policy{}) {
		p.List = cache.DefaultListPolicy()
	}
	if p.Detail == (cache.Policy{}) {
		p.Detail = cache.DefaultDetailPolicy()
	}
	return p
}

// BooksService maps catalog book operations to the REST API. Reads are
// cached under the books key-space; admin writes invalidate it.
type BooksService struct {
	service
	policies BookPolicies
}

// NewBooksService constructs the books service.
func NewBooksService(deps Deps, policies BookPolicies) *BooksService {
	return &BooksService{
		service:  service{deps: deps.normalize()},
		policies: policies.withDefaults(),
	}
}

// ListBooksParams filters the catalog list. Rating filters on the minimum
// average star.
type ListBooksParams struct {
	Page       int
	Limit      int
	CategoryID int64
	AuthorID   int64
	Rating     int
	Search     string
}

func (p ListBooksParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.CategoryID > 0 {
		q.Set("categoryId", strconv.FormatInt(p.CategoryID, 10))
	}
	if p.AuthorID > 0 {
		q.Set("authorId", strconv.FormatInt(p.AuthorID, 10))
	}
	if p.Rating > 0 {
		q.Set("rating", strconv.Itoa(p.Rating))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

// List fetches catalog books. Key: books::list::<params>.
func (s *BooksService) List(ctx context.Context, params ListBooksParams) (List[Book], error) {
	key := s.deps.Serializer.Key(resourceBooks, qualifierList, params)
	return readThrough(ctx, &s.service, key, s.policies.List, func(ctx context.Context) (List[Book], error) {
		var out List[Book]
		err := s.deps.Rest.Get(ctx, "/books", params.query(), &out)
		return out, err
	})
}

// Get fetches one book by id. Key: books::detail::<id>; disabled for
// id <= 0.
func (s *BooksService) Get(ctx context.Context, id int64) (Book, error) {
	if id <= 0 {
		return Book{}, apperr.Validation("book id is required")
	}
	key := s.deps.Serializer.Key(resourceBooks, qualifierDetail, id)
	return readThrough(ctx, &s.service, key, s.policies.Detail, func(ctx context.Context) (Book, error) {
		var out Book
		err := s.deps.Rest.Get(ctx, fmt.Sprintf("/books/%d", id), nil, &out)
		return out, err
	})
}

// Create adds a catalog book (admin). Success invalidates the books
// key-space; lists and counts changed.
func (s *BooksService) Create(ctx context.Context, in BookInput) (Book, error) {
	if err := in.Validate(); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "please check the book form"))
		return Book{}, err
	}

	var out Book
	if err := s.deps.Rest.Post(ctx, "/books", in, &out); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not create the book"))
		return Book{}, err
	}

	s.invalidate(ctx, cache.Prefix(resourceBooks))
	s.deps.Notifier.Success("book created")
	return out, nil
}

// Update edits a catalog book (admin). Success invalidates the books
// key-space plus the specific detail key.
func (s *BooksService) Update(ctx context.Context, id int64, in BookInput) (Book, error) {
	if id <= 0 {
		err := apperr.Validation("book id is required")
		s.deps.Notifier.Error(err.Message)
		return Book{}, err
	}
	if err := in.Validate(); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "please check the book form"))
		return Book{}, err
	}

	var out Book
	if err := s.deps.Rest.Put(ctx, fmt.Sprintf("/books/%d", id), in, &out); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not update the book"))
		return Book{}, err
	}

	s.invalidate(ctx,
		cache.Prefix(resourceBooks),
		cache.Prefix(resourceBooks, qualifierDetail, s.deps.Serializer.Segment(id)),
	)
	s.deps.Notifier.Success("book updated")
	return out, nil
}

// Delete removes a catalog book (admin). Reviews of the removed book are
// orphaned server-side, so the reviews key-space is invalidated too.
func (s *BooksService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		err := apperr.Validation("book id is required")
		s.deps.Notifier.Error(err.Message)
		return err
	}

	if err := s.deps.Rest.Delete(ctx, fmt.Sprintf("/books/%d", id), nil); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not delete the book"))
		return err
	}

	s.invalidate(ctx,
		cache.Prefix(resourceBooks),
		cache.Prefix(resourceReviews),
	)
	s.deps.Notifier.Success("book deleted")
	return nil
}
