package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/paperleaf/storefront-go/apperr"
	"github.com/paperleaf/storefront-go/cache"
)

// AuthorsService maps author operations to the REST API.
type AuthorsService struct {
	service
	listPolicy   cache.Policy
	detailPolicy cache.Policy
}

// NewAuthorsService constructs the authors service with the default
// list/detail policies.
func NewAuthorsService(deps Deps) *AuthorsService {
	return &AuthorsService{
		service:      service{deps: deps.normalize()},
		listPolicy:   cache.DefaultListPolicy(),
		detailPolicy: cache.DefaultDetailPolicy(),
	}
}

// List fetches authors. Key: authors::list::<page>::<limit>.
func (s *AuthorsService) List(ctx context.Context, page, limit int) (List[Author], error) {
	key := s.deps.Serializer.Key(resourceAuthors, qualifierList, page, limit)
	return readThrough(ctx, &s.service, key, s.listPolicy, func(ctx context.Context) (List[Author], error) {
		q := url.Values{}
		if page > 0 {
			q.Set("page", strconv.Itoa(page))
		}
		if limit > 0 {
			q.Set("limit", strconv.Itoa(limit))
		}
		var out List[Author]
		err := s.deps.Rest.Get(ctx, "/authors", q, &out)
		return out, err
	})
}

// Get fetches one author. Disabled for id <= 0.
func (s *AuthorsService) Get(ctx context.Context, id int64) (Author, error) {
	if id <= 0 {
		return Author{}, apperr.Validation("author id is required")
	}
	key := s.deps.Serializer.Key(resourceAuthors, qualifierDetail, id)
	return readThrough(ctx, &s.service, key, s.detailPolicy, func(ctx context.Context) (Author, error) {
		var out Author
		err := s.deps.Rest.Get(ctx, fmt.Sprintf("/authors/%d", id), nil, &out)
		return out, err
	})
}

// Create adds an author (admin).
func (s *AuthorsService) Create(ctx context.Context, in AuthorInput) (Author, error) {
	if err := in.Validate(); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "please check the author form"))
		return Author{}, err
	}

	var out Author
	if err := s.deps.Rest.Post(ctx, "/authors", in, &out); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not create the author"))
		return Author{}, err
	}

	s.invalidate(ctx, cache.Prefix(resourceAuthors))
	s.deps.Notifier.Success("author created")
	return out, nil
}

// Update edits an author (admin).
func (s *AuthorsService) Update(ctx context.Context, id int64, in AuthorInput) (Author, error) {
	if id <= 0 {
		err := apperr.Validation("author id is required")
		s.deps.Notifier.Error(err.Message)
		return Author{}, err
	}
	if err := in.Validate(); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "please check the author form"))
		return Author{}, err
	}

	var out Author
	if err := s.deps.Rest.Put(ctx, fmt.Sprintf("/authors/%d", id), in, &out); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not update the author"))
		return Author{}, err
	}

	s.invalidate(ctx,
		cache.Prefix(resourceAuthors),
		cache.Prefix(resourceAuthors, qualifierDetail, s.deps.Serializer.Segment(id)),
	)
	s.deps.Notifier.Success("author updated")
	return out, nil
}

// Delete removes an author (admin). Books referencing the author change
// their denormalized author fields, so the books key-space goes stale too.
func (s *AuthorsService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		err := apperr.Validation("author id is required")
		s.deps.Notifier.Error(err.Message)
		return err
	}

	if err := s.deps.Rest.Delete(ctx, fmt.Sprintf("/authors/%d", id), nil); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not delete the author"))
		return err
	}

	s.invalidate(ctx,
		cache.Prefix(resourceAuthors),
		cache.Prefix(resourceBooks),
	)
	s.deps.Notifier.Success("author deleted")
	return nil
}
