package storefront

import (
	"context"
	"fmt"

	"github.com/paperleaf/storefront-go/apperr"
	"github.com/paperleaf/storefront-go/cache"
)

// CategoriesService maps category operations to the REST API. The category
// list is small and changes rarely, so it gets a longer staleness window
// than the other lists.
type CategoriesService struct {
	service
	listPolicy   cache.Policy
	detailPolicy cache.Policy
}

// NewCategoriesService constructs the categories service.
func NewCategoriesService(deps Deps) *CategoriesService {
	return &CategoriesService{
		service:      service{deps: deps.normalize()},
		listPolicy:   cache.Policy{StaleAfter: cache.DefaultDetailPolicy().StaleAfter * 5, RetainFor: cache.DefaultDetailPolicy().RetainFor * 3},
		detailPolicy: cache.DefaultDetailPolicy(),
	}
}

// List fetches all categories. Key: categories::list.
func (s *CategoriesService) List(ctx context.Context) ([]Category, error) {
	key := s.deps.Serializer.Key(resourceCategories, qualifierList)
	return readThrough(ctx, &s.service, key, s.listPolicy, func(ctx context.Context) ([]Category, error) {
		var out []Category
		err := s.deps.Rest.Get(ctx, "/categories", nil, &out)
		return out, err
	})
}

// Get fetches one category. Disabled for id <= 0.
func (s *CategoriesService) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, apperr.Validation("category id is required")
	}
	key := s.deps.Serializer.Key(resourceCategories, qualifierDetail, id)
	return readThrough(ctx, &s.service, key, s.detailPolicy, func(ctx context.Context) (Category, error) {
		var out Category
		err := s.deps.Rest.Get(ctx, fmt.Sprintf("/categories/%d", id), nil, &out)
		return out, err
	})
}

// Create adds a category (admin).
func (s *CategoriesService) Create(ctx context.Context, in CategoryInput) (Category, error) {
	if err := in.Validate(); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "please check the category form"))
		return Category{}, err
	}

	var out Category
	if err := s.deps.Rest.Post(ctx, "/categories", in, &out); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not create the category"))
		return Category{}, err
	}

	s.invalidate(ctx, cache.Prefix(resourceCategories))
	s.deps.Notifier.Success("category created")
	return out, nil
}

// Update renames a category (admin).
func (s *CategoriesService) Update(ctx context.Context, id int64, in CategoryInput) (Category, error) {
	if id <= 0 {
		err := apperr.Validation("category id is required")
		s.deps.Notifier.Error(err.Message)
		return Category{}, err
	}
	if err := in.Validate(); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "please check the category form"))
		return Category{}, err
	}

	var out Category
	if err := s.deps.Rest.Put(ctx, fmt.Sprintf("/categories/%d", id), in, &out); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not update the category"))
		return Category{}, err
	}

	s.invalidate(ctx,
		cache.Prefix(resourceCategories),
		cache.Prefix(resourceCategories, qualifierDetail, s.deps.Serializer.Segment(id)),
	)
	s.deps.Notifier.Success("category updated")
	return out, nil
}

// Delete removes a category (admin). Book lists filtered by the removed
// category change, so the books key-space is invalidated too.
func (s *CategoriesService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		err := apperr.Validation("category id is required")
		s.deps.Notifier.Error(err.Message)
		return err
	}

	if err := s.deps.Rest.Delete(ctx, fmt.Sprintf("/categories/%d", id), nil); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not delete the category"))
		return err
	}

	s.invalidate(ctx,
		cache.Prefix(resourceCategories),
		cache.Prefix(resourceBooks),
	)
	s.deps.Notifier.Success("category deleted")
	return nil
}
