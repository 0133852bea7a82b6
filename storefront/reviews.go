package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/paperleaf/storefront-go/apperr"
	"github.com/paperleaf/storefront-go/cache"
)

// ReviewPolicies holds the per-read caching policies of the reviews
// service. Zero values select the package defaults.
type ReviewPolicies struct {
	List   cache.Policy
	Detail cache.Policy
}

func (p ReviewPolicies) withDefaults() ReviewPolicies {
	if p.List == (cache.Policy{}) {
		p.List = cache.DefaultListPolicy()
	}
	if p.Detail == (cache.Policy{}) {
		p.Detail = cache.DefaultDetailPolicy()
	}
	return p
}

// ReviewsService maps review operations to the REST API and owns their
// caching and invalidation behaviour.
type ReviewsService struct {
	service
	policies ReviewPolicies
}

// NewReviewsService constructs the reviews service.
func NewReviewsService(deps Deps, policies ReviewPolicies) *ReviewsService {
	return &ReviewsService{
		service:  service{deps: deps.normalize()},
		policies: policies.withDefaults(),
	}
}

// ListReviewsParams filters the global reviews list.
type ListReviewsParams struct {
	Page   int
	Limit  int
	BookID int64
}

func (p ListReviewsParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.BookID > 0 {
		q.Set("bookId", strconv.FormatInt(p.BookID, 10))
	}
	return q
}

// List fetches reviews. Key: reviews::list::<params>.
func (s *ReviewsService) List(ctx context.Context, params ListReviewsParams) (List[Review], error) {
	key := s.deps.Serializer.Key(resourceReviews, qualifierList, params)
	return readThrough(ctx, &s.service, key, s.policies.List, func(ctx context.Context) (List[Review], error) {
		var out List[Review]
		err := s.deps.Rest.Get(ctx, "/reviews", params.query(), &out)
		return out, err
	})
}

// Get fetches one review by id. Key: reviews::detail::<id>. The read is
// disabled until the caller holds a real id; nothing fires for id <= 0.
func (s *ReviewsService) Get(ctx context.Context, id int64) (Review, error) {
	if id <= 0 {
		return Review{}, apperr.Validation("review id is required")
	}
	key := s.deps.Serializer.Key(resourceReviews, qualifierDetail, id)
	return readThrough(ctx, &s.service, key, s.policies.Detail, func(ctx context.Context) (Review, error) {
		var out Review
		err := s.deps.Rest.Get(ctx, fmt.Sprintf("/reviews/%d", id), nil, &out)
		return out, err
	})
}

// ListForBook fetches the reviews of one book.
// Key: reviews::book::<bookID>::<page>::<limit>.
func (s *ReviewsService) ListForBook(ctx context.Context, bookID int64, page, limit int) (List[Review], error) {
	if bookID <= 0 {
		return List[Review]{}, apperr.Validation("book id is required")
	}
	key := s.deps.Serializer.Key(resourceReviews, qualifierBook, bookID, page, limit)
	return readThrough(ctx, &s.service, key, s.policies.List, func(ctx context.Context) (List[Review], error) {
		q := url.Values{}
		if page > 0 {
			q.Set("page", strconv.Itoa(page))
		}
		if limit > 0 {
			q.Set("limit", strconv.Itoa(limit))
		}
		var out List[Review]
		err := s.deps.Rest.Get(ctx, fmt.Sprintf("/reviews/book/%d", bookID), q, &out)
		return out, err
	})
}

// ReadOption tweaks a single gated read.
type ReadOption func(*readOptions)

type readOptions struct {
	force bool
}

// WithForcedFetch overrides the enabled gate of a read that would
// otherwise stay idle, e.g. ListMine before the token is visible to the
// client.
func WithForcedFetch() ReadOption {
	return func(o *readOptions) { o.force = true }
}

// ListMine fetches the current user's reviews. Key: reviews::my::…
// The read stays idle for anonymous sessions unless explicitly forced.
func (s *ReviewsService) ListMine(ctx context.Context, page, limit int, opts ...ReadOption) (List[Review], error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	if s.deps.Rest.Token() == "" && !o.force {
		return List[Review]{}, apperr.Unauthorized("sign in to see your reviews")
	}

	key := s.deps.Serializer.Key(resourceReviews, qualifierMine, page, limit)
	return readThrough(ctx, &s.service, key, s.policies.List, func(ctx context.Context) (List[Review], error) {
		q := url.Values{}
		if page > 0 {
			q.Set("page", strconv.Itoa(page))
		}
		if limit > 0 {
			q.Set("limit", strconv.Itoa(limit))
		}
		var out List[Review]
		err := s.deps.Rest.Get(ctx, "/me/reviews", q, &out)
		return out, err
	})
}

// Create submits a new review. Validation runs before any network call;
// a confirmed success invalidates the whole reviews key-space, the target
// book's review lists, the current user's review list, and the profile
// key-space -- profile views surface review counts and would otherwise
// keep showing the stale count. A failed create invalidates nothing.
func (s *ReviewsService) Create(ctx context.Context, in ReviewInput) (Review, error) {
	if err := in.Validate(); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "please check the review form"))
		return Review{}, err
	}

	var out Review
	if err := s.deps.Rest.Post(ctx, "/reviews", in, &out); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not submit the review"))
		return Review{}, err
	}

	s.invalidate(ctx,
		cache.Prefix(resourceReviews),
		cache.Prefix(resourceReviews, qualifierBook, s.deps.Serializer.Segment(in.BookID)),
		cache.Prefix(resourceReviews, qualifierMine),
		cache.Prefix(resourceProfile),
	)
	s.deps.Notifier.Success("review submitted")
	return out, nil
}

// Update edits an existing review. Success invalidates the reviews
// key-space plus the specific detail key.
func (s *ReviewsService) Update(ctx context.Context, id int64, patch ReviewPatch) (Review, error) {
	if id <= 0 {
		err := apperr.Validation("review id is required")
		s.deps.Notifier.Error(err.Message)
		return Review{}, err
	}
	if err := patch.Validate(); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "please check the review form"))
		return Review{}, err
	}

	var out Review
	if err := s.deps.Rest.Put(ctx, fmt.Sprintf("/reviews/%d", id), patch, &out); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not update the review"))
		return Review{}, err
	}

	s.invalidate(ctx,
		cache.Prefix(resourceReviews),
		cache.Prefix(resourceReviews, qualifierDetail, s.deps.Serializer.Segment(id)),
	)
	s.deps.Notifier.Success("review updated")
	return out, nil
}

// Delete removes a review owned by the current user and returns the
// recomputed book stats from the response. Success invalidates the whole
// reviews key-space.
func (s *ReviewsService) Delete(ctx context.Context, id int64) (BookStats, error) {
	if id <= 0 {
		err := apperr.Validation("review id is required")
		s.deps.Notifier.Error(err.Message)
		return BookStats{}, err
	}

	var out BookStats
	if err := s.deps.Rest.Delete(ctx, fmt.Sprintf("/reviews/%d", id), &out); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not delete the review"))
		return BookStats{}, err
	}

	s.invalidate(ctx, cache.Prefix(resourceReviews))
	s.deps.Notifier.Success("review deleted")
	return out, nil
}
