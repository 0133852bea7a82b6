package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/paperleaf/storefront-go/apperr"
	"github.com/paperleaf/storefront-go/cache"
	"github.com/paperleaf/storefront-go/pkg/testsupport"
)

// harness bundles the fakes every resource-service test shares. All
// services built from the same harness see the same cache and key index,
// the way the container wires the real thing.
type harness struct {
	doer     *testsupport.FakeDoer
	cache    *testsupport.FakeCacheService
	notifier *testsupport.RecordingNotifier
	deps     Deps
}

func newHarness(token string) *harness {
	h := &harness{
		doer:     &testsupport.FakeDoer{BearerToken: token},
		cache:    testsupport.NewFakeCacheService(),
		notifier: &testsupport.RecordingNotifier{},
	}
	h.deps = Deps{
		Rest:       h.doer,
		Cache:      h.cache,
		Keys:       cache.NewKeyIndex(),
		Serializer: cache.NewDefaultKeySerializer(),
		Notifier:   h.notifier,
	}
	return h
}

func (h *harness) reviews() *ReviewsService { return NewReviewsService(h.deps, ReviewPolicies{}) }
func (h *harness) books() *BooksService     { return NewBooksService(h.deps, BookPolicies{}) }
func (h *harness) authors() *AuthorsService { return NewAuthorsService(h.deps) }
func (h *harness) profile() *ProfileService { return NewProfileService(h.deps) }

func reviewListHandler(items ...Review) func(testsupport.Call, any) error {
	return func(call testsupport.Call, out any) error {
		if list, ok := out.(*List[Review]); ok {
			list.Items = items
			list.Total = int64(len(items))
		}
		return nil
	}
}

func TestReviewsService_List_ServesSecondReadFromCache(t *testing.T) {
	h := newHarness("")
	h.doer.Handler = reviewListHandler(Review{ID: 1, BookID: 7, Star: 5})
	svc := h.reviews()
	ctx := context.Background()

	first, err := svc.List(ctx, ListReviewsParams{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if len(first.Items) != 1 || first.Total != 1 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := svc.List(ctx, ListReviewsParams{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if len(second.Items) != 1 {
		t.Fatalf("unexpected second result: %+v", second)
	}

	if h.doer.CallCount() != 1 {
		t.Errorf("expected 1 transport call, got %d", h.doer.CallCount())
	}
}

func TestReviewsService_List_DistinctParamsMissSeparately(t *testing.T) {
	h := newHarness("")
	h.doer.Handler = reviewListHandler()
	svc := h.reviews()
	ctx := context.Background()

	if _, err := svc.List(ctx, ListReviewsParams{Page: 1, Limit: 20}); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if _, err := svc.List(ctx, ListReviewsParams{Page: 2, Limit: 20}); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if h.doer.CallCount() != 2 {
		t.Errorf("expected 2 transport calls for distinct pages, got %d", h.doer.CallCount())
	}
}

func TestReviewsService_Get_DisabledWithoutID(t *testing.T) {
	h := newHarness("")
	svc := h.reviews()

	_, err := svc.Get(context.Background(), 0)
	if !errors.Is(err, apperr.Validation("")) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if h.doer.CallCount() != 0 {
		t.Errorf("expected no transport call for a disabled read, got %d", h.doer.CallCount())
	}
}

func TestReviewsService_ListForBook_KeyShape(t *testing.T) {
	h := newHarness("")
	h.doer.Handler = reviewListHandler(Review{ID: 3, BookID: 7})
	svc := h.reviews()

	if _, err := svc.ListForBook(context.Background(), 7, 1, 20); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if !h.cache.Cached("reviews::book::7::1::20") {
		t.Error("expected the read cached under reviews::book::7::1::20")
	}
	calls := h.doer.Calls()
	if len(calls) != 1 || calls[0].Path != "/reviews/book/7" {
		t.Errorf("unexpected transport calls: %+v", calls)
	}
}

func TestReviewsService_ListMine_AnonymousStaysIdle(t *testing.T) {
	h := newHarness("")
	svc := h.reviews()

	_, err := svc.ListMine(context.Background(), 1, 20)
	if !errors.Is(err, apperr.Unauthorized("")) {
		t.Fatalf("expected unauthorized error, got: %v", err)
	}
	if h.doer.CallCount() != 0 {
		t.Errorf("expected no transport call for an anonymous session, got %d", h.doer.CallCount())
	}

	// The forced variant fires even without a token.
	h.doer.Handler = reviewListHandler()
	if _, err := svc.ListMine(context.Background(), 1, 20, WithForcedFetch()); err != nil {
		t.Fatalf("expected forced read to succeed but got: %v", err)
	}
	if h.doer.CallCount() != 1 {
		t.Errorf("expected 1 transport call after forcing, got %d", h.doer.CallCount())
	}
}

func TestReviewsService_Create_InvalidatesRelatedReads(t *testing.T) {
	h := newHarness("session-token")
	h.doer.Handler = func(call testsupport.Call, out any) error {
		switch v := out.(type) {
		case *List[Review]:
			v.Items = []Review{{ID: 1, BookID: 7}}
			v.Total = 1
		case *Profile:
			v.ID = 42
			v.ReviewCount = 3
		case *Review:
			v.ID = 9
			v.BookID = 7
		case *List[Book]:
			v.Items = []Book{{ID: 7}}
			v.Total = 1
		}
		return nil
	}

	reviews := h.reviews()
	books := h.books()
	profile := h.profile()
	ctx := context.Background()

	// Prime every read the mutation should later invalidate, plus one it
	// must not touch.
	if _, err := reviews.ListForBook(ctx, 7, 1, 20); err != nil {
		t.Fatalf("priming ListForBook failed: %v", err)
	}
	if _, err := reviews.ListMine(ctx, 1, 20); err != nil {
		t.Fatalf("priming ListMine failed: %v", err)
	}
	if _, err := profile.Me(ctx); err != nil {
		t.Fatalf("priming Me failed: %v", err)
	}
	if _, err := books.List(ctx, ListBooksParams{Page: 1}); err != nil {
		t.Fatalf("priming books list failed: %v", err)
	}

	booksKey := h.deps.Serializer.Key(resourceBooks, qualifierList, ListBooksParams{Page: 1}).String()
	for _, key := range []string{"reviews::book::7::1::20", "reviews::my::1::20", "profile::detail", booksKey} {
		if !h.cache.Cached(key) {
			t.Fatalf("expected %s primed before the mutation", key)
		}
	}

	if _, err := reviews.Create(ctx, ReviewInput{BookID: 7, Star: 5, Comment: "superb"}); err != nil {
		t.Fatalf("expected create to succeed but got: %v", err)
	}

	for _, key := range []string{"reviews::book::7::1::20", "reviews::my::1::20", "profile::detail"} {
		if h.cache.Cached(key) {
			t.Errorf("expected %s invalidated after the mutation", key)
		}
	}
	if !h.cache.Cached(booksKey) {
		t.Error("expected the books list to survive a review mutation")
	}
	if len(h.notifier.Successes) != 1 || h.notifier.Successes[0] != "review submitted" {
		t.Errorf("expected a success notification, got %+v", h.notifier.Successes)
	}
}

func TestReviewsService_Create_ValidationSkipsNetwork(t *testing.T) {
	h := newHarness("session-token")
	svc := h.reviews()

	_, err := svc.Create(context.Background(), ReviewInput{BookID: 7, Star: 9, Comment: "x"})
	if !errors.Is(err, apperr.Validation("")) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if h.doer.CallCount() != 0 {
		t.Errorf("expected no transport call for an invalid submission, got %d", h.doer.CallCount())
	}
	if h.notifier.LastError() == "" {
		t.Error("expected an error notification for the rejected form")
	}
	if len(h.cache.InvalidatedKeys()) != 0 {
		t.Errorf("expected no invalidation, got %v", h.cache.InvalidatedKeys())
	}
}

func TestReviewsService_Create_FailureInvalidatesNothing(t *testing.T) {
	h := newHarness("session-token")
	h.doer.Handler = func(call testsupport.Call, out any) error {
		if call.Method == "POST" {
			return apperr.Internal("something went wrong")
		}
		return reviewListHandler(Review{ID: 1, BookID: 7})(call, out)
	}
	svc := h.reviews()
	ctx := context.Background()

	if _, err := svc.ListForBook(ctx, 7, 1, 20); err != nil {
		t.Fatalf("priming ListForBook failed: %v", err)
	}

	_, err := svc.Create(ctx, ReviewInput{BookID: 7, Star: 5, Comment: "superb"})
	if !errors.Is(err, apperr.Internal("")) {
		t.Fatalf("expected the server error surfaced, got: %v", err)
	}

	if !h.cache.Cached("reviews::book::7::1::20") {
		t.Error("expected cached reads to survive a failed mutation")
	}
	if len(h.cache.InvalidatedKeys()) != 0 {
		t.Errorf("expected no invalidation after failure, got %v", h.cache.InvalidatedKeys())
	}
	if h.notifier.LastError() != "something went wrong" {
		t.Errorf("expected the server message in the notification, got %q", h.notifier.LastError())
	}
	if len(h.notifier.Successes) != 0 {
		t.Errorf("expected no success notification, got %+v", h.notifier.Successes)
	}
}

func TestReviewsService_Update_InvalidatesDetailKey(t *testing.T) {
	h := newHarness("session-token")
	h.doer.Handler = func(call testsupport.Call, out any) error {
		if v, ok := out.(*Review); ok {
			v.ID = 3
			v.Star = 4
		}
		return nil
	}
	svc := h.reviews()
	ctx := context.Background()

	if _, err := svc.Get(ctx, 3); err != nil {
		t.Fatalf("priming Get failed: %v", err)
	}
	if !h.cache.Cached("reviews::detail::3") {
		t.Fatal("expected the detail read primed")
	}

	star := 4
	if _, err := svc.Update(ctx, 3, ReviewPatch{Star: &star}); err != nil {
		t.Fatalf("expected update to succeed but got: %v", err)
	}

	if h.cache.Cached("reviews::detail::3") {
		t.Error("expected the detail key invalidated")
	}
}

func TestReviewsService_Update_EmptyPatchRejected(t *testing.T) {
	h := newHarness("session-token")
	svc := h.reviews()

	_, err := svc.Update(context.Background(), 3, ReviewPatch{})
	if !errors.Is(err, apperr.Validation("")) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if h.doer.CallCount() != 0 {
		t.Errorf("expected no transport call, got %d", h.doer.CallCount())
	}
}

func TestReviewsService_Delete_ReturnsBookStats(t *testing.T) {
	h := newHarness("session-token")
	h.doer.Handler = func(call testsupport.Call, out any) error {
		switch v := out.(type) {
		case *BookStats:
			v.BookID = 7
			v.AverageStar = 4.5
			v.ReviewCount = 12
		case *List[Review]:
			v.Total = 2
		}
		return nil
	}
	svc := h.reviews()
	ctx := context.Background()

	if _, err := svc.ListForBook(ctx, 7, 1, 20); err != nil {
		t.Fatalf("priming ListForBook failed: %v", err)
	}

	stats, err := svc.Delete(ctx, 3)
	if err != nil {
		t.Fatalf("expected delete to succeed but got: %v", err)
	}
	if stats.BookID != 7 || stats.AverageStar != 4.5 || stats.ReviewCount != 12 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if h.cache.Cached("reviews::book::7::1::20") {
		t.Error("expected the reviews key-space invalidated")
	}
	calls := h.doer.Calls()
	last := calls[len(calls)-1]
	if last.Method != "DELETE" || last.Path != "/reviews/3" {
		t.Errorf("unexpected delete call: %+v", last)
	}
}
