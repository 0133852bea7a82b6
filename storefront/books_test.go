package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/paperleaf/storefront-go/apperr"
	"github.com/paperleaf/storefront-go/pkg/testsupport"
)

func bookListHandler(items ...Book) func(testsupport.Call, any) error {
	return func(call testsupport.Call, out any) error {
		if list, ok := out.(*List[Book]); ok {
			list.Items = items
			list.Total = int64(len(items))
		}
		return nil
	}
}

func TestBooksService_List_ServesSecondReadFromCache(t *testing.T) {
	h := newHarness("")
	h.doer.Handler = bookListHandler(Book{ID: 7, Title: "Solaris"})
	svc := h.books()
	ctx := context.Background()

	params := ListBooksParams{Page: 1, Limit: 20, CategoryID: 3, Rating: 4}
	if _, err := svc.List(ctx, params); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if _, err := svc.List(ctx, params); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if h.doer.CallCount() != 1 {
		t.Errorf("expected 1 transport call, got %d", h.doer.CallCount())
	}

	calls := h.doer.Calls()
	q := calls[0].Query
	if q.Get("categoryId") != "3" || q.Get("rating") != "4" {
		t.Errorf("expected filters forwarded as query parameters, got %v", q)
	}
}

func TestBooksService_List_FilterChangesMissSeparately(t *testing.T) {
	h := newHarness("")
	h.doer.Handler = bookListHandler()
	svc := h.books()
	ctx := context.Background()

	if _, err := svc.List(ctx, ListBooksParams{CategoryID: 3}); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if _, err := svc.List(ctx, ListBooksParams{CategoryID: 3, Rating: 4}); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if h.doer.CallCount() != 2 {
		t.Errorf("expected each filter combination to fetch once, got %d calls", h.doer.CallCount())
	}
}

func TestBooksService_Create_InvalidatesBooksSpace(t *testing.T) {
	h := newHarness("admin-token")
	h.doer.Handler = func(call testsupport.Call, out any) error {
		switch v := out.(type) {
		case *List[Book]:
			v.Total = 1
		case *Book:
			v.ID = 8
		}
		return nil
	}
	svc := h.books()
	ctx := context.Background()

	if _, err := svc.List(ctx, ListBooksParams{Page: 1}); err != nil {
		t.Fatalf("priming list failed: %v", err)
	}
	listKey := h.deps.Serializer.Key(resourceBooks, qualifierList, ListBooksParams{Page: 1}).String()
	if !h.cache.Cached(listKey) {
		t.Fatal("expected the list primed")
	}

	if _, err := svc.Create(ctx, BookInput{Title: "Solaris", AuthorID: 1, CategoryID: 2}); err != nil {
		t.Fatalf("expected create to succeed but got: %v", err)
	}

	if h.cache.Cached(listKey) {
		t.Error("expected the books list invalidated after create")
	}
	if len(h.notifier.Successes) != 1 || h.notifier.Successes[0] != "book created" {
		t.Errorf("expected a success notification, got %+v", h.notifier.Successes)
	}
}

func TestBooksService_Create_OversizedCoverRejected(t *testing.T) {
	h := newHarness("admin-token")
	svc := h.books()

	in := BookInput{Title: "Solaris", AuthorID: 1, CategoryID: 2, CoverSize: 3 << 20}
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, apperr.Validation("")) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if h.doer.CallCount() != 0 {
		t.Errorf("expected no transport call for an oversized cover, got %d", h.doer.CallCount())
	}
}

func TestBooksService_Delete_AlsoInvalidatesReviews(t *testing.T) {
	h := newHarness("admin-token")
	h.doer.Handler = func(call testsupport.Call, out any) error {
		switch v := out.(type) {
		case *List[Book]:
			v.Total = 1
		case *List[Review]:
			v.Total = 2
		}
		return nil
	}
	books := h.books()
	reviews := h.reviews()
	ctx := context.Background()

	if _, err := books.Get(ctx, 7); err != nil {
		t.Fatalf("priming book detail failed: %v", err)
	}
	if _, err := reviews.ListForBook(ctx, 7, 1, 20); err != nil {
		t.Fatalf("priming reviews failed: %v", err)
	}

	if err := books.Delete(ctx, 7); err != nil {
		t.Fatalf("expected delete to succeed but got: %v", err)
	}

	if h.cache.Cached("books::detail::7") {
		t.Error("expected the book detail invalidated")
	}
	if h.cache.Cached("reviews::book::7::1::20") {
		t.Error("expected the orphaned reviews invalidated with the book")
	}
}

func TestAuthorsService_Delete_InvalidatesBooksSpace(t *testing.T) {
	h := newHarness("admin-token")
	h.doer.Handler = bookListHandler(Book{ID: 7, AuthorID: 2})
	authors := h.authors()
	books := h.books()
	ctx := context.Background()

	if _, err := books.List(ctx, ListBooksParams{AuthorID: 2}); err != nil {
		t.Fatalf("priming books failed: %v", err)
	}
	booksKey := h.deps.Serializer.Key(resourceBooks, qualifierList, ListBooksParams{AuthorID: 2}).String()

	if err := authors.Delete(ctx, 2); err != nil {
		t.Fatalf("expected delete to succeed but got: %v", err)
	}

	if h.cache.Cached(booksKey) {
		t.Error("expected book lists invalidated when an author is removed")
	}
}

func TestProfileService_Me_RequiresToken(t *testing.T) {
	h := newHarness("")
	svc := h.profile()

	_, err := svc.Me(context.Background())
	if !errors.Is(err, apperr.Unauthorized("")) {
		t.Fatalf("expected unauthorized error, got: %v", err)
	}
	if h.doer.CallCount() != 0 {
		t.Errorf("expected no transport call without a token, got %d", h.doer.CallCount())
	}
}

func TestProfileService_ChangePassword_ConfirmMismatchStaysLocal(t *testing.T) {
	h := newHarness("session-token")
	svc := h.profile()

	change := PasswordChange{Current: "old-secret", New: "new-secret-1", Confirm: "new-secret-2"}
	err := svc.ChangePassword(context.Background(), change)
	if !errors.Is(err, apperr.Validation("")) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if h.doer.CallCount() != 0 {
		t.Errorf("expected no transport call for a mismatched confirmation, got %d", h.doer.CallCount())
	}
}

func TestProfileService_ChangePassword_InvalidatesProfile(t *testing.T) {
	h := newHarness("session-token")
	h.doer.Handler = func(call testsupport.Call, out any) error {
		if v, ok := out.(*Profile); ok {
			v.ID = 42
		}
		return nil
	}
	svc := h.profile()
	ctx := context.Background()

	if _, err := svc.Me(ctx); err != nil {
		t.Fatalf("priming Me failed: %v", err)
	}

	change := PasswordChange{Current: "old-secret", New: "new-secret-1", Confirm: "new-secret-1"}
	if err := svc.ChangePassword(ctx, change); err != nil {
		t.Fatalf("expected password change to succeed but got: %v", err)
	}

	if h.cache.Cached("profile::detail") {
		t.Error("expected the profile key-space invalidated")
	}
	calls := h.doer.Calls()
	last := calls[len(calls)-1]
	if last.Method != "PUT" || last.Path != "/me/password" {
		t.Errorf("unexpected transport call: %+v", last)
	}
}
