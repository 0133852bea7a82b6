package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockService hands back a canned result so the generic wrapper can be
// exercised without a real backend.
type mockService struct {
	result any
	err    error
}

func (m *mockService) GetOrFetch(ctx context.Context, key string, policy Policy, fetchFn any) (any, error) {
	return m.result, m.err
}

func (m *mockService) Delete(ctx context.Context, key string) error {
	return nil
}

func (m *mockService) InvalidateKeys(ctx context.Context, keys []string) error {
	return nil
}

func testPolicy() Policy {
	return Policy{StaleAfter: time.Second, RetainFor: time.Minute}
}

func TestGetOrFetch_ValidResult(t *testing.T) {
	expected := "test-value"
	mock := &mockService{result: expected}

	result, err := GetOrFetch[string](context.Background(), mock, "test-key", testPolicy(), func(ctx context.Context) (string, error) {
		return expected, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}
	if result != expected {
		t.Errorf("expected %q but got %q", expected, result)
	}
}

func TestGetOrFetch_NilInterfaceNoPanic(t *testing.T) {
	// A nil any from the backend must not panic the type assertion for
	// interface-typed T.
	mock := &mockService{result: nil}

	type someInterface interface {
		DoSomething() string
	}

	result, err := GetOrFetch[someInterface](context.Background(), mock, "test-key", testPolicy(), func(ctx context.Context) (someInterface, error) {
		return nil, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestGetOrFetch_TypedNilPointer(t *testing.T) {
	mock := &mockService{result: (*string)(nil)}

	result, err := GetOrFetch[*string](context.Background(), mock, "test-key", testPolicy(), func(ctx context.Context) (*string, error) {
		return nil, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestGetOrFetch_TypeAssertionFailure(t *testing.T) {
	mock := &mockService{result: "wrong-type"}

	result, err := GetOrFetch[int](context.Background(), mock, "test-key", testPolicy(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	if !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType but got: %v", err)
	}
	if result != 0 {
		t.Errorf("expected zero value but got: %v", result)
	}
}

func TestGetOrFetch_BackendError(t *testing.T) {
	wantErr := errors.New("backend unavailable")
	mock := &mockService{err: wantErr}

	result, err := GetOrFetch[string](context.Background(), mock, "test-key", testPolicy(), func(ctx context.Context) (string, error) {
		return "unused", nil
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("expected backend error but got: %v", err)
	}
	if result != "" {
		t.Errorf("expected zero value but got: %q", result)
	}
}
