package cache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned when a cached value cannot be converted
// to the type the caller requested.
var ErrInvalidResultType = errors.New("cache: result does not match the requested type")

// FetchFn is the function signature Service expects when fetching from the
// source of truth on a cache miss or refresh.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Service exposes the read-through caching operations the resource
// services need. It is exported so callers can supply alternate backends;
// the default implementation lives in internal/cacheinfra.
//
// Implementations must guarantee at most one in-flight fetch per key, with
// concurrent requesters for the same key sharing the pending result.
type Service interface {
	// GetOrFetch returns the cached value for key, fetching it with
	// fetchFn when absent. The policy controls the staleness and
	// retention windows for the entry. fetchFn must have signature
	// func(context.Context) (T, error).
	GetOrFetch(ctx context.Context, key string, policy Policy, fetchFn any) (any, error)

	// Delete removes a single entry, so the next observation of the key
	// triggers a fresh fetch. In-flight fetches are not cancelled.
	Delete(ctx context.Context, key string) error

	// InvalidateKeys removes multiple entries in one call.
	InvalidateKeys(ctx context.Context, keys []string) error
}

// GetOrFetch is the type-safe wrapper over Service.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, service Service, key string, policy Policy, fetchFn FetchFn[T]) (T, error) {
	result, err := service.GetOrFetch(ctx, key, policy, fetchFn)
	if err != nil {
		var zero T
		return zero, err
	}
	if result == nil {
		// A nil any can come back for nil-able T values; hand the caller
		// the zero value instead of panicking on the assertion.
		var zero T
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
