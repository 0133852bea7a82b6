// Package cacheinfra adapts the sturdyc in-memory cache to the cache.Service
// contract. sturdyc brings the properties the query layer depends on:
// at most one in-flight fetch per key with concurrent requesters sharing
// the pending result, background early refreshes, and optional
// missing-record storage.
package cacheinfra

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/paperleaf/storefront-go/cache"
)

// Config holds the backend-level settings shared by every cache entry.
// Per-operation staleness and retention windows arrive with each read as a
// cache.Policy instead.
type Config struct {
	// Capacity defines the maximum number of entries each policy pool can
	// store. Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent
	// access. Must be greater than 0.
	NumShards int

	// EvictionPercentage specifies what percentage of entries to evict
	// when a pool reaches capacity. Must be between 1-100.
	EvictionPercentage int

	// MissingRecordStorage remembers keys that returned no result, so
	// repeated reads for non-existent records skip the network.
	MissingRecordStorage bool

	// EvictionInterval sets how often expired entries are collected.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:             10000,
		NumShards:            64,
		EvictionPercentage:   10,
		MissingRecordStorage: true,
		EvictionInterval:     0,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// SturdycService implements cache.Service on top of sturdyc clients.
//
// A sturdyc client fixes its TTL and refresh windows at construction time,
// while the query layer wants them per operation. The service therefore
// keeps one client per distinct policy value and routes each call to the
// pool its policy selects. The set of policies in an application is a
// small fixed constellation, so the pool count stays bounded.
type SturdycService struct {
	cfg Config

	mu    sync.Mutex
	pools map[cache.Policy]*sturdyc.Client[any]
}

// NewSturdycService creates the sturdyc-backed cache service.
func NewSturdycService(cfg Config) (*SturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SturdycService{
		cfg:   cfg,
		pools: make(map[cache.Policy]*sturdyc.Client[any]),
	}, nil
}

// poolFor returns the client for a policy, building it on first use.
func (s *SturdycService) poolFor(policy cache.Policy) *sturdyc.Client[any] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, ok := s.pools[policy]; ok {
		return client
	}

	retryBase := policy.RefreshRetryBase
	if retryBase <= 0 {
		retryBase = 100 * time.Millisecond
	}

	options := []sturdyc.Option{
		// The staleness window maps onto sturdyc early refreshes: after
		// StaleAfter the entry is still served but the next access kicks
		// off a background refetch; past twice the window the refresh
		// turns synchronous.
		sturdyc.WithEarlyRefreshes(
			policy.StaleAfter,
			policy.StaleAfter+policy.StaleAfter/4,
			2*policy.StaleAfter,
			retryBase,
		),
	}
	if s.cfg.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}
	if s.cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(s.cfg.EvictionInterval))
	}

	// RetainFor is the pool TTL: entries unobserved that long are evicted.
	client := sturdyc.New[any](
		s.cfg.Capacity,
		s.cfg.NumShards,
		policy.RetainFor,
		s.cfg.EvictionPercentage,
		options...,
	)
	s.pools[policy] = client
	return client
}

// GetOrFetch implements cache.Service. It validates fetchFn up front so the
// reflection bridge never hands sturdyc a function it cannot call.
func (s *SturdycService) GetOrFetch(ctx context.Context, key string, policy cache.Policy, fetchFn any) (any, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	if cache.ForceRefreshFromContext(ctx) {
		s.Delete(ctx, key)
	}

	typedFetchFn := func(ctx context.Context) (any, error) {
		return callFetchFn(ctx, fetchFn)
	}
	return s.poolFor(policy).GetOrFetch(ctx, key, typedFetchFn)
}

// Delete implements cache.Service. The key is removed from every pool,
// since the caller's key taxonomy is policy-agnostic.
func (s *SturdycService) Delete(ctx context.Context, key string) error {
	for _, client := range s.clients() {
		client.Delete(key)
	}
	return nil
}

// InvalidateKeys implements cache.Service.
func (s *SturdycService) InvalidateKeys(ctx context.Context, keys []string) error {
	clients := s.clients()
	for _, key := range keys {
		for _, client := range clients {
			client.Delete(key)
		}
	}
	return nil
}

func (s *SturdycService) clients() []*sturdyc.Client[any] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*sturdyc.Client[any], 0, len(s.pools))
	for _, client := range s.pools {
		out = append(out, client)
	}
	return out
}

// validateFetchFn ensures fetchFn matches func(context.Context) (T, error)
// before any reflective call is attempted.
func validateFetchFn(fetchFn any) error {
	if fetchFn == nil {
		return &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	fnType := reflect.TypeOf(fetchFn)
	if fnType.Kind() != reflect.Func {
		return &ConfigError{Field: "fetchFn", Message: "must be a function"}
	}
	if fnType.NumIn() != 1 || fnType.NumOut() != 2 {
		return &ConfigError{Field: "fetchFn", Message: "must have signature func(context.Context) (T, error)"}
	}

	contextType := reflect.TypeOf((*context.Context)(nil)).Elem()
	if !fnType.In(0).Implements(contextType) {
		return &ConfigError{Field: "fetchFn", Message: "first parameter must be context.Context"}
	}

	errorType := reflect.TypeOf((*error)(nil)).Elem()
	if !fnType.Out(1).Implements(errorType) {
		return &ConfigError{Field: "fetchFn", Message: "second return value must be error"}
	}

	return nil
}

// callFetchFn invokes any function matching cache.FetchFn[T]. fetchFn has
// already passed validateFetchFn.
func callFetchFn(ctx context.Context, fetchFn any) (any, error) {
	// Direct assertion covers the common any-typed case without reflection.
	if fn, ok := fetchFn.(func(context.Context) (any, error)); ok {
		return fn(ctx)
	}

	results := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})

	var result any
	if resultValue := results[0]; resultValue.IsValid() && resultValue.CanInterface() {
		result = resultValue.Interface()
	}

	var err error
	if errValue := results[1]; errValue.IsValid() && !errValue.IsNil() {
		err = errValue.Interface().(error)
	}

	return result, err
}
