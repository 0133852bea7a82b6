package testsupport

import (
	"context"
	"net/url"
	"reflect"
	"sync"

	"github.com/paperleaf/storefront-go/cache"
)

// RecordingNotifier captures notifications for assertions.
type RecordingNotifier struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (n *RecordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Successes = append(n.Successes, message)
}

func (n *RecordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Errors = append(n.Errors, message)
}

// LastError returns the most recent error notification, "" when none.
func (n *RecordingNotifier) LastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Errors) == 0 {
		return ""
	}
	return n.Errors[len(n.Errors)-1]
}

// Call records one transport invocation on a FakeDoer.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// FakeDoer is a storefront.Doer that replies from a canned handler and
// records every call.
type FakeDoer struct {
	mu    sync.Mutex
	calls []Call

	// Handler produces the reply for a call: assign out and/or return an
	// error. A nil Handler answers every call with success and no body.
	Handler func(call Call, out any) error

	// BearerToken is what Token reports.
	BearerToken string
}

func (d *FakeDoer) record(call Call, out any) error {
	d.mu.Lock()
	d.calls = append(d.calls, call)
	handler := d.Handler
	d.mu.Unlock()

	if handler == nil {
		return nil
	}
	return handler(call, out)
}

func (d *FakeDoer) Get(ctx context.Context, path string, query url.Values, out any) error {
	return d.record(Call{Method: "GET", Path: path, Query: query}, out)
}

func (d *FakeDoer) Post(ctx context.Context, path string, body, out any) error {
	return d.record(Call{Method: "POST", Path: path, Body: body}, out)
}

func (d *FakeDoer) Put(ctx context.Context, path string, body, out any) error {
	return d.record(Call{Method: "PUT", Path: path, Body: body}, out)
}

func (d *FakeDoer) Delete(ctx context.Context, path string, out any) error {
	return d.record(Call{Method: "DELETE", Path: path}, out)
}

func (d *FakeDoer) Token() string { return d.BearerToken }

// Calls returns a copy of the recorded calls.
func (d *FakeDoer) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// CallCount reports how many transport calls were made.
func (d *FakeDoer) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// FakeCacheService is a cache.Service over a plain map, recording every
// invalidated key. Policies are accepted and ignored.
type FakeCacheService struct {
	mu          sync.Mutex
	entries     map[string]any
	Invalidated []string
}

// NewFakeCacheService creates an empty fake cache.
func NewFakeCacheService() *FakeCacheService {
	return &FakeCacheService{entries: make(map[string]any)}
}

func (f *FakeCacheService) GetOrFetch(ctx context.Context, key string, policy cache.Policy, fetchFn any) (any, error) {
	f.mu.Lock()
	if v, ok := f.entries[key]; ok {
		f.mu.Unlock()
		return v, nil
	}
	f.mu.Unlock()

	results := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})
	if errValue := results[1]; errValue.IsValid() && !errValue.IsNil() {
		return nil, errValue.Interface().(error)
	}
	value := results[0].Interface()

	f.mu.Lock()
	f.entries[key] = value
	f.mu.Unlock()
	return value, nil
}

func (f *FakeCacheService) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	f.Invalidated = append(f.Invalidated, key)
	return nil
}

func (f *FakeCacheService) InvalidateKeys(ctx context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
		f.Invalidated = append(f.Invalidated, key)
	}
	return nil
}

// Cached reports whether key currently holds a value.
func (f *FakeCacheService) Cached(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

// InvalidatedKeys returns a copy of the invalidation log.
func (f *FakeCacheService) InvalidatedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Invalidated...)
}

// FailingStorage is a cart.Storage whose operations always fail with Err.
type FailingStorage struct {
	Err error
}

func (s FailingStorage) Load(ctx context.Context) ([]byte, error) { return nil, s.Err }

func (s FailingStorage) Save(ctx context.Context, data []byte) error { return s.Err }
