package storefront

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/paperleaf/storefront-go/cache"
	"github.com/paperleaf/storefront-go/notify"
)

// Doer is the transport contract the resource services require. It is
// satisfied by *rest.Client; tests substitute a recording fake.
type Doer interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error

	// Token reports the current bearer token, "" when anonymous. Reads
	// gated on authentication consult it before firing.
	Token() string
}

// Deps bundles the collaborators every resource service shares. There are
// no package-level singletons; the host owns one Deps value and hands it
// to each service it constructs.
type Deps struct {
	Rest       Doer
	Cache      cache.Service
	Keys       *cache.KeyIndex
	Serializer cache.KeySerializer
	Notifier   notify.Notifier
	Logger     *slog.Logger
}

func (d Deps) normalize() Deps {
	if d.Serializer == nil {
		d.Serializer = cache.NewDefaultKeySerializer()
	}
	if d.Keys == nil {
		d.Keys = cache.NewKeyIndex()
	}
	d.Notifier = notify.OrNop(d.Notifier)
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// service is the embedded core of every resource service.
type service struct {
	deps Deps
}

// readThrough registers the key as live and serves the read through the
// cache. A failed fetch leaves any previously cached value in place; the
// caller receives the error and decides what to show.
func readThrough[T any](ctx context.Context, s *service, key cache.Key, policy cache.Policy, fetch cache.FetchFn[T]) (T, error) {
	s.deps.Keys.Register(key)
	return cache.GetOrFetch(ctx, s.deps.Cache, key.String(), policy, fetch)
}

// invalidate resolves each prefix against the key index and removes the
// matched entries from the cache, so the next observation refetches.
// Invalidation runs only after a confirmed write; failures are logged and
// never propagated, because the write itself already succeeded.
func (s *service) invalidate(ctx context.Context, prefixes ...cache.Key) {
	for _, prefix := range prefixes {
		matched := s.deps.Keys.Drop(prefix)
		if len(matched) == 0 {
			continue
		}
		keys := make([]string, len(matched))
		for i, k := range matched {
			keys[i] = k.String()
		}
		if err := s.deps.Cache.InvalidateKeys(ctx, keys); err != nil {
			s.deps.Logger.LogAttrs(ctx, slog.LevelWarn, "cache invalidation failed",
				slog.String("prefix", prefix.String()),
				slog.Int("keys", len(keys)),
				slog.String("error", err.Error()))
		}
	}
}
