package cache

import "context"

type forceRefreshContextKey struct{}

// WithForceRefresh marks the context so the next read bypasses any cached
// value and fetches from the source of truth. The fetched result replaces
// the cached entry as usual. Use it for explicit "refresh" affordances;
// normal staleness handling does not need it.
func WithForceRefresh(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, forceRefreshContextKey{}, true)
}

// ForceRefreshFromContext reports whether the context carries the
// force-refresh directive.
func ForceRefreshFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	force, _ := ctx.Value(forceRefreshContextKey{}).(bool)
	return force
}
