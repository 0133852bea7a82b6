package cache

import "time"

// Policy declares the caching behaviour of a single read operation.
//
// StaleAfter is the staleness window: a value older than this is still
// returned immediately, but the next access triggers a background refresh.
// RetainFor is the retention window: an entry unobserved for this long is
// evicted entirely. RetainFor must always be at least StaleAfter, otherwise
// entries would be evicted while still considered fresh.
//
// Policy is a plain comparable value so the cache backend can pool entries
// that share one.
type Policy struct {
	StaleAfter time.Duration
	RetainFor  time.Duration

	// RefreshRetryBase is the base delay used when a background refresh
	// fails and is retried. Zero selects the backend default.
	RefreshRetryBase time.Duration
}

// PolicyError reports an invalid policy field.
type PolicyError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *PolicyError) Error() string {
	return "policy error in field " + e.Field + ": " + e.Message
}

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	if p.StaleAfter <= 0 {
		return &PolicyError{Field: "StaleAfter", Message: "must be greater than 0"}
	}
	if p.RetainFor <= 0 {
		return &PolicyError{Field: "RetainFor", Message: "must be greater than 0"}
	}
	if p.RetainFor < p.StaleAfter {
		return &PolicyError{Field: "RetainFor", Message: "must be at least StaleAfter"}
	}
	if p.RefreshRetryBase < 0 {
		return &PolicyError{Field: "RefreshRetryBase", Message: "must be non-negative"}
	}
	return nil
}

// DefaultListPolicy suits list reads: short staleness so new writes show up
// quickly, longer retention so back-navigation is instant.
func DefaultListPolicy() Policy {
	return Policy{StaleAfter: 30 * time.Second, RetainFor: 5 * time.Minute}
}

// DefaultDetailPolicy suits detail-by-id reads, which change less often
// than lists.
func DefaultDetailPolicy() Policy {
	return Policy{StaleAfter: time.Minute, RetainFor: 10 * time.Minute}
}
