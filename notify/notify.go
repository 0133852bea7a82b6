// Package notify defines the observer interface the resource services emit
// user-facing notifications to. The SDK core never depends on a UI toast
// library; host applications plug their own Notifier in, and everything
// defaults to a no-op.
package notify

import (
	"context"
	"log/slog"
)

// Notifier receives transient user-facing notifications. Implementations
// must be safe for concurrent use and must not block; a slow sink should
// buffer internally.
type Notifier interface {
	// Success reports a completed mutation, e.g. "review submitted".
	Success(message string)

	// Error reports a failed operation with a human-readable message.
	Error(message string)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}

// OrNop returns n, or a Nop notifier when n is nil, so callers never have
// to nil-check before emitting.
func OrNop(n Notifier) Notifier {
	if n == nil {
		return Nop{}
	}
	return n
}

// Log routes notifications to a structured logger. Useful for headless
// hosts and tests.
type Log struct {
	Logger *slog.Logger
}

func (l Log) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l Log) Success(message string) {
	l.logger().LogAttrs(context.Background(), slog.LevelInfo, "notification",
		slog.String("kind", "success"), slog.String("message", message))
}

func (l Log) Error(message string) {
	l.logger().LogAttrs(context.Background(), slog.LevelWarn, "notification",
		slog.String("kind", "error"), slog.String("message", message))
}
