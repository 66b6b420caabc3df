// Package context holds timeout helpers shared by startup and shutdown code.
package context

import (
	"context"
	"time"
)

// Default timeouts.
const (
	DefaultPingTimeout     = 5 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// WithPingTimeout bounds a connectivity check against parent.
func WithPingTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultPingTimeout)
}

// WithShutdownTimeout returns a fresh context for draining resources after
// the serving context has already been cancelled.
func WithShutdownTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultShutdownTimeout)
}
