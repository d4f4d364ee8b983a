package ctxutil

import (
	"context"
	"time"
)

// DefaultBookkeepingTimeout bounds a bookkeeping write when no timeout is configured.
const DefaultBookkeepingTimeout = 5 * time.Second

// Bookkeeping returns a context for recording the outcome of an operation whose
// own context may already be canceled, such as queueing a message after its
// send was interrupted. It keeps parent's values (trace, user and chat ids),
// drops its cancellation and deadline, and expires after timeout. A non-positive
// timeout means DefaultBookkeepingTimeout.
func Bookkeeping(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultBookkeepingTimeout
	}
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
