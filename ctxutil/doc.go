// Package ctxutil provides helpers for request-scoped values carried on a
// context.Context.
//
// # Context Value Management
//
//	ctx = ctxutil.SetUserID(ctx, "user-123")
//	uid := ctxutil.GetUserID(ctx)
//
// # Trace IDs
//
// EnsureTraceID attaches a UUID trace id when none is present. The logger reads it
// back so every line of one erasure or replay run can be correlated:
//
//	ctx, traceID := ctxutil.EnsureTraceID(ctx)
//
// # Bookkeeping
//
// Bookkeeping detaches a context from its parent's cancellation while keeping
// its values, so a queue write after an interrupted send still happens:
//
//	qctx, cancel := ctxutil.Bookkeeping(ctx, cfg.Delivery.BookkeepingTimeout)
//	defer cancel()
package ctxutil
