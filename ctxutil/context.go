package ctxutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyhub/collab/consts"
)

type contextKey string

const (
	userIDKey  contextKey = contextKey(consts.UserKey)
	TraceIDKey contextKey = contextKey(consts.TraceKey)
	chatIDKey  contextKey = "chat_id"
)

// GetValue retrieves a value from the context.
func GetValue(ctx context.Context, key contextKey) any {
	if ctx == nil {
		return nil
	}
	return ctx.Value(key)
}

// SetValue sets a value to the context.
func SetValue(ctx context.Context, key contextKey, val any) context.Context {
	return context.WithValue(ctx, key, val)
}

// SetUserID sets user id to context.Context.
func SetUserID(ctx context.Context, uid string) context.Context {
	return SetValue(ctx, userIDKey, uid)
}

// GetUserID gets user id from context.Context.
func GetUserID(ctx context.Context) string {
	if uid, ok := GetValue(ctx, userIDKey).(string); ok {
		return uid
	}
	return ""
}

// SetChatID sets chat id to context.Context.
func SetChatID(ctx context.Context, chatID string) context.Context {
	return SetValue(ctx, chatIDKey, chatID)
}

// GetChatID gets chat id from context.Context.
func GetChatID(ctx context.Context) string {
	if id, ok := GetValue(ctx, chatIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTraceID gets trace id from context.Context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := GetValue(ctx, TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// SetTraceID sets trace id to context.Context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return SetValue(ctx, TraceIDKey, traceID)
}

// EnsureTraceID ensures that a trace ID exists in the context.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}
