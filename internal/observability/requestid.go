package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

var requestIDKey contextKey

// NewRequestID возвращает новый идентификатор запроса.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID сохраняет идентификатор запроса в контексте.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext извлекает идентификатор запроса; пустая строка, если его нет.
func RequestIDFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}
