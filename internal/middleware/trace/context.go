package trace

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
)

// contextWithRequestID stores id under chi's request id key so that
// middleware.GetReqID and log.RequestIDMiddleware see it.
func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, middleware.RequestIDKey, id)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}
