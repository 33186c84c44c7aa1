package session

import (
	"context"

	"github.com/ray-remotestate/posgate/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// Current returns the request's session, or nil when unauthenticated.
func Current(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionContextKey).(*models.Session)
	return s
}
