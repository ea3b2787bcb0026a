package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// actorIDKey stores the authenticated actor (the JWT subject).
const actorIDKey = contextKey("actorID")

// WithActorID returns a copy of ctx carrying the actor id.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey, actorID)
}

// GetActorIDFromContext retrieves the authenticated actor id set by AuthMiddleware.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorID, ok := c.Request.Context().Value(actorIDKey).(string)
	if !ok || actorID == "" {
		return "", false
	}
	return actorID, true
}
