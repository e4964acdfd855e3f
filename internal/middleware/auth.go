package middleware

import (
	"strings"

	"userhub/internal/domainerr"

	"github.com/gin-gonic/gin"
)

const (
	// ActorHeader carries the reference of the user making the request.
	ActorHeader  = "X-User-Reference"
	APIKeyHeader = "X-API-Key"

	actorKey = "actor"
)

// KeyValidator checks a service API key.
type KeyValidator interface {
	Enabled() bool
	ValidateKey(plainKey string) bool
}

// AuthMiddleware rejects requests without a valid X-API-Key when a key is configured.
func AuthMiddleware(keys KeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keys == nil || !keys.Enabled() {
			c.Next()
			return
		}
		if !keys.ValidateKey(strings.TrimSpace(c.GetHeader(APIKeyHeader))) {
			de := domainerr.New(domainerr.KindAuthentication, "missing or invalid API key")
			c.AbortWithStatusJSON(de.Status(), de)
			return
		}
		c.Next()
	}
}

// ActorMiddleware stores the X-User-Reference header for handlers and logging.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := strings.TrimSpace(c.GetHeader(ActorHeader)); actor != "" {
			c.Set(actorKey, actor)
		}
		c.Next()
	}
}

// Actor returns the current user reference, or "" when none was sent.
func Actor(c *gin.Context) string {
	return c.GetString(actorKey)
}
