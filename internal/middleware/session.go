package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/sessions"
)

const IdentityKey = "identity"

// Session restores the caller from the session cookie. Anonymous requests
// pass through without an identity; only a failing session store aborts.
func Session(manager *sessions.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(manager.CookieName())

		identity, err := manager.Restore(c.Request.Context(), token)
		if err != nil {
			logger.Error("session restore failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		if identity != nil {
			c.Set(IdentityKey, identity)
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401 and the given message.
func RequireAuth(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the caller set by Session, or nil.
func CurrentIdentity(c *gin.Context) *sessions.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*sessions.Identity)
	return identity
}
