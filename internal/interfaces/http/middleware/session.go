// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
)

const (
	// SessionCookie names the cookie that identifies a guest session
	SessionCookie = "session_id"
	// SessionIDKey is the gin context key for the session id
	SessionIDKey = "session_id"
)

// Session makes sure every request carries a session id. A missing or
// malformed cookie is replaced with a fresh uuid.
func Session(cfg *config.Config) gin.HandlerFunc {
	maxAge := int(cfg.Shop.CartTTL.Seconds())
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || !isSessionID(id) {
			id = uuid.NewString()
		}

		// Refresh on every request so the cookie outlives the cart key
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, maxAge, "/", "", cfg.Security.CookieSecure, true)
		c.Set(SessionIDKey, id)
		c.Next()
	}
}

// GetSessionID returns the session id set by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

func isSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
