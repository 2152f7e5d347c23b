package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/config"
)

// ContextSessionKey is the gin context key holding the browser session ID.
const ContextSessionKey = "sessionID"

// Session guarantees every request carries a session cookie, minting one
// for first-time visitors. The session ID scopes durable selection state
// and the in-memory store set.
func Session(cfg config.SessionConfig, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.Cookie)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetCookie(cfg.Cookie, id, int(cfg.TTL.Seconds()), "/", jwtCfg.CookieDomain, jwtCfg.CookieSecure, true)
		}
		c.Set(ContextSessionKey, id)
		c.Next()
	}
}

// SessionID returns the session ID attached by the Session middleware.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionKey)
}
