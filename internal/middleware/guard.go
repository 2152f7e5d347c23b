package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/config"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/response"
)

const (
	// ContextTokenKey holds the access token forwarded to the upstream.
	ContextTokenKey = "accessToken"
	// ContextUserKey holds decoded access-token claims.
	ContextUserKey = "currentUser"
)

// TokenClaims carries the identity fields the gateway reads out of the
// access token. The upstream verifies signatures; the gateway only decodes.
type TokenClaims struct {
	Username  string
	ExpiresAt time.Time
}

// Guard protects the app area. Both token cookies must be present;
// browsers are redirected to the login page with the original destination
// preserved, API clients get a 401 envelope.
func Guard(guardCfg config.GuardConfig, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, accessErr := c.Cookie(jwtCfg.AccessCookie)
		refresh, refreshErr := c.Cookie(jwtCfg.RefreshCookie)
		if accessErr != nil || refreshErr != nil || access == "" || refresh == "" {
			deny(c, guardCfg)
			return
		}

		c.Set(ContextTokenKey, access)
		if claims := decodeClaims(access); claims != nil {
			c.Set(ContextUserKey, claims)
			if jwtCfg.RefreshLeeway > 0 && !claims.ExpiresAt.IsZero() &&
				time.Until(claims.ExpiresAt) < jwtCfg.RefreshLeeway {
				c.Header("X-Token-Refresh", "suggested")
			}
		}
		c.Next()
	}
}

// RedirectAuthenticated sends already signed-in visitors of auth pages
// back into the app.
func RedirectAuthenticated(guardCfg config.GuardConfig, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, accessErr := c.Cookie(jwtCfg.AccessCookie)
		refresh, refreshErr := c.Cookie(jwtCfg.RefreshCookie)
		if accessErr == nil && refreshErr == nil && access != "" && refresh != "" && prefersHTML(c) {
			c.Redirect(http.StatusFound, guardCfg.AppRoot)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AccessToken returns the token attached by Guard, empty when absent.
func AccessToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}

// CurrentUser returns decoded claims when Guard could read them.
func CurrentUser(c *gin.Context) *TokenClaims {
	if value, ok := c.Get(ContextUserKey); ok {
		if claims, ok := value.(*TokenClaims); ok {
			return claims
		}
	}
	return nil
}

func deny(c *gin.Context, guardCfg config.GuardConfig) {
	if prefersHTML(c) {
		status := http.StatusFound
		if c.Request.Method != http.MethodGet {
			status = http.StatusSeeOther
		}
		target := guardCfg.LoginPath + "?redirectTo=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(status, target)
		c.Abort()
		return
	}
	response.Error(c, appErrors.ErrAuthRequired)
	c.Abort()
}

func prefersHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// decodeClaims parses the token without verifying its signature. A token
// the gateway cannot decode still passes the guard; the upstream rejects
// it on the first proxied call.
func decodeClaims(token string) *TokenClaims {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	claims := &TokenClaims{}
	if username, ok := mapClaims["username"].(string); ok {
		claims.Username = username
	} else if sub, ok := mapClaims["sub"].(string); ok {
		claims.Username = sub
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims
}
