package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
)

const (
	// UserIDContextKey is a gin context key for authenticated user identifier.
	UserIDContextKey = "userID"
	// ClaimsContextKey is a gin context key for the full token claims.
	ClaimsContextKey = "claims"
	// AuthCookieName carries the access token for browser clients.
	AuthCookieName = "veo3_token"
)

// Authorizer resolves an access token into claims of a live session.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (model.TokenClaims, error)
}

// AuthRequired ensures the request carries a token of the user's current session.
func AuthRequired(authorizer Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "SESSION_INVALID", "authentication required")
			return
		}

		claims, err := authorizer.Authorize(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domainErrors.ErrSessionInvalid) {
				abortWithError(c, http.StatusUnauthorized, "SESSION_INVALID", "session is no longer valid")
				return
			}
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			return
		}

		c.Set(UserIDContextKey, claims.UserID)
		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// AdminOnly rejects callers whose token does not carry the admin role.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok || claims.Role != model.RoleAdmin {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
			return
		}
		c.Next()
	}
}

// Claims returns the claims stored by AuthRequired.
func Claims(c *gin.Context) (model.TokenClaims, bool) {
	val, ok := c.Get(ClaimsContextKey)
	if !ok {
		return model.TokenClaims{}, false
	}
	claims, ok := val.(model.TokenClaims)
	return claims, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes the access token cookie.
func SetAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, token, maxAge, "/", "", false, true)
}

// ClearAuthCookie expires the access token cookie.
func ClearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, "", -1, "/", "", false, true)
}
