package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-backend/common/auth"
)

// Context keys set by the auth middleware.
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	RoleKey      = "role"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(tokenStr, expectedType string) (*auth.Claims, error)
}

// RequireUser admits requests carrying a valid customer token.
func RequireUser(tokens TokenParser) gin.HandlerFunc {
	return requireToken(tokens, auth.TypeUser)
}

// RequireAdmin admits requests carrying a valid administrator token.
func RequireAdmin(tokens TokenParser) gin.HandlerFunc {
	return requireToken(tokens, auth.TypeAdmin)
}

func requireToken(tokens TokenParser, typ string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.Request)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, login again"})
			return
		}
		claims, err := tokens.Parse(raw, typ)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}
		c.Set(UserIDKey, claims.Subject)
		c.Set(UserEmailKey, claims.Email)
		c.Set(RoleKey, claims.Type)
		c.Next()
	}
}

// bearerToken reads "Authorization: Bearer <t>" and falls back to the
// legacy "token" header the storefront clients send.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	return strings.TrimSpace(r.Header.Get("token"))
}

// GetUserID returns the authenticated user id set by RequireUser.
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(UserIDKey)
	return id, id != ""
}
