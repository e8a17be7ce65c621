package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// UserAuth enforces bearer JWT tokens signed with HS256.
func UserAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin allows only principal and vice-principal tokens through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := FromContext(c)
		if !ok || !AdminRole(user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// FromContext returns the user carried by the request's verified claims.
func FromContext(c *gin.Context) (User, bool) {
	claimsAny, ok := c.Get(claimsKey)
	if !ok {
		return User{}, false
	}
	claims, ok := claimsAny.(Claims)
	if !ok {
		return User{}, false
	}
	return claims.User(), true
}
