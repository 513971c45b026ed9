package middleware

import (
	"net/http"
	"strings"

	"github.com/fixhub/fixhub-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const principalKey = "principal"

// Principal is the authenticated identity attached to the request context.
// Every protected handler reads this instead of re-parsing tokens.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// Authenticate validates the bearer token and stores a typed Principal in
// the gin context.
func Authenticate(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := tokens.ValidateAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(principalKey, Principal{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		c.Next()
	}
}

// RequireRole allows the request through only when the principal holds one
// of the given roles. Must run after Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !allowed[principal.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated principal for the request.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	val, exists := c.Get(principalKey)
	if !exists {
		return Principal{}, false
	}
	principal, ok := val.(Principal)
	return principal, ok
}
