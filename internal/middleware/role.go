package middleware

import (
	"net/http" // HTTP status codes

	"parcel_system/internal/domain" // Role enum

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireRole checks the role claim set by JWTAuthMiddleware. The role
// rides in the token, so no database round trip is needed per request.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, exists := c.Get(ContextRole) // Get role from context
		// Check if role exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Check if the caller's role matches the required role
		if claim.(domain.Role) != role {
			// If not, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		// Role matches, proceed to the next handler
		c.Next()
	}
}
