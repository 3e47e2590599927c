package middleware

import (
	"net/http" // Redirect status codes
	"strings"  // Path prefix checks

	"parcel_system/internal/domain" // Role enum
	"parcel_system/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Public page routes that never require a session
var publicRoutes = []string{"/login", "/register", "/"}

// dashboardFor returns the dashboard path for a role
func dashboardFor(role domain.Role) string {
	return "/dashboard/" + strings.ToLower(string(role))
}

// guardToken resolves the caller's claims from the Authorization header
// or the token cookie. A malformed or expired token counts as no token.
func guardToken(c *gin.Context, secret string) *utils.Claims {
	tokenStr := ""
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		tokenStr = strings.TrimPrefix(auth, "Bearer ")
	} else if cookie, err := c.Cookie("token"); err == nil {
		tokenStr = cookie
	}
	if tokenStr == "" {
		return nil
	}
	claims, err := utils.ParseJWT(tokenStr, secret)
	if err != nil {
		return nil // Treated identically to no token
	}
	return claims
}

// RouteGuard gates the page routes by session and role:
//  1. a signed-in user visiting /login or /register is sent to their dashboard
//  2. a visitor without a session is sent to /login unless the path is public
//  3. a role-scoped /dashboard prefix that does not match the caller's
//     role redirects to the caller's own dashboard
func RouteGuard(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := guardToken(c, secret) // Resolve session claims, nil if absent
		path := c.Request.URL.Path      // Requested page path

		// 1. Logged in user on login/register goes to their dashboard
		if claims != nil && (strings.HasPrefix(path, "/login") || strings.HasPrefix(path, "/register")) {
			c.Redirect(http.StatusTemporaryRedirect, dashboardFor(claims.Role))
			c.Abort()
			return
		}

		// 2. No session and not a public route goes to login
		if claims == nil {
			public := false
			for _, route := range publicRoutes {
				if strings.HasPrefix(path, route) && (route != "/" || path == "/") {
					public = true
					break
				}
			}
			if !public {
				c.Redirect(http.StatusTemporaryRedirect, "/login")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		// 3. Role-scoped dashboard prefixes
		for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleAgent, domain.RoleCustomer} {
			if strings.HasPrefix(path, dashboardFor(role)) && claims.Role != role {
				c.Redirect(http.StatusTemporaryRedirect, dashboardFor(claims.Role))
				c.Abort()
				return
			}
		}

		// Expose the session to dashboard handlers
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
