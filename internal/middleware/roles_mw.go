package middleware

import (
	"net/http"
	"slices"

	"blog_backend/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check for specific user roles.
// It must run after AccessFilter and RequireAuth.
func RoleMiddleware(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse(model.CodeUnauthorized, "Authentication required"))
			return
		}

		if !slices.Contains(allowedRoles, identity.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, model.NewErrorResponse(model.CodeForbidden, "You do not have permission to access this resource"))
			return
		}

		c.Next()
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}
