package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jaapa/jaapa-api/internal/models"
	appErrors "github.com/jaapa/jaapa-api/pkg/errors"
	"github.com/jaapa/jaapa-api/pkg/response"
)

// RequireRoles restricts a route to the given back-office roles.
func RequireRoles(roles ...models.SystemRole) gin.HandlerFunc {
	allowed := make(map[models.SystemRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.Claims)

		if _, ok := allowed[claims.Rol]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
