package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/rosterhub/roster-api/internal/models"
	appErrors "github.com/rosterhub/roster-api/pkg/errors"
	"github.com/rosterhub/roster-api/pkg/response"
)

// RequireRoles blocks requests whose session role is not in the allowed set.
// It must run after JWT so the claims are on the context.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
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
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
