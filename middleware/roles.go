package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
)

// RequireRole is a middleware that checks the stored role of the staff user.
// It must run after RequireStaff.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := CurrentStaff(c)
		if err != nil {
			utils.RespondError(c, utils.NewAuthenticationError("Authentication required"))
			return
		}

		if !user.HasRole(roles...) {
			utils.RespondError(c, utils.NewAuthorizationError("Insufficient permissions to access this resource"))
			return
		}

		c.Next()
	}
}
