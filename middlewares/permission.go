package middlewares

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/opskitchen/resto-ops/rbac"
	"github.com/opskitchen/resto-ops/utils"
)

// RequirePermission allows the request through when the actor's role holds
// any of the listed permissions. Unknown roles are denied.
func RequirePermission(permissions ...rbac.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, utils.ErrUnauthorized("authentication required"))
			c.Abort()
			return
		}

		role := rbac.Role(roleValue.(string))
		for _, p := range permissions {
			if rbac.HasPermission(role, p) {
				c.Next()
				return
			}
		}

		utils.RespondError(c, utils.ErrForbidden(
			fmt.Sprintf("role %s lacks required permission", role)))
		c.Abort()
	}
}

// ActorFromContext pulls the authenticated actor out of the gin context.
func ActorFromContext(c *gin.Context) (uint, rbac.Role) {
	var actorID uint
	if v, ok := c.Get("userID"); ok {
		actorID, _ = v.(uint)
	}
	var role rbac.Role
	if v, ok := c.Get("role"); ok {
		if s, ok := v.(string); ok {
			role = rbac.Role(s)
		}
	}
	return actorID, role
}
