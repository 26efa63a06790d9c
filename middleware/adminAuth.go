package middleware

import (
	"moveline/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthAdminMiddleware only admits tokens issued with the admin role.
func JWTAuthAdminMiddleware() gin.HandlerFunc {
	return JWTAuthMiddleware(utils.RoleAdmin)
}
