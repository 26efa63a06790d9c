// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"moveline/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware accepts a bearer token signed with JWT_SECRET whose role
// is one of roles. An empty roles list accepts any valid token.
func JWTAuthMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Code: "unauthorized", Message: "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, role, err := utils.RoleFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Code: "unauthorized", Message: "Invalid token"})
			return
		}
		if !roleAllowed(role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Code: "forbidden", Message: "Insufficient role"})
			return
		}

		c.Set(SubjectKey, subject)
		c.Set(RoleKey, role)
		c.Next()
	}
}
