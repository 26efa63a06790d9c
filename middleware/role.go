package middleware

import (
	"moveline/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware.
const (
	SubjectKey = "subject"
	RoleKey    = "role"
)

// Admins pass every role check.
func roleAllowed(role string, allowed []string) bool {
	if len(allowed) == 0 || role == utils.RoleAdmin {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// CurrentRole returns the role of the authenticated caller, if any.
func CurrentRole(c *gin.Context) string {
	return c.GetString(RoleKey)
}
