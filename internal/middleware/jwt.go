package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cornerstone-fellowship/backend/internal/staff"
	"github.com/cornerstone-fellowship/backend/pkg/response"
)

// ContextStaffName is the key for the authenticated staff name in gin context.
const ContextStaffName = "staff_name"

// StaffAuth returns a middleware that validates the staff session token and
// sets the staff name in context.
func StaffAuth(tokens *staff.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "UNAUTHORIZED", "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "UNAUTHORIZED", "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := tokens.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "UNAUTHORIZED", "invalid or expired session token")
			c.Abort()
			return
		}
		c.Set(ContextStaffName, claims.StaffName)
		c.Next()
	}
}
