package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
)

// RequireRoles rejects principals holding none of roles with 403.
// It must run after AuthGate; a request without a principal gets 401.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, unauthenticated))
			return
		}
		if !principal.HasAnyRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(dto.ErrCodeForbidden, "Insufficient role for this operation"))
			return
		}
		c.Next()
	}
}
