package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdesk/backend/internal/domain/identity"
)

func roleRouter(t *testing.T, p *identity.Principal) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if p != nil {
			c.Set(PrincipalKey, p)
		}
		c.Next()
	})
	r.POST("/categories", RequireRoles(identity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRequireRoles(t *testing.T) {
	admin, err := identity.NewPrincipal("user_admin", "", identity.RoleAdmin, "")
	require.NoError(t, err)
	owner, err := identity.NewPrincipal("user_owner", "", identity.RoleTenantOwner, "T1")
	require.NoError(t, err)

	tests := []struct {
		name      string
		principal *identity.Principal
		want      int
	}{
		{"admin passes", admin, http.StatusCreated},
		{"tenant owner is forbidden", owner, http.StatusForbidden},
		{"missing principal is unauthenticated", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			roleRouter(t, tt.principal).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/categories", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
