package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
	"github.com/shopdesk/backend/internal/interfaces/http/router"
)

// TokenRevoker invalidates a verified credential
type TokenRevoker interface {
	Logout(ctx context.Context, subject *identity.VerifiedSubject) error
}

// PrincipalResponse is the body of GET /identity/me
type PrincipalResponse struct {
	SubjectID string `json:"subject_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	TenantID  string `json:"tenant_id,omitempty"`
}

// IdentityHandler exposes the caller's resolved identity
type IdentityHandler struct {
	BaseHandler
	revoker       TokenRevoker
	sessionCookie string
}

// NewIdentityHandler creates a new IdentityHandler
func NewIdentityHandler(revoker TokenRevoker, sessionCookie string) *IdentityHandler {
	if sessionCookie == "" {
		sessionCookie = middleware.DefaultCookie
	}
	return &IdentityHandler{revoker: revoker, sessionCookie: sessionCookie}
}

// Me godoc
// GET /identity/me
func (h *IdentityHandler) Me(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	h.Success(c, PrincipalResponse{
		SubjectID: p.SubjectID(),
		Email:     p.Email(),
		Role:      p.Role().String(),
		TenantID:  p.TenantID(),
	})
}

// Logout godoc
// POST /identity/logout
func (h *IdentityHandler) Logout(c *gin.Context) {
	subject := middleware.GetSubject(c)
	if subject == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	if err := h.revoker.Logout(c.Request.Context(), subject); err != nil {
		h.HandleError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Status(http.StatusNoContent)
}

// IdentityRoutes returns the identity route group
func IdentityRoutes(h *IdentityHandler) *router.DomainGroup {
	group := router.NewDomainGroup("identity", "/identity")

	group.GET("/me", h.Me)
	group.POST("/logout", h.Logout)

	return group
}
