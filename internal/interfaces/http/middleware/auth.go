package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	appidentity "github.com/shopdesk/backend/internal/application/identity"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
)

// Auth context keys
const (
	PrincipalKey    = "auth_principal"
	SubjectKey      = "auth_subject"
	UserIDKey       = "auth_user_id"
	TenantIDKey     = "auth_tenant_id"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
	DefaultCookie   = "session"
	unauthenticated = "Authentication required"
)

// Authenticator turns a raw credential into a resolved principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*appidentity.Authentication, error)
}

// AuthGateConfig holds configuration for the authorization gate
type AuthGateConfig struct {
	Authenticator Authenticator
	// SessionCookie is read when no Authorization header is present
	SessionCookie string
	// SkipPaths are served without a credential
	SkipPaths []string
	Logger    *zap.Logger
	// Meter receives the http_auth_failures_total counter; nil disables it
	Meter metric.Meter
}

// Auth failure reasons recorded on http_auth_failures_total
const (
	authFailureNoCredential = "no_credential"
	authFailureRejected     = "rejected"
)

// DefaultSkipPaths are the unauthenticated health endpoints
var DefaultSkipPaths = []string{"/health", "/ready"}

// AuthGate authenticates every request before the handler runs.
// On success the principal is stored in the request context and gin keys;
// on any failure the request is aborted with 401 and the handler never runs.
func AuthGate(cfg AuthGateConfig) gin.HandlerFunc {
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = DefaultCookie
	}
	if cfg.SkipPaths == nil {
		cfg.SkipPaths = DefaultSkipPaths
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Meter == nil {
		cfg.Meter = noop.NewMeterProvider().Meter("auth")
	}
	failures, err := telemetry.NewCounter(cfg.Meter,
		"http_auth_failures_total",
		"Requests rejected by the authorization gate",
		"{request}")
	if err != nil {
		cfg.Logger.Warn("Auth failure counter unavailable", zap.Error(err))
	}
	reject := func(c *gin.Context, reason string, cause error) {
		if failures != nil {
			failures.Inc(c.Request.Context(), telemetry.AttrReason.String(reason))
		}
		abortUnauthenticated(c, cfg.Logger, cause)
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		token, err := extractCredential(c, cfg.SessionCookie)
		if err != nil {
			reject(c, authFailureNoCredential, err)
			return
		}

		authn, err := cfg.Authenticator.Authenticate(ctx, token)
		if err != nil {
			reject(c, authFailureRejected, err)
			return
		}

		principal := authn.Principal
		ctx = identity.WithPrincipal(ctx, principal)
		ctx = logger.WithUserID(ctx, principal.SubjectID())
		if principal.HasTenant() {
			ctx = logger.WithTenantID(ctx, principal.TenantID())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Set(PrincipalKey, principal)
		c.Set(SubjectKey, authn.Subject)
		c.Set(UserIDKey, principal.SubjectID())
		c.Set(TenantIDKey, principal.TenantID())

		c.Next()
	}
}

// extractCredential reads the bearer token, falling back to the session cookie.
// The Authorization header wins when both are present.
func extractCredential(c *gin.Context, cookieName string) (string, error) {
	if header := c.GetHeader(AuthHeaderKey); header != "" {
		if !strings.HasPrefix(header, BearerPrefix) {
			return "", errors.New("invalid authorization header format")
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			return "", errors.New("empty bearer token")
		}
		return token, nil
	}

	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", errors.New("missing credential")
}

func abortUnauthenticated(c *gin.Context, log *zap.Logger, cause error) {
	logger.WithLogger(c.Request.Context(), log).Warn("Authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
		zap.Error(cause))

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, unauthenticated))
}

// GetPrincipal returns the principal attached by AuthGate, or nil
func GetPrincipal(c *gin.Context) *identity.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*identity.Principal); ok {
			return p
		}
	}
	if p, ok := identity.PrincipalFromContext(c.Request.Context()); ok {
		return p
	}
	return nil
}

// GetSubject returns the verified credential attached by AuthGate, or nil
func GetSubject(c *gin.Context) *identity.VerifiedSubject {
	if v, ok := c.Get(SubjectKey); ok {
		if s, ok := v.(*identity.VerifiedSubject); ok {
			return s
		}
	}
	return nil
}
