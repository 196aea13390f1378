package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultProviderTimeout bounds a single identity provider round trip
const DefaultProviderTimeout = 5 * time.Second

// Resolver maps a verified subject to an application principal
// using the role and tenant held in the provider profile.
type Resolver struct {
	profiles identity.ProfileFetcher
	timeout  time.Duration
	logger   *zap.Logger
}

// NewResolver creates a new Resolver
func NewResolver(profiles identity.ProfileFetcher, timeout time.Duration, log *zap.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		profiles: profiles,
		timeout:  timeout,
		logger:   log,
	}
}

// Resolve fetches the subject's profile and builds its principal.
// Exactly one provider call is made; any failure is ErrUnauthenticated.
func (r *Resolver) Resolve(ctx context.Context, subjectID string) (*identity.Principal, error) {
	if subjectID == "" {
		return nil, identity.Unauthenticated(errors.New("empty subject id"))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	profile, err := r.profiles.FetchProfile(fetchCtx, subjectID)
	if err != nil {
		return nil, identity.Unauthenticated(fmt.Errorf("fetch profile: %w", err))
	}
	if profile == nil {
		return nil, identity.Unauthenticated(errors.New("provider returned no profile"))
	}
	if profile.SubjectID != "" && profile.SubjectID != subjectID {
		return nil, identity.Unauthenticated(fmt.Errorf("profile subject %q does not match token subject", profile.SubjectID))
	}

	rawRole := profile.MetadataString(identity.MetadataRole)
	role, known := identity.ParseRole(rawRole)
	if !known {
		logger.WithLogger(ctx, r.logger).Warn("Unrecognized role in provider metadata, using default",
			zap.String("subject_id", subjectID),
			zap.String("role", rawRole),
			zap.String("default_role", role.String()))
	}

	principal, err := identity.NewPrincipal(subjectID, profile.PrimaryEmail(), role, profile.MetadataString(identity.MetadataTenantID))
	if err != nil {
		return nil, identity.Unauthenticated(err)
	}
	return principal, nil
}
