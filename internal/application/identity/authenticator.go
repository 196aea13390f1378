package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// TokenRevocations tracks credentials revoked before their natural expiry
type TokenRevocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authentication is the outcome of a successful Authenticate call
type Authentication struct {
	Principal *identity.Principal
	Subject   *identity.VerifiedSubject
}

// Authenticator runs verification, the revocation check and resolution
// strictly in sequence. Nothing is cached between calls.
type Authenticator struct {
	verifier    identity.Verifier
	resolver    *Resolver
	revocations TokenRevocations
	timeout     time.Duration
	logger      *zap.Logger
}

// AuthenticatorOption configures an Authenticator
type AuthenticatorOption func(*Authenticator)

// WithRevocations enables the revocation check. A nil store disables it.
func WithRevocations(store TokenRevocations) AuthenticatorOption {
	return func(a *Authenticator) {
		a.revocations = store
	}
}

// WithVerifyTimeout bounds the verification step
func WithVerifyTimeout(timeout time.Duration) AuthenticatorOption {
	return func(a *Authenticator) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(verifier identity.Verifier, resolver *Resolver, log *zap.Logger, opts ...AuthenticatorOption) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Authenticator{
		verifier: verifier,
		resolver: resolver,
		timeout:  DefaultProviderTimeout,
		logger:   log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate turns a raw credential into a principal.
// Every failure is returned as ErrUnauthenticated wrapping the cause.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Authentication, error) {
	if token == "" {
		return nil, identity.Unauthenticated(errors.New("missing credential"))
	}

	subject, err := a.verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if a.revocations != nil && subject.TokenID != "" {
		revoked, err := a.revocations.IsRevoked(ctx, subject.TokenID)
		if err != nil {
			// Log but continue: the check fails open
			logger.WithLogger(ctx, a.logger).Error("Token revocation check failed",
				zap.String("subject_id", subject.SubjectID),
				zap.Error(err))
		} else if revoked {
			return nil, identity.Unauthenticated(errors.New("token has been revoked"))
		}
	}

	principal, err := a.resolver.Resolve(ctx, subject.SubjectID)
	if err != nil {
		return nil, err
	}

	return &Authentication{
		Principal: principal,
		Subject:   subject,
	}, nil
}

func (a *Authenticator) verify(ctx context.Context, token string) (*identity.VerifiedSubject, error) {
	verifyCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	subject, err := a.verifier.Verify(verifyCtx, token)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return nil, err
		}
		return nil, identity.Unauthenticated(fmt.Errorf("verify credential: %w", err))
	}
	if subject == nil || subject.SubjectID == "" {
		return nil, identity.Unauthenticated(errors.New("verified token has no subject"))
	}
	return subject, nil
}

// Logout revokes the credential described by subject until it expires
func (a *Authenticator) Logout(ctx context.Context, subject *identity.VerifiedSubject) error {
	if a.revocations == nil {
		return shared.NewDomainError("REVOCATION_UNAVAILABLE", "Token revocation is not enabled")
	}
	if subject == nil || subject.TokenID == "" {
		return shared.ErrInvalidInput.WithMessage("Token has no identifier and cannot be revoked")
	}

	ttl := time.Until(subject.ExpiresAt)
	if subject.ExpiresAt.IsZero() || ttl <= 0 {
		return nil
	}

	if err := a.revocations.Revoke(ctx, subject.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	logger.WithLogger(ctx, a.logger).Info("Token revoked",
		zap.String("subject_id", subject.SubjectID),
		zap.Duration("ttl", ttl))
	return nil
}
