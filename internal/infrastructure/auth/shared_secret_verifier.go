package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
)

// SharedSecretClaims is the HS256 session token layout
type SharedSecretClaims struct {
	jwt.RegisteredClaims
	AuthorizedParty string `json:"azp,omitempty"`
	SessionID       string `json:"sid,omitempty"`
}

// SharedSecretVerifier verifies HS256 session tokens.
// It is meant for development and tests where no provider JWKS is reachable.
type SharedSecretVerifier struct {
	secret  []byte
	issuer  string
	parties partyAllowList
	leeway  time.Duration
}

// NewSharedSecretVerifier creates a new SharedSecretVerifier
func NewSharedSecretVerifier(secret, issuer string, authorizedParties []string) (*SharedSecretVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: jwt secret is required", ErrVerifierMisconfigure)
	}
	return &SharedSecretVerifier{
		secret:  []byte(secret),
		issuer:  issuer,
		parties: newPartyAllowList(authorizedParties),
		leeway:  5 * time.Second,
	}, nil
}

// Verify validates signature, expiry, issuer and authorized party
func (v *SharedSecretVerifier) Verify(_ context.Context, token string) (*identity.VerifiedSubject, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &SharedSecretClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, identity.Unauthenticated(ErrExpiredToken)
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, identity.Unauthenticated(ErrTokenNotYetValid)
		default:
			return nil, identity.Unauthenticated(fmt.Errorf("%w: %v", ErrInvalidToken, err))
		}
	}

	claims, ok := parsed.Claims.(*SharedSecretClaims)
	if !ok || !parsed.Valid {
		return nil, identity.Unauthenticated(ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, identity.Unauthenticated(ErrMissingSubject)
	}
	if err := v.parties.check(claims.AuthorizedParty); err != nil {
		return nil, identity.Unauthenticated(err)
	}

	subject := &identity.VerifiedSubject{
		SubjectID: claims.Subject,
		TokenID:   claims.ID,
		SessionID: claims.SessionID,
	}
	if claims.ExpiresAt != nil {
		subject.ExpiresAt = claims.ExpiresAt.Time
	}
	return subject, nil
}

// IssueTokenInput describes a session token to mint
type IssueTokenInput struct {
	SubjectID       string
	AuthorizedParty string
	SessionID       string
	TTL             time.Duration
}

// Issue mints a token this verifier accepts
func (v *SharedSecretVerifier) Issue(in IssueTokenInput) (string, error) {
	now := time.Now()
	ttl := in.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	claims := &SharedSecretClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    v.issuer,
			Subject:   in.SubjectID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		AuthorizedParty: in.AuthorizedParty,
		SessionID:       in.SessionID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

var _ identity.Verifier = (*SharedSecretVerifier)(nil)
