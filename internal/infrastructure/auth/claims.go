package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Verification failure reasons. They are wrapped inside
// identity.ErrUnauthenticated and only ever reach the logs.
var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrExpiredToken         = errors.New("token has expired")
	ErrTokenNotYetValid     = errors.New("token is not yet valid")
	ErrMissingSubject       = errors.New("missing sub claim")
	ErrUnauthorizedParty    = errors.New("authorized party not allowed")
	ErrVerifierMisconfigure = errors.New("verifier is not configured")
)

// sessionClaims are the non-registered claims read from provider session tokens
type sessionClaims struct {
	AuthorizedParty string `json:"azp,omitempty"`
	SessionID       string `json:"sid,omitempty"`
	TokenID         string `json:"jti,omitempty"`
}

// partyAllowList checks the azp claim against configured origins.
// An empty list disables the check.
type partyAllowList map[string]struct{}

func newPartyAllowList(parties []string) partyAllowList {
	list := make(partyAllowList, len(parties))
	for _, p := range parties {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			list[p] = struct{}{}
		}
	}
	return list
}

func (l partyAllowList) check(azp string) error {
	if len(l) == 0 {
		return nil
	}
	if _, ok := l[strings.TrimRight(azp, "/")]; !ok {
		return fmt.Errorf("%w: %q", ErrUnauthorizedParty, azp)
	}
	return nil
}
