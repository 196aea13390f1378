package identity

import (
	"context"
	"time"
)

// VerifiedSubject is the result of a successful credential verification
type VerifiedSubject struct {
	SubjectID string
	TokenID   string
	SessionID string
	ExpiresAt time.Time
}

// Profile is the provider-held record for a subject
type Profile struct {
	SubjectID      string
	EmailAddresses []string
	PublicMetadata map[string]any
}

// PrimaryEmail returns the first email address, or empty
func (p *Profile) PrimaryEmail() string {
	if len(p.EmailAddresses) == 0 {
		return ""
	}
	return p.EmailAddresses[0]
}

// MetadataString returns a string metadata value, or empty when absent or not a string
func (p *Profile) MetadataString(key string) string {
	if p.PublicMetadata == nil {
		return ""
	}
	v, ok := p.PublicMetadata[key].(string)
	if !ok {
		return ""
	}
	return v
}

// Metadata keys read from the provider profile
const (
	MetadataRole     = "role"
	MetadataTenantID = "tenantId"
)

// Verifier validates a raw credential against the provider's key material
type Verifier interface {
	Verify(ctx context.Context, token string) (*VerifiedSubject, error)
}

// ProfileFetcher loads a subject's profile from the provider
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, subjectID string) (*Profile, error)
}

// Provider is the external identity provider capability
type Provider interface {
	Verifier
	ProfileFetcher
}
