package identity

import (
	"strings"

	"github.com/shopdesk/backend/internal/domain/shared"
)

// Role is the tenant-scoped role carried by a principal
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleTenantOwner Role = "tenant_owner"
	RoleUser        Role = "user"
)

// DefaultRole is assigned when the provider profile carries no role
const DefaultRole = RoleUser

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTenantOwner, RoleUser:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a metadata value into a Role.
// The second return value is false when the value is present but not a known role.
func ParseRole(value string) (Role, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultRole, true
	}
	role := Role(strings.ToLower(value))
	if !role.IsValid() {
		return DefaultRole, false
	}
	return role, true
}

// Principal is the authenticated identity attached to a single request.
// It is immutable once built and is never persisted.
type Principal struct {
	subjectID string
	email     string
	role      Role
	tenantID  string
}

// NewPrincipal creates a principal for a verified subject
func NewPrincipal(subjectID, email string, role Role, tenantID string) (*Principal, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role is not valid")
	}
	return &Principal{
		subjectID: subjectID,
		email:     strings.TrimSpace(email),
		role:      role,
		tenantID:  strings.TrimSpace(tenantID),
	}, nil
}

// SubjectID returns the provider-issued subject identifier
func (p *Principal) SubjectID() string {
	return p.subjectID
}

// Email returns the primary email address, empty when unknown
func (p *Principal) Email() string {
	return p.email
}

// Role returns the principal's role
func (p *Principal) Role() Role {
	return p.role
}

// TenantID returns the tenant affiliation, empty when absent
func (p *Principal) TenantID() string {
	return p.tenantID
}

// HasTenant returns true if the principal belongs to a tenant
func (p *Principal) HasTenant() bool {
	return p.tenantID != ""
}

// IsAdmin returns true for platform administrators
func (p *Principal) IsAdmin() bool {
	return p.role == RoleAdmin
}

// HasAnyRole returns true if the principal holds one of roles
func (p *Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.role == r {
			return true
		}
	}
	return false
}
