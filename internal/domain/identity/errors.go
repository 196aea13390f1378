package identity

import "github.com/shopdesk/backend/internal/domain/shared"

// ErrUnauthenticated is returned for every credential or provider failure.
// The underlying reason is attached as the cause and must not reach the client.
var ErrUnauthenticated = shared.NewDomainError("UNAUTHENTICATED", "Authentication required")

// Unauthenticated wraps cause as an ErrUnauthenticated
func Unauthenticated(cause error) error {
	return ErrUnauthenticated.WithCause(cause)
}
