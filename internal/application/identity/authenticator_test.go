package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockVerifier is a mock implementation of identity.Verifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*identity.VerifiedSubject, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.VerifiedSubject), args.Error(1)
}

// MockProfileFetcher is a mock implementation of identity.ProfileFetcher
type MockProfileFetcher struct {
	mock.Mock
}

func (m *MockProfileFetcher) FetchProfile(ctx context.Context, subjectID string) (*identity.Profile, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: make(map[string]time.Duration)}
}

func (f *fakeRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.revoked[tokenID] = ttl
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[tokenID]
	return ok, nil
}

func profileWith(subjectID string, metadata map[string]any) *identity.Profile {
	return &identity.Profile{
		SubjectID:      subjectID,
		EmailAddresses: []string{subjectID + "@example.com"},
		PublicMetadata: metadata,
	}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("role metadata becomes principal role", func(t *testing.T) {
		for _, role := range []identity.Role{identity.RoleAdmin, identity.RoleTenantOwner, identity.RoleUser} {
			fetcher := new(MockProfileFetcher)
			fetcher.On("FetchProfile", mock.Anything, "user_1").
				Return(profileWith("user_1", map[string]any{"role": string(role), "tenantId": "T1"}), nil).Once()

			p, err := NewResolver(fetcher, time.Second, zap.NewNop()).Resolve(ctx, "user_1")

			require.NoError(t, err)
			assert.Equal(t, role, p.Role())
			assert.Equal(t, "T1", p.TenantID())
			assert.Equal(t, "user_1@example.com", p.Email())
			fetcher.AssertExpectations(t)
		}
	})

	t.Run("absent role defaults to user", func(t *testing.T) {
		fetcher := new(MockProfileFetcher)
		fetcher.On("FetchProfile", mock.Anything, "user_2").
			Return(profileWith("user_2", map[string]any{"tenantId": "T9"}), nil)

		p, err := NewResolver(fetcher, time.Second, zap.NewNop()).Resolve(ctx, "user_2")

		require.NoError(t, err)
		assert.Equal(t, identity.RoleUser, p.Role())
		assert.Equal(t, "T9", p.TenantID())
	})

	t.Run("nil metadata defaults to user without tenant", func(t *testing.T) {
		fetcher := new(MockProfileFetcher)
		fetcher.On("FetchProfile", mock.Anything, "user_3").
			Return(&identity.Profile{SubjectID: "user_3"}, nil)

		p, err := NewResolver(fetcher, time.Second, zap.NewNop()).Resolve(ctx, "user_3")

		require.NoError(t, err)
		assert.Equal(t, identity.RoleUser, p.Role())
		assert.False(t, p.HasTenant())
		assert.Empty(t, p.Email())
	})

	t.Run("unknown role degrades to user with warning", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		fetcher := new(MockProfileFetcher)
		fetcher.On("FetchProfile", mock.Anything, "user_4").
			Return(profileWith("user_4", map[string]any{"role": "root"}), nil)

		p, err := NewResolver(fetcher, time.Second, zap.New(core)).Resolve(ctx, "user_4")

		require.NoError(t, err)
		assert.Equal(t, identity.RoleUser, p.Role())
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "root", logs.All()[0].ContextMap()["role"])
	})

	t.Run("provider failure is unauthenticated", func(t *testing.T) {
		fetcher := new(MockProfileFetcher)
		fetcher.On("FetchProfile", mock.Anything, "ghost").Return(nil, errors.New("404 not found"))

		_, err := NewResolver(fetcher, time.Second, zap.NewNop()).Resolve(ctx, "ghost")

		assert.ErrorIs(t, err, identity.ErrUnauthenticated)
		fetcher.AssertNumberOfCalls(t, "FetchProfile", 1)
	})

	t.Run("slow provider times out as unauthenticated", func(t *testing.T) {
		fetcher := new(MockProfileFetcher)
		fetcher.On("FetchProfile", mock.Anything, "slow").
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return(nil, context.DeadlineExceeded)

		start := time.Now()
		_, err := NewResolver(fetcher, 20*time.Millisecond, zap.NewNop()).Resolve(ctx, "slow")

		assert.ErrorIs(t, err, identity.ErrUnauthenticated)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("mismatched profile subject is rejected", func(t *testing.T) {
		fetcher := new(MockProfileFetcher)
		fetcher.On("FetchProfile", mock.Anything, "user_5").Return(profileWith("someone_else", nil), nil)

		_, err := NewResolver(fetcher, time.Second, zap.NewNop()).Resolve(ctx, "user_5")

		assert.ErrorIs(t, err, identity.ErrUnauthenticated)
	})

	t.Run("empty subject makes no provider call", func(t *testing.T) {
		fetcher := new(MockProfileFetcher)

		_, err := NewResolver(fetcher, time.Second, zap.NewNop()).Resolve(ctx, "")

		assert.ErrorIs(t, err, identity.ErrUnauthenticated)
		fetcher.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
	})
}

func TestAuthenticator_Authenticate(t *testing.T) {
	ctx := context.Background()
	subject := &identity.VerifiedSubject{
		SubjectID: "user_1",
		TokenID:   "jti-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	t.Run("verifies then resolves", func(t *testing.T) {
		verifier := new(MockVerifier)
		fetcher := new(MockProfileFetcher)
		verifier.On("Verify", mock.Anything, "good-token").Return(subject, nil)
		fetcher.On("FetchProfile", mock.Anything, "user_1").
			Return(profileWith("user_1", map[string]any{"role": "tenant_owner", "tenantId": "T1"}), nil)

		authn := NewAuthenticator(verifier, NewResolver(fetcher, time.Second, nil), nil)
		result, err := authn.Authenticate(ctx, "good-token")

		require.NoError(t, err)
		assert.Equal(t, "user_1", result.Principal.SubjectID())
		assert.Equal(t, identity.RoleTenantOwner, result.Principal.Role())
		assert.Same(t, subject, result.Subject)
		verifier.AssertExpectations(t)
		fetcher.AssertExpectations(t)
	})

	t.Run("expired token makes no profile call", func(t *testing.T) {
		verifier := new(MockVerifier)
		fetcher := new(MockProfileFetcher)
		verifier.On("Verify", mock.Anything, "expired-token").Return(nil, errors.New("token is expired"))

		authn := NewAuthenticator(verifier, NewResolver(fetcher, time.Second, nil), nil)
		_, err := authn.Authenticate(ctx, "expired-token")

		assert.ErrorIs(t, err, identity.ErrUnauthenticated)
		fetcher.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
	})

	t.Run("empty token makes no calls", func(t *testing.T) {
		verifier := new(MockVerifier)
		fetcher := new(MockProfileFetcher)

		authn := NewAuthenticator(verifier, NewResolver(fetcher, time.Second, nil), nil)
		_, err := authn.Authenticate(ctx, "")

		assert.ErrorIs(t, err, identity.ErrUnauthenticated)
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
		fetcher.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
	})

	t.Run("revoked token makes no profile call", func(t *testing.T) {
		verifier := new(MockVerifier)
		fetcher := new(MockProfileFetcher)
		verifier.On("Verify", mock.Anything, "revoked-token").Return(subject, nil)
		store := newFakeRevocations()
		require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))

		authn := NewAuthenticator(verifier, NewResolver(fetcher, time.Second, nil), nil, WithRevocations(store))
		_, err := authn.Authenticate(ctx, "revoked-token")

		assert.ErrorIs(t, err, identity.ErrUnauthenticated)
		fetcher.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
	})

	t.Run("revocation store failure fails open", func(t *testing.T) {
		verifier := new(MockVerifier)
		fetcher := new(MockProfileFetcher)
		verifier.On("Verify", mock.Anything, "good-token").Return(subject, nil)
		fetcher.On("FetchProfile", mock.Anything, "user_1").Return(profileWith("user_1", nil), nil)
		store := newFakeRevocations()
		store.err = errors.New("redis: connection refused")

		authn := NewAuthenticator(verifier, NewResolver(fetcher, time.Second, nil), nil, WithRevocations(store))
		result, err := authn.Authenticate(ctx, "good-token")

		require.NoError(t, err)
		assert.Equal(t, identity.RoleUser, result.Principal.Role())
	})

	t.Run("verifier returning no subject is rejected", func(t *testing.T) {
		verifier := new(MockVerifier)
		fetcher := new(MockProfileFetcher)
		verifier.On("Verify", mock.Anything, "odd-token").Return(&identity.VerifiedSubject{}, nil)

		authn := NewAuthenticator(verifier, NewResolver(fetcher, time.Second, nil), nil)
		_, err := authn.Authenticate(ctx, "odd-token")

		assert.ErrorIs(t, err, identity.ErrUnauthenticated)
		fetcher.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
	})

	t.Run("verify step carries a deadline", func(t *testing.T) {
		verifier := new(MockVerifier)
		fetcher := new(MockProfileFetcher)
		verifier.On("Verify", mock.MatchedBy(func(c context.Context) bool {
			_, ok := c.Deadline()
			return ok
		}), "good-token").Return(subject, nil)
		fetcher.On("FetchProfile", mock.Anything, "user_1").Return(profileWith("user_1", nil), nil)

		authn := NewAuthenticator(verifier, NewResolver(fetcher, time.Second, nil), nil, WithVerifyTimeout(time.Second))
		_, err := authn.Authenticate(ctx, "good-token")

		require.NoError(t, err)
		verifier.AssertExpectations(t)
	})
}

func TestAuthenticator_Logout(t *testing.T) {
	ctx := context.Background()
	verifier := new(MockVerifier)
	resolver := NewResolver(new(MockProfileFetcher), time.Second, nil)

	t.Run("revokes until expiry", func(t *testing.T) {
		store := newFakeRevocations()
		authn := NewAuthenticator(verifier, resolver, nil, WithRevocations(store))

		err := authn.Logout(ctx, &identity.VerifiedSubject{
			SubjectID: "user_1",
			TokenID:   "jti-9",
			ExpiresAt: time.Now().Add(30 * time.Minute),
		})

		require.NoError(t, err)
		ttl, ok := store.revoked["jti-9"]
		require.True(t, ok)
		assert.InDelta(t, (30 * time.Minute).Seconds(), ttl.Seconds(), 5)
	})

	t.Run("expired token is a no-op", func(t *testing.T) {
		store := newFakeRevocations()
		authn := NewAuthenticator(verifier, resolver, nil, WithRevocations(store))

		err := authn.Logout(ctx, &identity.VerifiedSubject{TokenID: "old", ExpiresAt: time.Now().Add(-time.Minute)})

		require.NoError(t, err)
		assert.Empty(t, store.revoked)
	})

	t.Run("token without id cannot be revoked", func(t *testing.T) {
		authn := NewAuthenticator(verifier, resolver, nil, WithRevocations(newFakeRevocations()))

		err := authn.Logout(ctx, &identity.VerifiedSubject{SubjectID: "user_1"})

		assert.Error(t, err)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		store := newFakeRevocations()
		store.err = errors.New("boom")
		authn := NewAuthenticator(verifier, resolver, nil, WithRevocations(store))

		err := authn.Logout(ctx, &identity.VerifiedSubject{TokenID: "t", ExpiresAt: time.Now().Add(time.Hour)})

		assert.ErrorContains(t, err, "boom")
	})

	t.Run("disabled revocation is reported", func(t *testing.T) {
		authn := NewAuthenticator(verifier, resolver, nil)

		err := authn.Logout(ctx, &identity.VerifiedSubject{TokenID: "t", ExpiresAt: time.Now().Add(time.Hour)})

		assert.Error(t, err)
	})
}
