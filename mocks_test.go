package session_test

import (
	"context"
	"time"

	"github.com/goliatone/go-session"
	"github.com/stretchr/testify/mock"
)

// MockIdentityProvider implements session.IdentityProvider for testing
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyCredentials(ctx context.Context, email, password string) (session.IdentityToken, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(session.IdentityToken), args.Error(1)
}

func (m *MockIdentityProvider) CreateAccount(ctx context.Context, email, password string) (session.IdentityToken, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(session.IdentityToken), args.Error(1)
}

// MockProvisioner implements session.Provisioner for testing
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) EnsureProfile(ctx context.Context, subject string, hint session.ProfileHint) (*session.UserProfile, error) {
	args := m.Called(ctx, subject, hint)
	var profile *session.UserProfile
	if v := args.Get(0); v != nil {
		profile = v.(*session.UserProfile)
	}
	return profile, args.Error(1)
}

// MockRevocationStore implements session.RevocationStore for testing
type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	args := m.Called(ctx, sessionID, until)
	return args.Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

// stubClaims is a hand-rolled session.IdentityClaims
type stubClaims struct {
	subject  string
	email    string
	expires  time.Time
	issuedAt time.Time
}

func (c stubClaims) Subject() string     { return c.subject }
func (c stubClaims) Email() string       { return c.email }
func (c stubClaims) Expires() time.Time  { return c.expires }
func (c stubClaims) IssuedAt() time.Time { return c.issuedAt }

func staticVerifier(claims session.IdentityClaims, err error) session.IdentityTokenVerifier {
	return session.IdentityTokenVerifierFunc(func(raw session.IdentityToken) (session.IdentityClaims, error) {
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}

func testConfig() session.SimpleConfig {
	return session.SimpleConfig{
		SigningKey:      "test-signing-key",
		TokenExpiration: 24,
		Issuer:          "test-issuer",
		Audience:        []string{"test-audience"},
	}
}
