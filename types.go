package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// IdentityToken is the opaque, short-lived proof minted by an identity
// provider. It is consumed once, during session issuance, and never stored.
type IdentityToken string

// IdentityClaims is what the issuer learns from an identity token after
// verifying it. The issuer never trusts unverified token content.
type IdentityClaims interface {
	Subject() string
	Email() string
	Expires() time.Time
	IssuedAt() time.Time
}

// IdentityProvider is the external credential verifier. Implementations map
// provider-specific failures into the closed error taxonomy in errors.go.
type IdentityProvider interface {
	VerifyCredentials(ctx context.Context, email, password string) (IdentityToken, error)
	CreateAccount(ctx context.Context, email, password string) (IdentityToken, error)
}

// IdentityTokenVerifier verifies identity tokens on the issuer side.
type IdentityTokenVerifier interface {
	VerifyIdentityToken(raw IdentityToken) (IdentityClaims, error)
}

// IdentityTokenVerifierFunc adapts a function into an IdentityTokenVerifier.
type IdentityTokenVerifierFunc func(raw IdentityToken) (IdentityClaims, error)

// VerifyIdentityToken satisfies the IdentityTokenVerifier interface.
func (f IdentityTokenVerifierFunc) VerifyIdentityToken(raw IdentityToken) (IdentityClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(raw)
}

// ProfileHint carries optional profile attributes from the orchestrator to
// the provisioner. Hints are only applied on first creation; existing
// profiles are never overwritten by later hints.
type ProfileHint struct {
	Name  string
	Email string
}

// Session holds the authenticated view extracted from a valid credential.
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetSessionID() string
	GetIssuer() string
	GetAudience() []string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

// Issuer exchanges a verified identity token for a session credential.
type Issuer interface {
	IssueSession(ctx context.Context, token IdentityToken, hint ProfileHint) (*Credential, error)
}

// Validator decides whether a stored credential still identifies a session.
type Validator interface {
	Validate(ctx context.Context, raw string) (Session, error)
	IsAuthenticated(ctx context.Context, raw string) bool
}

// Terminator revokes a session credential ahead of its natural expiry.
type Terminator interface {
	Terminate(ctx context.Context, raw string) error
}

// Provisioner creates the durable user profile on first authentication.
type Provisioner interface {
	EnsureProfile(ctx context.Context, subject string, hint ProfileHint) (*UserProfile, error)
}

// Config holds session options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

// SimpleConfig is a plain-struct Config for wiring and tests.
type SimpleConfig struct {
	SigningKey           string
	TokenExpiration      int
	Issuer               string
	Audience             []string
	ContextKey           string
	RejectedRouteKey     string
	RejectedRouteDefault string
}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetTokenExpiration() int { return c.TokenExpiration }

func (c SimpleConfig) GetIssuer() string { return c.Issuer }

func (c SimpleConfig) GetAudience() []string { return c.Audience }
func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "session"
	}
	return c.ContextKey
}

func (c SimpleConfig) GetRejectedRouteKey() string {
	if c.RejectedRouteKey == "" {
		return "rejected_route"
	}
	return c.RejectedRouteKey
}

func (c SimpleConfig) GetRejectedRouteDefault() string {
	if c.RejectedRouteDefault == "" {
		return "/"
	}
	return c.RejectedRouteDefault
}

var _ Config = SimpleConfig{}

// NewDefaultLogger returns the stdout fallback logger.
func NewDefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
