package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DefaultSessionTTL keeps re-authentication friction low without leaving a
// stolen credential usable for days.
const DefaultSessionTTL = 24 * time.Hour

// SessionIssuer exchanges verified identity tokens for session credentials.
type SessionIssuer struct {
	verifier IdentityTokenVerifier
	profiles Provisioner
	tokens   TokenService
	issuer   string
	audience []string
	ttl      time.Duration
	logger   Logger
}

var _ Issuer = (*SessionIssuer)(nil)

// Credential is the minted session credential plus the attributes the
// orchestrator needs to persist it (e.g. cookie expiry).
type Credential struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewIssuer returns a SessionIssuer minting credentials with the config's
// signing key, issuer, audience and expiration window.
func NewIssuer(verifier IdentityTokenVerifier, profiles Provisioner, opts Config) *SessionIssuer {
	ttl := DefaultSessionTTL
	if opts.GetTokenExpiration() > 0 {
		ttl = time.Duration(opts.GetTokenExpiration()) * time.Hour
	}

	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		ttl,
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &SessionIssuer{
		verifier: verifier,
		profiles: profiles,
		tokens:   tokenService,
		issuer:   opts.GetIssuer(),
		audience: opts.GetAudience(),
		ttl:      ttl,
		logger:   defLogger{},
	}
}

func (s *SessionIssuer) WithLogger(logger Logger) *SessionIssuer {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the credential codec, e.g. to share one
// instance with the validator.
func (s *SessionIssuer) WithTokenService(tokens TokenService) *SessionIssuer {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// IssueSession verifies the identity token, provisions the user profile and
// mints a session credential bound to the provider subject.
//
// The identity token is treated as a capability, not an identity: its claims
// are only read after VerifyIdentityToken succeeds. Provisioning is an
// idempotent upsert, safe on every login and not just registration.
func (s *SessionIssuer) IssueSession(ctx context.Context, token IdentityToken, hint ProfileHint) (*Credential, error) {
	claims, err := s.verifier.VerifyIdentityToken(token)
	if err != nil {
		s.logger.Error("IssueSession identity token rejected", "error", err)
		if IsTokenExpiredError(err) {
			return nil, err
		}
		if IsMalformedError(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	subject := claims.Subject()
	if subject == "" {
		s.logger.Error("IssueSession identity token has no subject")
		return nil, ErrTokenMalformed
	}

	if hint.Email == "" {
		hint.Email = claims.Email()
	}

	profile, err := s.profiles.EnsureProfile(ctx, subject, hint)
	if err != nil {
		s.logger.Error("IssueSession ensure profile failed", "subject", subject, "error", err)
		return nil, err
	}

	sessionClaims := s.newSessionClaims(subject)
	signed, err := s.tokens.SignClaims(sessionClaims)
	if err != nil {
		s.logger.Error("IssueSession sign claims failed", "subject", subject, "error", err)
		return nil, err
	}

	s.logger.Debug("IssueSession credential minted", "subject", subject, "profile", profile.ID, "sid", sessionClaims.SID)

	return &Credential{
		Token:     signed,
		UserID:    subject,
		SessionID: sessionClaims.SID,
		ExpiresAt: sessionClaims.Expires(),
	}, nil
}

func (s *SessionIssuer) newSessionClaims(subject string) *SessionClaims {
	now := time.Now()

	var aud jwt.ClaimStrings
	if len(s.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(s.audience))
		copy(aud, s.audience)
	}

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UID: subject,
	}

	ensureTokenID(&claims.RegisteredClaims)
	claims.SID = claims.RegisteredClaims.ID

	return claims
}
