package session

import (
	"context"
	"time"
)

// SessionValidator gates protected operations. It checks signature, expiry,
// then revocation, short-circuiting on the first failure so the cheap
// structural checks run before any store lookup.
type SessionValidator struct {
	tokens      TokenService
	revocations RevocationStore
	logger      Logger
}

var _ Validator = (*SessionValidator)(nil)

// NewValidator returns a validator sharing the issuer's signing material via
// cfg. The revocation store may be nil when termination is handled upstream.
func NewValidator(revocations RevocationStore, opts Config) *SessionValidator {
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

	return &SessionValidator{
		tokens:      tokenService,
		revocations: revocations,
		logger:      defLogger{},
	}
}

func (v *SessionValidator) WithLogger(logger Logger) *SessionValidator {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// WithTokenService overrides the credential codec.
func (v *SessionValidator) WithTokenService(tokens TokenService) *SessionValidator {
	if tokens != nil {
		v.tokens = tokens
	}
	return v
}

// Validate resolves a raw credential into a Session or a rejection. It has
// no side effects and is safe to call on every request; the only external
// touch is a bounded revocation lookup.
func (v *SessionValidator) Validate(ctx context.Context, raw string) (Session, error) {
	claims, err := v.tokens.Validate(raw)
	if err != nil {
		if IsTokenExpiredError(err) {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionInvalid
	}

	if v.revocations != nil {
		revoked, err := v.revocations.IsRevoked(ctx, claims.SessionID())
		if err != nil {
			v.logger.Error("Validate revocation lookup failed", "sid", claims.SessionID(), "error", err)
			return nil, ErrSessionInvalid
		}
		if revoked {
			return nil, ErrSessionRevoked
		}
	}

	return sessionFromClaims(claims)
}

// IsAuthenticated is the boundary convenience used by access guards.
func (v *SessionValidator) IsAuthenticated(ctx context.Context, raw string) bool {
	if raw == "" {
		return false
	}
	_, err := v.Validate(ctx, raw)
	return err == nil
}
