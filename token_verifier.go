package session

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// JWKSVerifier verifies identity tokens issued by a hosted provider using
// its published JWK set. Keys are cached and refreshed in the background so
// verification stays local after the first fetch.
type JWKSVerifier struct {
	jwks     *keyfunc.JWKS
	issuer   string
	audience []string
	logger   Logger
}

var _ IdentityTokenVerifier = (*JWKSVerifier)(nil)

// JWKSVerifierConfig configures a JWKSVerifier.
type JWKSVerifierConfig struct {
	// JWKSURL is the provider's JWK set endpoint.
	JWKSURL string

	// Issuer is the expected iss claim. Empty disables the check.
	Issuer string

	// Audience is the expected aud claim. Empty disables the check.
	Audience []string

	// RefreshInterval controls background key refresh. Zero uses one hour.
	RefreshInterval time.Duration

	Logger Logger
}

// NewJWKSVerifier fetches the provider's key set and returns a verifier.
func NewJWKSVerifier(cfg JWKSVerifierConfig) (*JWKSVerifier, error) {
	if cfg.JWKSURL == "" {
		return nil, errors.New("jwks url is required", errors.CategoryBadInput)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	refreshInterval := cfg.RefreshInterval
	if refreshInterval == 0 {
		refreshInterval = time.Hour
	}

	jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
		RefreshInterval: refreshInterval,
		RefreshErrorHandler: func(err error) {
			logger.Warn("jwks refresh failed", "error", err)
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to fetch JWK set")
	}

	return &JWKSVerifier{
		jwks:     jwks,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		logger:   logger,
	}, nil
}

// VerifyIdentityToken implements IdentityTokenVerifier.
func (v *JWKSVerifier) VerifyIdentityToken(raw IdentityToken) (IdentityClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if v.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(v.issuer))
	}
	if len(v.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(v.audience...))
	}

	token, err := jwt.ParseWithClaims(string(raw), &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			v.logger.Error("JWKSVerifier encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.jwks.Keyfunc(t)
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// Stop ends the background key refresh goroutine.
func (v *JWKSVerifier) Stop() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
