package session

import (
	"context"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds        = "session_invalid_credentials"
	TextCodeEmailInUse          = "session_email_in_use"
	TextCodeWeakCredential      = "session_weak_credential"
	TextCodeTokenExpired        = "session_token_expired"
	TextCodeTokenMalformed      = "session_token_malformed"
	TextCodeIncompleteProfile   = "session_incomplete_profile"
	TextCodeSessionInvalid      = "session_invalid"
	TextCodeSessionExpired      = "session_expired"
	TextCodeSessionRevoked      = "session_revoked"
	TextCodeProviderTimeout     = "session_provider_timeout"
	TextCodeProviderUnavailable = "session_provider_unavailable"
	TextCodeProviderFailure     = "session_provider_failure"
)

// ErrInvalidCredentials is returned when the provider rejects an email or
// password during sign in.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrEmailAlreadyInUse is returned when an account already exists for the email.
var ErrEmailAlreadyInUse = errors.New("an account with this email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeEmailInUse).
	WithCode(errors.CodeConflict)

// ErrWeakCredential is returned when the provider rejects a password as too weak.
var ErrWeakCredential = errors.New("the password does not meet the minimum requirements", errors.CategoryValidation).
	WithTextCode(TextCodeWeakCredential).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned for identity or session tokens past their expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail structural or signature checks.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrIncompleteProfile is returned when a profile must be created but the
// hint is missing required fields.
var ErrIncompleteProfile = errors.New("profile name is required on first sign up", errors.CategoryValidation).
	WithTextCode(TextCodeIncompleteProfile).
	WithCode(errors.CodeBadRequest)

// ErrSessionInvalid is the generic validation rejection. Validation failures
// never surface provider or crypto detail beyond this.
var ErrSessionInvalid = errors.New("session is not valid", errors.CategoryAuth).
	WithTextCode(TextCodeSessionInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrSessionExpired is returned when the credential is past its expiry.
var ErrSessionExpired = errors.New("session has expired", errors.CategoryAuth).
	WithTextCode(TextCodeSessionExpired).
	WithCode(errors.CodeUnauthorized)

// ErrSessionRevoked is returned when the credential was terminated before
// its natural expiry.
var ErrSessionRevoked = errors.New("session has been terminated", errors.CategoryAuth).
	WithTextCode(TextCodeSessionRevoked).
	WithCode(errors.CodeUnauthorized)

// ErrProviderTimeout is returned when a provider call exceeds its deadline.
var ErrProviderTimeout = errors.New("identity provider timed out", errors.CategoryOperation).
	WithTextCode(TextCodeProviderTimeout).
	WithCode(errors.CodeInternal)

// ErrProviderUnavailable is returned when the provider cannot be reached.
var ErrProviderUnavailable = errors.New("identity provider unavailable", errors.CategoryInternal).
	WithTextCode(TextCodeProviderUnavailable).
	WithCode(errors.CodeInternal)

// ErrProviderFailure is the fallback for provider failures the boundary does
// not recognize. Raw provider detail stays in metadata, never in the message.
var ErrProviderFailure = errors.New("identity provider error", errors.CategoryInternal).
	WithTextCode(TextCodeProviderFailure).
	WithCode(errors.CodeInternal)

// IsSessionInvalid reports whether err is one of the session validation
// rejections. Orchestrators turn these into a redirect, not an error page.
func IsSessionInvalid(err error) bool {
	return hasTextCode(err, TextCodeSessionInvalid) ||
		hasTextCode(err, TextCodeSessionExpired) ||
		hasTextCode(err, TextCodeSessionRevoked)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedError will check for malformed tokens
func IsMalformedError(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

// wrapProviderError clones a taxonomy sentinel and attaches the raw provider
// failure as source plus coarse metadata. Context deadline errors collapse
// into the timeout sentinel regardless of base.
func wrapProviderError(base *errors.Error, provider, operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		base = ErrProviderTimeout
	}

	clone := base.Clone()
	if clone == nil {
		return base
	}

	if err != nil {
		clone.Source = err
	}

	meta := map[string]any{}
	if provider != "" {
		meta["provider"] = provider
	}
	if operation != "" {
		meta["operation"] = operation
	}
	if err != nil {
		meta["cause"] = err.Error()
	}

	return clone.WithMetadata(meta)
}
