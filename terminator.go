package session

import (
	"context"
)

// SessionTerminator revokes credentials ahead of their natural expiry.
type SessionTerminator struct {
	tokens      TokenService
	revocations RevocationStore
	logger      Logger
}

var _ Terminator = (*SessionTerminator)(nil)

// NewTerminator returns a terminator writing to the same revocation store
// the validator reads from.
func NewTerminator(tokens TokenService, revocations RevocationStore) *SessionTerminator {
	return &SessionTerminator{
		tokens:      tokens,
		revocations: revocations,
		logger:      defLogger{},
	}
}

func (t *SessionTerminator) WithLogger(logger Logger) *SessionTerminator {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// Terminate revokes the credential's session id until the credential would
// have expired on its own. Revocation only touches this session; other
// concurrent sessions for the same user stay valid.
//
// Terminating an expired, malformed or unknown credential is an idempotent
// success: the caller is clearing state, not probing validity.
func (t *SessionTerminator) Terminate(ctx context.Context, raw string) error {
	claims, err := t.tokens.Validate(raw)
	if err != nil {
		t.logger.Debug("Terminate on already-invalid credential", "error", err)
		return nil
	}

	if err := t.revocations.Revoke(ctx, claims.SessionID(), claims.Expires()); err != nil {
		t.logger.Error("Terminate revoke failed", "sid", claims.SessionID(), "error", err)
		return err
	}

	return nil
}
