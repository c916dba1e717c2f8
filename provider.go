package session

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// DefaultProviderTimeout bounds every call into an identity provider so a
// slow provider cannot hang the caller.
const DefaultProviderTimeout = 5 * time.Second

const providerRetryBackoff = 250 * time.Millisecond

// BoundedProvider wraps an IdentityProvider with a per-call deadline. A call
// that exceeds it fails with the timeout sentinel instead of hanging; the
// timeout is retried once after a short backoff, nothing else is ever
// retried (auth failures are not transient).
type BoundedProvider struct {
	provider IdentityProvider
	name     string
	timeout  time.Duration
	logger   Logger
}

var _ IdentityProvider = (*BoundedProvider)(nil)

// NewBoundedProvider wraps provider. Zero timeout uses DefaultProviderTimeout.
func NewBoundedProvider(name string, provider IdentityProvider, timeout time.Duration) *BoundedProvider {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &BoundedProvider{
		provider: provider,
		name:     name,
		timeout:  timeout,
		logger:   defLogger{},
	}
}

func (b *BoundedProvider) WithLogger(logger Logger) *BoundedProvider {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// VerifyCredentials implements IdentityProvider.
func (b *BoundedProvider) VerifyCredentials(ctx context.Context, email, password string) (IdentityToken, error) {
	return b.call(ctx, "verify_credentials", func(ctx context.Context) (IdentityToken, error) {
		return b.provider.VerifyCredentials(ctx, email, password)
	})
}

// CreateAccount implements IdentityProvider.
func (b *BoundedProvider) CreateAccount(ctx context.Context, email, password string) (IdentityToken, error) {
	return b.call(ctx, "create_account", func(ctx context.Context) (IdentityToken, error) {
		return b.provider.CreateAccount(ctx, email, password)
	})
}

func (b *BoundedProvider) call(ctx context.Context, operation string, fn func(ctx context.Context) (IdentityToken, error)) (IdentityToken, error) {
	token, err := b.callOnce(ctx, fn)
	if err == nil {
		return token, nil
	}

	if !hasTextCode(err, TextCodeProviderTimeout) {
		return "", err
	}

	b.logger.Warn("provider call timed out, retrying once", "provider", b.name, "operation", operation)

	select {
	case <-ctx.Done():
		return "", wrapProviderError(ErrProviderTimeout, b.name, operation, ctx.Err())
	case <-time.After(providerRetryBackoff):
	}

	token, err = b.callOnce(ctx, fn)
	if err != nil {
		b.logger.Error("provider call failed", "provider", b.name, "operation", operation, "error", err)
	}
	return token, err
}

func (b *BoundedProvider) callOnce(ctx context.Context, fn func(ctx context.Context) (IdentityToken, error)) (IdentityToken, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	token, err := fn(callCtx)
	if err == nil {
		return token, nil
	}

	if callCtx.Err() == context.DeadlineExceeded {
		return "", wrapProviderError(ErrProviderTimeout, b.name, "", err)
	}

	// Anything the adapter did not map into the taxonomy stays behind the
	// coarse provider-failure kind; raw detail never crosses this boundary.
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return "", wrapProviderError(ErrProviderFailure, b.name, "", err)
	}

	return "", err
}
