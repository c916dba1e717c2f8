package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// RegisterAccountMessage carries a registration request. OnResponse, when
// set, receives the issued credential so callers can establish the session
// without a second round trip.
type RegisterAccountMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	OnResponse func(*RegisterAccountResponse)
}

func (e RegisterAccountMessage) Type() string { return "session.register_account" }

// RegisterAccountResponse is the outcome of a successful registration.
type RegisterAccountResponse struct {
	Credential *Credential `json:"credential"`
}

// RegisterAccountHandler provisions an account with the identity provider
// and immediately exchanges the resulting identity token for a session.
type RegisterAccountHandler struct {
	provider IdentityProvider
	issuer   Issuer
}

func NewRegisterAccountHandler(provider IdentityProvider, issuer Issuer) *RegisterAccountHandler {
	return &RegisterAccountHandler{provider: provider, issuer: issuer}
}

func (h RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	token, err := h.provider.CreateAccount(ctx, event.Email, event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account creation failed")
	}

	cred, err := h.issuer.IssueSession(ctx, token, ProfileHint{
		Name:  event.Name,
		Email: event.Email,
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "session issuance failed after registration")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterAccountResponse{Credential: cred})
	}

	return nil
}
