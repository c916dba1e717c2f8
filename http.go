package session

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteAuthenticator owns the credential transport for HTTP orchestrators:
// it stores the credential in an HttpOnly cookie, gates protected routes,
// and remembers where an unauthenticated request was headed.
type RouteAuthenticator struct {
	validator        Validator
	terminator       Terminator
	cfg              Config
	cookieDuration   time.Duration
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
}

// NewHTTPAuthenticator returns a new RouteAuthenticator
func NewHTTPAuthenticator(validator Validator, terminator Terminator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := DefaultSessionTTL
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	a := &RouteAuthenticator{
		cfg:            cfg,
		validator:      validator,
		terminator:     terminator,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// SetSessionCookie persists a freshly minted credential. The cookie expiry
// matches the credential's own so the browser drops it when validation
// would start failing anyway.
func (a *RouteAuthenticator) SetSessionCookie(c router.Context, cred *Credential) {
	expires := cred.ExpiresAt
	if expires.IsZero() {
		expires = time.Now().Add(a.cookieDuration)
	}

	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    cred.Token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// SessionFromRequest reads and validates the credential cookie.
func (a *RouteAuthenticator) SessionFromRequest(c router.Context) (Session, error) {
	raw := c.Cookies(a.cfg.GetContextKey())
	if raw == "" {
		return nil, ErrSessionInvalid
	}
	return a.validator.Validate(c.Context(), raw)
}

// Logout terminates the server-side session and clears the client cookie.
// Both halves are idempotent; a stale cookie just gets cleared again.
func (a *RouteAuthenticator) Logout(c router.Context) {
	raw := c.Cookies(a.cfg.GetContextKey())
	if raw != "" {
		if err := a.terminator.Terminate(c.Context(), raw); err != nil {
			a.Logger.Error("Logout terminate error", "error", err)
		}
	}
	a.cookieDel(c, a.cfg.GetContextKey())
}

// Protected is the access guard: it validates the session cookie and either
// lets the request through with the session in Locals, or hands the failure
// to the auth error handler (default: remember the route, redirect to login).
func (a *RouteAuthenticator) Protected() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			sess, err := a.SessionFromRequest(c)
			if err != nil {
				return a.AuthErrorHandler(c, err)
			}

			c.Locals(a.cfg.GetContextKey(), sess)
			c.SetContext(WithContext(c.Context(), sess))

			return next(c)
		}
	}
}

func (a *RouteAuthenticator) GetRedirect(c router.Context, def ...string) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	r := c.Cookies(rejectedRoute)
	if r == "" {
		return def[0]
	}
	a.cookieDel(c, rejectedRoute)
	return r
}

func (a *RouteAuthenticator) GetRedirectOrDefault(c router.Context) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	refererHeader := string(c.Referer())

	r := c.Cookies(rejectedRoute, refererHeader)
	if r == "" {
		r = a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(c, rejectedRoute)
	return r
}

func (a *RouteAuthenticator) SetRedirect(c router.Context) {
	rejectedRoute := a.cfg.GetRejectedRouteKey()

	a.Logger.Info("Setting redirect cookie", "key", rejectedRoute, "path", c.OriginalURL())

	c.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error, redirecting to login",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	a.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect("/login", statusCode)
}
