package session

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RegisterSessionRoutes mounts the login, registration and logout intents.
func RegisterSessionRoutes[T any](app router.Router[T], opts ...ControllerOption) {

	controller := NewController(opts...)

	app.
		Get(controller.Routes.Login, controller.LoginShow).
		SetName("sign-in.get")

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")
}

type ControllerRoutes struct {
	Login    string
	Logout   string
	Register string
}

type ControllerViews struct {
	Login    string
	Register string
}

type Controller struct {
	Debug        bool
	Logger       Logger
	Provider     IdentityProvider
	Issuer       Issuer
	Auther       *RouteAuthenticator
	Routes       *ControllerRoutes
	Views        *ControllerViews
	ErrorHandler router.ErrorHandler
}

type ControllerOption func(*Controller) *Controller

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &ControllerRoutes{
			Login:    "/login",
			Logout:   "/logout",
			Register: "/register",
		},
		Views: &ControllerViews{
			Login:    "login",
			Register: "register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Provider == nil {
		panic("Missing IdentityProvider in session controller...")
	}

	if c.Issuer == nil {
		panic("Missing Issuer in session controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in session controller...")
	}

	return c
}

func WithProvider(provider IdentityProvider) ControllerOption {
	return func(c *Controller) *Controller {
		c.Provider = provider
		return c
	}
}

func WithIssuer(issuer Issuer) ControllerOption {
	return func(c *Controller) *Controller {
		c.Issuer = issuer
		return c
	}
}

func WithAuthenticator(auther *RouteAuthenticator) ControllerOption {
	return func(c *Controller) *Controller {
		c.Auther = auther
		return c
	}
}

func (a *Controller) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginPost is the login intent: verify credentials with the provider, then
// exchange the identity token for a session credential. Every failure branch
// produces a typed error and user feedback; none are swallowed.
func (a *Controller) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= SESSION LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	token, err := a.Provider.VerifyCredentials(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("login verify credentials", "error", err)
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors":  map[string]string{"authentication": MessageForError(err)},
			"payload": payload,
		})
	}

	cred, err := a.Issuer.IssueSession(ctx.Context(), token, ProfileHint{Email: payload.Email})
	if err != nil {
		a.Logger.Error("login issue session", "error", err)
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors":  map[string]string{"authentication": MessageForError(err)},
			"payload": payload,
		})
	}

	a.Auther.SetSessionCookie(ctx, cred)

	redirect := a.Auther.GetRedirect(ctx, "/")

	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *Controller) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.Redirect("/", router.StatusTemporaryRedirect)
}

func (a *Controller) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": RegistrationCreatePayload{},
	})
}

// RegistrationCreatePayload is the form payload
type RegistrationCreatePayload struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// RegistrationCreate is the registration intent: create the provider account
// and immediately establish a session, so a new user lands signed in.
func (a *Controller) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	var res *RegisterAccountResponse

	req := RegisterAccountMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(resp *RegisterAccountResponse) {
			res = resp
		},
	}

	registerAccount := RegisterAccountHandler{provider: a.Provider, issuer: a.Issuer}
	if err := registerAccount.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register account error", "error", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  MessageForError(err),
			"system_message": "Error registering account",
		}).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": map[string]string{"registration": MessageForError(err)},
		})
	}

	if a.Debug {
		fmt.Println("======= SESSION REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(res))
		fmt.Println("===============================")
	}

	a.Auther.SetSessionCookie(ctx, res.Credential)

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Account created",
	}).Redirect("/", fiber.StatusSeeOther)
}

// MessageForError maps taxonomy errors to the short actionable message a
// view can show. Raw provider text never reaches the user.
func MessageForError(err error) string {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return "Something went wrong. Please try again."
	}

	switch richErr.TextCode {
	case TextCodeInvalidCreds:
		return "Invalid email or password."
	case TextCodeEmailInUse:
		return "Email already in use. Try signing in instead."
	case TextCodeWeakCredential:
		return "Please choose a stronger password."
	case TextCodeIncompleteProfile:
		return "Please provide your name to finish signing up."
	case TextCodeTokenExpired, TextCodeTokenMalformed:
		return "Your sign-in expired. Please try again."
	case TextCodeProviderTimeout, TextCodeProviderUnavailable, TextCodeProviderFailure:
		return "We could not reach the sign-in service. Please try again shortly."
	default:
		return "Something went wrong. Please try again."
	}
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return goerrors.New("values must match", goerrors.CategoryValidation)
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field -> message map for view rendering.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["form"] = err.Error()
	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
