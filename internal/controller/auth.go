package controller

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hirepath/admin-console/internal/api"
	"github.com/hirepath/admin-console/internal/models"
	"github.com/hirepath/admin-console/internal/session"
	appErrors "github.com/hirepath/admin-console/pkg/errors"
)

// MsgNotAdmin is surfaced when a non-admin account authenticates successfully.
const MsgNotAdmin = "not authorized as admin"

// AuthAPI is the backend surface of the authentication flows.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Signup(ctx context.Context, firstName, lastName, email, password string) (*api.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, password string) error
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type signupForm struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=8"`
}

type emailForm struct {
	Email string `validate:"required,email"`
}

type verifyForm struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,len=6,numeric"`
}

type resetForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Confirm  string `validate:"required,eqfield=Password"`
}

// AuthController runs the login, signup and password recovery flows. Form
// input is validated locally before any request goes out; a successful login
// or signup persists the session.
type AuthController struct {
	api      AuthAPI
	session  session.Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAuthController builds the controller; nil validator and logger get
// defaults.
func NewAuthController(client AuthAPI, store session.Store, validate *validator.Validate, logger *zap.Logger) *AuthController {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthController{api: client, session: store, validate: validate, logger: logger}
}

func (c *AuthController) invalid(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
}

// Login authenticates and persists the session. Accounts without the admin
// role are rejected even when the credentials are valid.
func (c *AuthController) Login(ctx context.Context, email, password string) error {
	if err := c.validate.Struct(loginForm{Email: email, Password: password}); err != nil {
		return c.invalid(err)
	}
	result, err := c.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if result.User.Role != models.RoleAdmin {
		c.logger.Warn("non-admin login rejected", zap.String("email", email), zap.String("role", string(result.User.Role)))
		return appErrors.Clone(appErrors.ErrForbidden, MsgNotAdmin)
	}
	if err := c.session.SetCredentials(result.Token, result.User.ID, result.User.Name); err != nil {
		return err
	}
	c.logger.Info("admin logged in", zap.String("user_id", result.User.ID))
	return nil
}

// Signup registers a new admin account and persists the session.
func (c *AuthController) Signup(ctx context.Context, firstName, lastName, email, password string) error {
	form := signupForm{FirstName: firstName, LastName: lastName, Email: email, Password: password}
	if err := c.validate.Struct(form); err != nil {
		return c.invalid(err)
	}
	result, err := c.api.Signup(ctx, firstName, lastName, email, password)
	if err != nil {
		return err
	}
	if err := c.session.SetCredentials(result.Token, result.User.ID, result.User.Name); err != nil {
		return err
	}
	c.logger.Info("admin signed up", zap.String("user_id", result.User.ID))
	return nil
}

// ForgotPassword starts the recovery flow.
func (c *AuthController) ForgotPassword(ctx context.Context, email string) error {
	if err := c.validate.Struct(emailForm{Email: email}); err != nil {
		return c.invalid(err)
	}
	return c.api.ForgotPassword(ctx, email)
}

// VerifyResetCode checks the emailed 6-digit code.
func (c *AuthController) VerifyResetCode(ctx context.Context, email, code string) error {
	if err := c.validate.Struct(verifyForm{Email: email, Code: code}); err != nil {
		return c.invalid(err)
	}
	return c.api.VerifyResetCode(ctx, email, code)
}

// ResetPassword completes the recovery flow.
func (c *AuthController) ResetPassword(ctx context.Context, email, password, confirm string) error {
	if err := c.validate.Struct(resetForm{Email: email, Password: password, Confirm: confirm}); err != nil {
		return c.invalid(err)
	}
	return c.api.ResetPassword(ctx, email, password)
}

// Logout clears the persisted session.
func (c *AuthController) Logout() error {
	return c.session.Clear()
}

// LoggedIn reports whether a session token is present.
func (c *AuthController) LoggedIn() bool {
	return c.session.Token() != ""
}

var _ AuthAPI = (*api.Client)(nil)
