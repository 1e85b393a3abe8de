package auth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// Operations wraps the identity provider calls behind a uniform error
// convention: every operation returns a nil error on success and a
// rich error on failure, nothing else. Callers branch on the error
// category, never on the message.
//
// No operation mutates the SessionStore. All local state change is
// event driven from the provider, which is what keeps optimistic local
// state and provider confirmed state from ever disagreeing. Failed
// calls are reported once; no retry, no backoff.
type Operations struct {
	client        SessionClient
	logger        Logger
	resetRedirect string
}

// NewOperations builds the operation set bound to a provider client.
// resetRedirect is the URL the provider embeds in password reset mail.
func NewOperations(client SessionClient, cfg Config) *Operations {
	return &Operations{
		client:        client,
		logger:        defLogger{},
		resetRedirect: cfg.GetResetRedirectURL(),
	}
}

func (o *Operations) WithLogger(logger Logger) *Operations {
	if logger != nil {
		o.logger = logger
	}
	return o
}

// CredentialsPayload is the sign-in input.
type CredentialsPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (p CredentialsPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// SignUpPayload is the registration input. Attributes may carry a
// requested role; the provider stores it verbatim.
type SignUpPayload struct {
	Email      string           `form:"email" json:"email"`
	Password   string           `form:"password" json:"password"`
	Attributes SignUpAttributes `form:"-" json:"attributes,omitempty"`
}

// Validate will run validation rules
func (p SignUpPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
	)
}

// SignIn verifies credentials with the provider. On success the session
// store updates asynchronously via the provider event stream; do not
// read the store expecting the new principal when this returns.
func (o *Operations) SignIn(ctx context.Context, email, password string) error {
	payload := CredentialsPayload{Email: email, Password: password}
	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid sign in payload")
	}

	if _, err := o.client.SignInWithPassword(ctx, email, password); err != nil {
		o.logger.Error("sign in failed", "email", email, "error", err)
		return NormalizeProviderError(err, "failed to sign in")
	}

	return nil
}

// SignUp registers a new account. The provider sends the verification
// email as a side effect outside this flow's control.
func (o *Operations) SignUp(ctx context.Context, email, password string, attributes SignUpAttributes) error {
	payload := SignUpPayload{Email: email, Password: password, Attributes: attributes}
	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid sign up payload")
	}

	if _, err := o.client.SignUp(ctx, email, password, attributes); err != nil {
		o.logger.Error("sign up failed", "email", email, "error", err)
		return NormalizeProviderError(err, "failed to create account")
	}

	return nil
}

// SignOut destroys the provider session; the store empties via the
// SIGNED_OUT event.
func (o *Operations) SignOut(ctx context.Context) error {
	if err := o.client.SignOut(ctx); err != nil {
		o.logger.Error("sign out failed", "error", err)
		return NormalizeProviderError(err, "failed to sign out")
	}
	return nil
}

// ResetPassword asks the provider to send a reset email linking back to
// the configured redirect URL.
func (o *Operations) ResetPassword(ctx context.Context, email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid reset email")
	}

	if err := o.client.ResetPasswordForEmail(ctx, email, o.resetRedirect); err != nil {
		o.logger.Error("password reset failed", "email", email, "error", err)
		return NormalizeProviderError(err, "failed to send reset email")
	}

	return nil
}
