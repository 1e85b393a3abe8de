package auth

import (
	"github.com/goliatone/go-errors"
)

// ErrPrincipalNotFound is the error we return for non found principals
var ErrPrincipalNotFound = errors.New("principal not found", errors.CategoryAuth).
	WithTextCode("PRINCIPAL_NOT_FOUND").
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials covers wrong password and unknown email alike;
// the provider message is attached as metadata, never inspected.
var ErrInvalidCredentials = errors.New("invalid login credentials", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(errors.CodeUnauthorized)

// ErrRoleInsufficient is the guard's forbidden outcome. It is handled as
// a redirect, not surfaced to page error state.
var ErrRoleInsufficient = errors.New("role does not satisfy required level", errors.CategoryAuthz).
	WithTextCode("ROLE_INSUFFICIENT").
	WithCode(errors.CodeForbidden)

// ErrStoreClosed is returned when subscribing to a disposed session store
var ErrStoreClosed = errors.New("session store is closed", errors.CategoryOperation).
	WithTextCode("STORE_CLOSED")

// ErrProviderUnavailable wraps transport failures talking to the
// identity provider. Surfaced identically to credential errors.
var ErrProviderUnavailable = errors.New("identity provider unavailable", errors.CategoryInternal).
	WithTextCode("PROVIDER_UNAVAILABLE")

// NormalizeProviderError wraps a provider failure into the auth error
// taxonomy, keeping the provider's human readable message.
func NormalizeProviderError(err error, message string) error {
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}

	return errors.Wrap(err, errors.CategoryAuth, message).
		WithCode(errors.CodeUnauthorized)
}
