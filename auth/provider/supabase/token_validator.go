package supabase

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/jost305/9jaagents/auth"
)

// TokenValidator validates provider issued access tokens. HS256
// projects verify against the shared JWT secret; RS256/ES256 projects
// fetch the project JWKS through keyfunc.
type TokenValidator struct {
	config  Config
	keyFunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
}

// NewTokenValidator creates a validator for the configured project.
func NewTokenValidator(cfg Config) (*TokenValidator, error) {
	v := &TokenValidator{config: cfg}

	if cfg.JWTSecret != "" {
		secret := []byte(cfg.JWTSecret)
		v.keyFunc = func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		}
		return v, nil
	}

	jwks, err := keyfunc.Get(cfg.jwksURL(), keyfunc.Options{
		RefreshInterval: time.Hour,
		RefreshErrorHandler: func(err error) {
			// keep serving cached keys; the next refresh may succeed
		},
	})
	if err != nil {
		return nil, fmt.Errorf("supabase: failed to load JWKS: %w", err)
	}

	v.jwks = jwks
	v.keyFunc = jwks.Keyfunc
	return v, nil
}

// Validate parses and verifies a raw access token, returning its
// structured claims.
func (v *TokenValidator) Validate(tokenString string) (*auth.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &auth.AccessClaims{}, v.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Wrap(err, errors.CategoryAuth, "access token expired").
				WithCode(errors.CodeUnauthorized).
				WithTextCode("TOKEN_EXPIRED")
		}
		return nil, errors.Wrap(err, errors.CategoryAuth, "access token malformed").
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_MALFORMED")
	}

	claims, ok := token.Claims.(*auth.AccessClaims)
	if !ok || !token.Valid {
		return nil, errors.New("unable to decode access token claims", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	return claims, nil
}

// PrincipalFromToken is a convenience that validates the token and
// builds the principal it describes.
func (v *TokenValidator) PrincipalFromToken(tokenString string) (*auth.Principal, error) {
	claims, err := v.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Principal()
}

// Close releases JWKS refresh resources.
func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
