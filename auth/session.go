package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the claim set carried by provider issued access
// tokens. The metadata bag mirrors the provider's user_metadata and is
// where the marketplace role lives.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	// AAL and provider role ("authenticated") are intentionally not
	// modeled; the marketplace role comes from the metadata bag only.
}

// Principal builds the principal the claims describe.
func (c *AccessClaims) Principal() (*Principal, error) {
	if c == nil {
		return nil, ErrPrincipalNotFound
	}

	if c.Subject == "" {
		return nil, ErrPrincipalNotFound
	}

	var created *time.Time
	if c.IssuedAt != nil {
		created = &c.IssuedAt.Time
	}

	return &Principal{
		ID:        c.Subject,
		Email:     c.Email,
		Metadata:  c.UserMetadata,
		CreatedAt: created,
	}, nil
}

// Expired reports whether the token's expiry has passed at the given
// instant.
func (c *AccessClaims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return now.After(c.ExpiresAt.Time)
}

func (s *Session) String() string {
	if s == nil {
		return "session=<nil>"
	}
	email := "<anonymous>"
	if s.User != nil {
		email = s.User.Email
	}
	expires := "<nil>"
	if s.ExpiresAt != nil {
		expires = s.ExpiresAt.Format(time.RFC1123)
	}
	return fmt.Sprintf("user=%s type=%s exp=%s", email, s.TokenType, expires)
}

// Expired reports whether the session's access token has passed its
// expiry at the given instant. Sessions with no recorded expiry are
// treated as live; the provider rejects their tokens server side.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return false
	}
	return now.After(*s.ExpiresAt)
}
