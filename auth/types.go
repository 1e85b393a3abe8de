package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Principal is the authenticated identity record returned by the
// identity provider.
type Principal struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"user_metadata,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

// UUID parses the provider issued identifier.
func (p *Principal) UUID() (uuid.UUID, error) {
	if p == nil {
		return uuid.Nil, ErrPrincipalNotFound
	}
	return uuid.Parse(p.ID)
}

// Attribute returns a string value from the metadata bag.
func (p *Principal) Attribute(key string) (string, bool) {
	if p == nil || p.Metadata == nil {
		return "", false
	}
	raw, ok := p.Metadata[key]
	if !ok {
		return "", false
	}
	val, ok := raw.(string)
	return val, ok
}

// Session is the live association between the application and a
// Principal, backed by provider managed tokens.
type Session struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	ExpiresAt    *time.Time `json:"-"`
	User         *Principal `json:"user"`
}

// Principal returns the session's principal, nil for anonymous sessions.
func (s *Session) Principal() *Principal {
	if s == nil {
		return nil
	}
	return s.User
}

// EventType enumerates provider session-changed events.
type EventType string

const (
	EventInitialSession EventType = "INITIAL_SESSION"
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// SessionListener receives provider session-changed events in the order
// the provider emits them.
type SessionListener func(event EventType, session *Session)

// Subscription is the handle returned by SessionClient.OnSessionChange.
type Subscription interface {
	Unsubscribe()
}

// SignUpAttributes is the free-form attribute bag stored on the
// provider's user record at sign-up. It may include a requested role.
type SignUpAttributes map[string]any

// SessionClient is the contract the identity provider binding must
// satisfy. Every blocking call is provider bound; none of them retry,
// time out, or support cancellation beyond ctx.
type SessionClient interface {
	GetSession(ctx context.Context) (*Session, error)
	OnSessionChange(listener SessionListener) Subscription
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, attributes SignUpAttributes) (*Principal, error)
	SignOut(ctx context.Context) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
}

// Config holds auth options
type Config interface {
	GetLoginRoute() string
	GetUnauthorizedRoute() string
	GetLandingRoute() string
	GetResetRedirectURL() string
	GetSessionContextKey() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
