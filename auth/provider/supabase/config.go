package supabase

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config holds the hosted auth service configuration.
type Config struct {
	// ProjectURL is the project base URL (e.g. "https://xyz.supabase.co").
	ProjectURL string

	// AnonKey is the publishable API key sent with every request.
	AnonKey string

	// JWTSecret validates HS256 access tokens (optional when JWKSURL
	// is set).
	JWTSecret string

	// JWKSURL overrides the default JWKS endpoint for RS256 projects
	// (optional).
	JWKSURL string

	// AutoRefresh keeps the session alive by exchanging the refresh
	// token shortly before expiry.
	AutoRefresh bool

	// RefreshLeeway is how long before expiry a refresh is attempted.
	// Default: 60 seconds.
	RefreshLeeway time.Duration

	// HTTPClient overrides the transport (optional). The client's own
	// timeout is the only timeout this binding enforces.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(projectURL, anonKey string) Config {
	return Config{
		ProjectURL:    projectURL,
		AnonKey:       anonKey,
		AutoRefresh:   true,
		RefreshLeeway: 60 * time.Second,
	}
}

func (c Config) authURL() string {
	return fmt.Sprintf("%s/auth/v1", strings.TrimSuffix(strings.TrimSpace(c.ProjectURL), "/"))
}

func (c Config) jwksURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return c.authURL() + "/.well-known/jwks.json"
}

func (c Config) refreshLeeway() time.Duration {
	if c.RefreshLeeway > 0 {
		return c.RefreshLeeway
	}
	return 60 * time.Second
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}
