package config

import (
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// App is the root application configuration. Values load from the
// environment with sensible local-development defaults.
type App struct {
	Server      Server      `json:"server"`
	Auth        Auth        `json:"auth"`
	Supabase    Supabase    `json:"supabase"`
	Persistence Persistence `json:"persistence"`
}

type Server struct {
	Address string `json:"address"`
}

// Auth carries the routing options consumed by the session guard and
// the navigation policy.
type Auth struct {
	LoginRoute        string `json:"login_route"`
	UnauthorizedRoute string `json:"unauthorized_route"`
	LandingRoute      string `json:"landing_route"`
	ResetRedirectURL  string `json:"reset_redirect_url"`
	SessionContextKey string `json:"session_context_key"`
}

func (a Auth) GetLoginRoute() string        { return a.LoginRoute }
func (a Auth) GetUnauthorizedRoute() string { return a.UnauthorizedRoute }
func (a Auth) GetLandingRoute() string      { return a.LandingRoute }
func (a Auth) GetResetRedirectURL() string  { return a.ResetRedirectURL }
func (a Auth) GetSessionContextKey() string { return a.SessionContextKey }

// Supabase identifies the identity provider project.
type Supabase struct {
	ProjectURL string `json:"project_url"`
	AnonKey    string `json:"anon_key"`
	JWTSecret  string `json:"jwt_secret"`
}

// Persistence configures the bun client.
type Persistence struct {
	Driver                string `json:"driver"`
	DSN                   string `json:"dsn"`
	Debug                 bool   `json:"debug"`
	PingTimeoutExpression string `json:"ping_timeout"`
}

func (p Persistence) GetDriver() string         { return p.Driver }
func (p Persistence) GetDSN() string            { return p.DSN }
func (p Persistence) GetServer() string         { return p.DSN }
func (p Persistence) GetDebug() bool            { return p.Debug }
func (p Persistence) GetOtelIdentifier() string { return "" }

func (p Persistence) GetPingTimeout() time.Duration {
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		return time.Second * 5
	}
	return dur
}

// New builds the configuration from defaults and environment overrides.
func New() *App {
	app := &App{
		Server: Server{
			Address: envOr("APP_ADDRESS", ":8572"),
		},
		Auth: Auth{
			LoginRoute:        envOr("AUTH_LOGIN_ROUTE", "/login"),
			UnauthorizedRoute: envOr("AUTH_UNAUTHORIZED_ROUTE", "/unauthorized"),
			LandingRoute:      envOr("AUTH_LANDING_ROUTE", "/"),
			ResetRedirectURL:  envOr("AUTH_RESET_REDIRECT_URL", "http://localhost:8572/reset-password"),
			SessionContextKey: envOr("AUTH_SESSION_CONTEXT_KEY", "session"),
		},
		Supabase: Supabase{
			ProjectURL: os.Getenv("SUPABASE_URL"),
			AnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
			JWTSecret:  os.Getenv("SUPABASE_JWT_SECRET"),
		},
		Persistence: Persistence{
			Driver:                envOr("DB_DRIVER", "sqlite"),
			DSN:                   envOr("DB_DSN", "file:9jaagents.db?cache=shared&mode=rwc"),
			Debug:                 os.Getenv("DB_DEBUG") == "true",
			PingTimeoutExpression: envOr("DB_PING_TIMEOUT", "5s"),
		},
	}

	return app
}

// Validate will run validation rules
func (a *App) Validate() error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&a.Supabase,
			validation.Field(&a.Supabase.ProjectURL, validation.Required, is.URL),
			validation.Field(&a.Supabase.AnonKey, validation.Required),
		)
	}, "Invalid identity provider configuration")
}

func envOr(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
