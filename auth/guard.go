package auth

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// Decision is the guard's verdict for a protected subtree.
type Decision int

const (
	// DecisionPending means the initial session check is in flight.
	// No redirect may be issued in this state; premature redirects
	// while loading are the classic bug in this pattern.
	DecisionPending Decision = iota
	// DecisionUnauthenticated redirects to the login destination.
	DecisionUnauthenticated
	// DecisionAuthorized renders the protected subtree.
	DecisionAuthorized
	// DecisionForbidden redirects to the unauthorized destination.
	DecisionForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionUnauthenticated:
		return "unauthenticated"
	case DecisionAuthorized:
		return "authorized"
	case DecisionForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Evaluate runs the gate for a store snapshot against a minimum
// required role. requiredRole == "" gates on authentication only.
//
// Comparison is rank(actual) >= rank(required): admin satisfies any
// gate, creator satisfies creator or user gates, user satisfies only
// user gates or ungated content.
func Evaluate(state StoreState, requiredRole Role) Decision {
	if state.Loading {
		return DecisionPending
	}

	if state.Principal == nil {
		return DecisionUnauthenticated
	}

	if requiredRole == "" {
		return DecisionAuthorized
	}

	if state.Role().IsAtLeast(requiredRole) {
		return DecisionAuthorized
	}

	return DecisionForbidden
}

// Guard gates rendering of protected routes behind a minimum role,
// redirecting unauthorized principals. It reads the session store on
// every request, so a sign-out between requests takes effect
// immediately, and it can additionally watch the store for transitions
// that invalidate an already granted decision.
type Guard struct {
	store  *SessionStore
	cfg    Config
	logger Logger
}

// NewGuard builds a route guard bound to the injected store; the guard
// never owns or mutates session state.
func NewGuard(store *SessionStore, cfg Config) *Guard {
	return &Guard{
		store:  store,
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Protected gates a route on authentication only.
func (g *Guard) Protected() router.MiddlewareFunc {
	return g.RequireRole("")
}

// RequireRole gates a route on a minimum role.
func (g *Guard) RequireRole(requiredRole Role) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			state := g.store.State()
			decision := Evaluate(state, requiredRole)

			switch decision {
			case DecisionPending:
				// neutral holding response; never a redirect
				return ctx.Status(http.StatusServiceUnavailable).
					SendString("session check in progress")

			case DecisionUnauthenticated:
				g.logger.Info("guard redirect to login", "path", ctx.OriginalURL())
				return g.redirect(ctx, g.cfg.GetLoginRoute())

			case DecisionForbidden:
				g.logger.Info(
					"guard redirect to unauthorized",
					"path", ctx.OriginalURL(),
					"role", string(state.Role()),
					"required", string(requiredRole),
				)
				return g.redirect(ctx, g.cfg.GetUnauthorizedRoute())
			}

			ctx.Locals(g.cfg.GetSessionContextKey(), state.Principal)
			ctx.SetContext(WithPrincipalContext(ctx.Context(), state.Principal))

			return next(ctx)
		}
	}
}

// Watch re-evaluates the decision on every store transition and invokes
// onChange when it flips, e.g. a sign-out while a protected page is
// open must immediately redirect without a reload. Returns the
// unsubscribe handle.
func (g *Guard) Watch(requiredRole Role, onChange func(Decision)) (func(), error) {
	last := Evaluate(g.store.State(), requiredRole)

	return g.store.Subscribe(func(state StoreState) {
		decision := Evaluate(state, requiredRole)
		if decision == last {
			return
		}
		last = decision
		onChange(decision)
	})
}

func (g *Guard) redirect(ctx router.Context, destination string) error {
	statusCode := http.StatusSeeOther
	if ctx.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return ctx.Redirect(destination, statusCode)
}
