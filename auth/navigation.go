package auth

// Navigator performs a redirect to the given destination. Navigation
// failures are fatal to the application shell and are not retried here.
type Navigator interface {
	Navigate(destination string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(destination string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(destination string) {
	if f != nil {
		f(destination)
	}
}

// NavigationPolicy owns the redirect side effects that fire on session
// transitions. It observes the store; the store itself knows nothing
// about navigation, which keeps it testable without a navigation stub.
//
// On a sign-in transition the policy navigates exactly once by role:
// admin to the admin console, creator to the creator dashboard,
// everyone else to the member dashboard. Token refreshes for an already
// known principal never navigate. Sign-out navigates to the landing
// destination.
type NavigationPolicy struct {
	nav     Navigator
	cfg     Config
	logger  Logger
	landing string
}

// NewNavigationPolicy builds the policy. Call Attach to subscribe it.
func NewNavigationPolicy(nav Navigator, cfg Config) *NavigationPolicy {
	return &NavigationPolicy{
		nav:     nav,
		cfg:     cfg,
		logger:  defLogger{},
		landing: cfg.GetLandingRoute(),
	}
}

func (p *NavigationPolicy) WithLogger(logger Logger) *NavigationPolicy {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Attach subscribes the policy to the store and returns the
// unsubscribe handle.
func (p *NavigationPolicy) Attach(store *SessionStore) (func(), error) {
	return store.Subscribe(p.onTransition)
}

func (p *NavigationPolicy) onTransition(state StoreState) {
	switch state.Event {
	case EventSignedIn:
		if state.Principal == nil {
			return
		}
		destination := p.DestinationFor(state.Role())
		p.logger.Info("signed in, navigating", "role", string(state.Role()), "destination", destination)
		p.nav.Navigate(destination)

	case EventSignedOut:
		p.logger.Info("signed out, navigating to landing")
		p.nav.Navigate(p.landing)
	}
}

// DestinationFor maps a role to its post sign-in destination.
func (p *NavigationPolicy) DestinationFor(role Role) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleCreator:
		return "/creator/dashboard"
	default:
		return "/dashboard"
	}
}
