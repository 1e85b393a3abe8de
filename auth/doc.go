// Package auth implements the session and role gated access control
// flow for the 9jaAgents marketplace.
//
// Session state:
//   - SessionStore is the single source of truth for the current
//     principal. It is constructed once at the composition root and
//     injected everywhere; it has exactly one writer, the provider
//     event loop, and any number of readers. Callers observe it via
//     Subscribe; nothing outside the store mutates it.
//   - Operations wrap the identity provider calls (sign in, sign up,
//     sign out, password reset) and never touch the store directly.
//     Store updates arrive through the provider event stream, so a
//     resolved operation does not imply the store already reflects it.
//
// Authorization:
//   - Role is a closed sum (guest, user, creator, admin) with a strict
//     total order. ResolveRole derives it from a principal's metadata
//     bag, failing open to the lowest authenticated tier when the
//     attribute is absent or unrecognized.
//   - Guard gates protected routes on a minimum role with a four state
//     decision machine (pending, unauthenticated, authorized,
//     forbidden). It never redirects while the initial session check is
//     in flight and re-evaluates on every store transition.
//   - NavigationPolicy owns the redirect side effects that fire on
//     sign-in and sign-out transitions, keeping navigation concerns out
//     of the store.
package auth
