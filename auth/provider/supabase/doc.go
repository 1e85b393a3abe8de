// Package supabase binds the hosted GoTrue authentication service as
// the identity provider for the auth package.
//
// The client owns session issuance, credential verification, the token
// bundle, and auto refresh; downstream code consumes it only through
// the auth.SessionClient contract and the session-changed event stream.
package supabase
