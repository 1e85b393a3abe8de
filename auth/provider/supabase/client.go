package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/jost305/9jaagents/auth"
)

// Client is the GoTrue binding implementing auth.SessionClient. It owns
// the provider managed token bundle: callers never read or write token
// storage directly.
//
// Session-changed events are emitted in the order the provider confirms
// them; listeners are invoked synchronously under a dispatch lock so no
// event overtakes another.
type Client struct {
	config    Config
	http      *http.Client
	logger    auth.Logger
	validator *TokenValidator

	mu      sync.RWMutex
	session *auth.Session

	emitMu    sync.Mutex
	listeners map[int]auth.SessionListener
	nextID    int

	refreshOnce sync.Once
	refreshStop chan struct{}
}

var _ auth.SessionClient = (*Client)(nil)

// New creates a client for the configured project.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ProjectURL) == "" {
		return nil, fmt.Errorf("supabase: project URL is required")
	}
	if strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, fmt.Errorf("supabase: anon key is required")
	}

	client := &Client{
		config:      cfg,
		http:        cfg.httpClient(),
		logger:      noopLogger{},
		listeners:   map[int]auth.SessionListener{},
		refreshStop: make(chan struct{}),
	}

	if cfg.JWTSecret != "" || cfg.JWKSURL != "" {
		validator, err := NewTokenValidator(cfg)
		if err != nil {
			return nil, err
		}
		client.validator = validator
	}

	return client, nil
}

func (c *Client) WithLogger(logger auth.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// GetSession returns the current session, nil when anonymous. One-shot;
// used by the session store at startup.
func (c *Client) GetSession(ctx context.Context) (*auth.Session, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()

	if session == nil {
		return nil, nil
	}

	if session.Expired(time.Now()) {
		refreshed, err := c.refreshSession(ctx, session.RefreshToken)
		if err != nil {
			return nil, err
		}
		return refreshed, nil
	}

	return session, nil
}

// User fetches the authoritative user record for the current session.
// Unlike the session's cached principal this always round-trips to the
// provider, so it reflects metadata changes made since sign-in.
func (c *Client) User(ctx context.Context) (*auth.Principal, error) {
	session, err := c.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, auth.ErrPrincipalNotFound
	}

	principal := &auth.Principal{}
	if err := c.get(ctx, "/user", session.AccessToken, principal); err != nil {
		return nil, err
	}

	return principal, nil
}

// OnSessionChange registers a listener for session-changed events and
// returns its subscription handle.
func (c *Client) OnSessionChange(listener auth.SessionListener) auth.Subscription {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = listener

	return subscription{client: c, id: id}
}

// SignInWithPassword exchanges credentials for a session and emits
// SIGNED_IN. The call resolving does not mean downstream stores have
// observed the event yet.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error) {
	body := map[string]any{"email": email, "password": password}

	session := &auth.Session{}
	if err := c.post(ctx, "/token?grant_type=password", body, "", session); err != nil {
		return nil, err
	}

	c.adoptSession(session)
	c.emit(auth.EventSignedIn, session)
	c.startAutoRefresh()

	return session, nil
}

// SignUp registers a new account with the given attribute bag. The
// provider sends the verification email; no session is issued until the
// address is confirmed, so no event is emitted here.
func (c *Client) SignUp(ctx context.Context, email, password string, attributes auth.SignUpAttributes) (*auth.Principal, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if len(attributes) > 0 {
		body["data"] = map[string]any(attributes)
	}

	principal := &auth.Principal{}
	if err := c.post(ctx, "/signup", body, "", principal); err != nil {
		return nil, err
	}

	return principal, nil
}

// SignOut revokes the session server side, then drops the local token
// bundle and emits SIGNED_OUT. A rejected revocation leaves the cached
// session in place so the caller can sign out again; clearing it early
// would strand the event stream with no SIGNED_OUT ever delivered.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()

	if session == nil {
		return nil
	}

	if err := c.post(ctx, "/logout", nil, session.AccessToken, nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	c.emit(auth.EventSignedOut, nil)
	return nil
}

// ResetPasswordForEmail asks the provider to send a recovery email
// linking back to redirectTo.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	path := "/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return c.post(ctx, path, map[string]any{"email": email}, "", nil)
}

func (c *Client) refreshSession(ctx context.Context, refreshToken string) (*auth.Session, error) {
	if refreshToken == "" {
		return nil, nil
	}

	session := &auth.Session{}
	err := c.post(ctx, "/token?grant_type=refresh_token", map[string]any{
		"refresh_token": refreshToken,
	}, "", session)
	if err != nil {
		return nil, err
	}

	c.adoptSession(session)
	c.emit(auth.EventTokenRefreshed, session)

	return session, nil
}

// adoptSession stores the token bundle. When verification material is
// configured the principal comes from the validated access token rather
// than the provider-echoed user object.
func (c *Client) adoptSession(session *auth.Session) {
	if c.validator != nil && session != nil {
		principal, err := c.validator.PrincipalFromToken(session.AccessToken)
		if err != nil {
			c.logger.Warn("access token failed validation: %v", err)
		} else {
			session.User = principal
		}
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
}

// emit delivers the event to every listener in registration order,
// serialized so events cannot overtake each other.
func (c *Client) emit(event auth.EventType, session *auth.Session) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		c.listeners[id](event, session)
	}
}

func (c *Client) startAutoRefresh() {
	if !c.config.AutoRefresh {
		return
	}

	c.refreshOnce.Do(func() {
		go c.refreshLoop()
	})
}

// refreshLoop exchanges the refresh token shortly before each expiry.
// A failed refresh is not retried; the session simply expires and the
// next provider call reports it.
func (c *Client) refreshLoop() {
	for {
		c.mu.RLock()
		session := c.session
		c.mu.RUnlock()

		wait := time.Minute
		if session != nil && session.ExpiresAt != nil {
			wait = time.Until(session.ExpiresAt.Add(-c.config.refreshLeeway()))
			if wait < time.Second {
				wait = time.Second
			}
		}

		select {
		case <-time.After(wait):
		case <-c.refreshStop:
			return
		}

		c.mu.RLock()
		session = c.session
		c.mu.RUnlock()
		if session == nil {
			continue
		}

		if _, err := c.refreshSession(context.Background(), session.RefreshToken); err != nil {
			c.logger.Error("token refresh failed", "error", err)
		}
	}
}

// Close stops the auto refresh loop. It does not revoke the session.
func (c *Client) Close() {
	select {
	case <-c.refreshStop:
	default:
		close(c.refreshStop)
	}

	if c.validator != nil {
		c.validator.Close()
	}
}

type subscription struct {
	client *Client
	id     int
}

func (s subscription) Unsubscribe() {
	s.client.emitMu.Lock()
	defer s.client.emitMu.Unlock()
	delete(s.client.listeners, s.id)
}

// apiError is the GoTrue error envelope; fields vary by endpoint
// generation so both shapes are decoded.
type apiError struct {
	Message     string `json:"msg"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Code        int    `json:"code"`
}

func (e apiError) text() string {
	switch {
	case e.Description != "":
		return e.Description
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	default:
		return "authentication request failed"
	}
}

func (c *Client) post(ctx context.Context, path string, body any, bearer string, out any) error {
	return c.do(ctx, http.MethodPost, path, body, bearer, out)
}

func (c *Client) get(ctx context.Context, path string, bearer string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, bearer, out)
}

func (c *Client) do(ctx context.Context, method, path string, body any, bearer string, out any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to encode request")
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.authURL()+path, payload)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.config.AnonKey)
	if bearer == "" {
		bearer = c.config.AnonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "identity provider unreachable")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read response")
	}

	if res.StatusCode >= 400 {
		apiErr := apiError{}
		_ = json.Unmarshal(raw, &apiErr)
		c.logger.Debug("provider error response: status=%d path=%s", res.StatusCode, path)

		return errors.New(apiErr.text(), errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("PROVIDER_REJECTED").
			WithMetadata(map[string]any{
				"status": res.StatusCode,
			})
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to decode provider response")
	}

	if session, ok := out.(*auth.Session); ok {
		normalizeExpiry(session, raw)
	}

	return nil
}

// normalizeExpiry derives an absolute ExpiresAt from the wire's unix
// expires_at, falling back to the relative expires_in.
func normalizeExpiry(session *auth.Session, raw []byte) {
	if session == nil || session.ExpiresAt != nil {
		return
	}

	envelope := struct {
		ExpiresAt int64 `json:"expires_at"`
		ExpiresIn int64 `json:"expires_in"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return
	}

	var expires time.Time
	switch {
	case envelope.ExpiresAt > 0:
		expires = time.Unix(envelope.ExpiresAt, 0)
	case envelope.ExpiresIn > 0:
		expires = time.Now().Add(time.Duration(envelope.ExpiresIn) * time.Second)
	default:
		return
	}

	session.ExpiresAt = &expires
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
