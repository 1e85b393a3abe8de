package auth_test

import (
	"context"
	"sync"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	auth "github.com/jost305/9jaagents/auth"
)

// fakeSessionClient is a controllable in-memory auth.SessionClient. It
// records calls and lets tests drive the provider event stream directly
// through Emit.
type fakeSessionClient struct {
	mu        sync.Mutex
	listeners []auth.SessionListener

	session    *auth.Session
	getErr     error
	getGate    chan struct{} // when set, GetSession blocks until closed
	getCalls   int
	signInErr  error
	signUpErr  error
	signOutErr error
	resetErr   error

	signInCalls  int
	signOutCalls int
	resetCalls   int
	signUpCalls  int
	lastRedirect string
	lastAttrs    auth.SignUpAttributes
}

func (f *fakeSessionClient) GetSession(ctx context.Context) (*auth.Session, error) {
	f.mu.Lock()
	gate := f.getGate
	f.getCalls++
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.getErr
}

func (f *fakeSessionClient) OnSessionChange(listener auth.SessionListener) auth.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, listener)
	return fakeSubscription{}
}

func (f *fakeSessionClient) SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error) {
	f.mu.Lock()
	f.signInCalls++
	err := f.signInErr
	session := f.session
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	f.Emit(auth.EventSignedIn, session)
	return session, nil
}

func (f *fakeSessionClient) SignUp(ctx context.Context, email, password string, attributes auth.SignUpAttributes) (*auth.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUpCalls++
	f.lastAttrs = attributes
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &auth.Principal{ID: "00000000-0000-0000-0000-000000000001", Email: email}, nil
}

func (f *fakeSessionClient) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOutCalls++
	err := f.signOutErr
	f.mu.Unlock()

	if err != nil {
		return err
	}
	f.Emit(auth.EventSignedOut, nil)
	return nil
}

func (f *fakeSessionClient) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	f.lastRedirect = redirectTo
	return f.resetErr
}

// Emit delivers an event to every registered listener, in registration
// order, the way the provider stream does.
func (f *fakeSessionClient) Emit(event auth.EventType, session *auth.Session) {
	f.mu.Lock()
	listeners := append([]auth.SessionListener{}, f.listeners...)
	f.session = session
	f.mu.Unlock()

	for _, l := range listeners {
		l(event, session)
	}
}

type fakeSubscription struct{}

func (fakeSubscription) Unsubscribe() {}

// testConfig implements auth.Config
type testConfig struct{}

func (testConfig) GetLoginRoute() string        { return "/login" }
func (testConfig) GetUnauthorizedRoute() string { return "/unauthorized" }
func (testConfig) GetLandingRoute() string      { return "/" }
func (testConfig) GetResetRedirectURL() string  { return "https://app.test/reset-password" }
func (testConfig) GetSessionContextKey() string { return "session" }

// recordingNavigator captures every destination navigated to.
type recordingNavigator struct {
	mu           sync.Mutex
	destinations []string
}

func (n *recordingNavigator) Navigate(destination string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.destinations = append(n.destinations, destination)
}

func (n *recordingNavigator) Destinations() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.destinations...)
}

func principalWithRole(role string) *auth.Principal {
	metadata := map[string]any{}
	if role != "" {
		metadata["role"] = role
	}
	return &auth.Principal{
		ID:       "11111111-1111-1111-1111-111111111111",
		Email:    "someone@9jaagents.com",
		Metadata: metadata,
	}
}

func sessionFor(principal *auth.Principal) *auth.Session {
	return &auth.Session{
		AccessToken:  "token",
		RefreshToken: "refresh",
		TokenType:    "bearer",
		User:         principal,
	}
}

// MockContext mocks router.Context for guard middleware tests.
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}
