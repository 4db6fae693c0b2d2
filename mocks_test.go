package session_test

import (
	"context"
	"io"
	"mime/multipart"
	"sync"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	session "github.com/wisal-platform/go-session"
)

// MockGateway implements session.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Login(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	args := m.Called(ctx, creds)
	res, _ := args.Get(0).(*session.AuthResult)
	return res, args.Error(1)
}

func (m *MockGateway) Register(ctx context.Context, payload session.RegisterPayload) (*session.AuthResult, error) {
	args := m.Called(ctx, payload)
	res, _ := args.Get(0).(*session.AuthResult)
	return res, args.Error(1)
}

func (m *MockGateway) CurrentUser(ctx context.Context) (*session.User, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*session.User)
	return user, args.Error(1)
}

func (m *MockGateway) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// recorderSink captures activity events for assertions.
type recorderSink struct {
	mu     sync.Mutex
	events []session.ActivityEvent
}

func (r *recorderSink) Record(ctx context.Context, event session.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorderSink) byType(t session.ActivityEventType) []session.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []session.ActivityEvent
	for _, e := range r.events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}

// recordingNotifier captures notices for assertions.
type recordingNotifier struct {
	errors []string
	infos  []string
}

func (n *recordingNotifier) NotifyError(message string) {
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) NotifyInfo(message string) {
	n.infos = append(n.infos, message)
}

// fakeContext is a lightweight router.Context for guard and reconciler
// tests. Redirects and Next calls are recorded; query params come from
// the QueryParams map.
type fakeContext struct {
	QueryParams    map[string]string
	HTTPMethod     string
	URL            string
	RedirectedTo   string
	RedirectStatus int
	NextCalled     bool
	locals         map[any]any
	ctx            context.Context
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		QueryParams: map[string]string{},
		HTTPMethod:  "GET",
		URL:         "/somewhere",
		locals:      map[any]any{},
		ctx:         context.Background(),
	}
}

func (c *fakeContext) Next() error {
	c.NextCalled = true
	return nil
}

func (c *fakeContext) Context() context.Context { return c.ctx }

func (c *fakeContext) SetContext(ctx context.Context) { c.ctx = ctx }

func (c *fakeContext) Path() string { return c.URL }

func (c *fakeContext) Method() string { return c.HTTPMethod }

func (c *fakeContext) Body() []byte { return nil }

func (c *fakeContext) Status(code int) router.Context { return c }

func (c *fakeContext) SendString(s string) error { return nil }

func (c *fakeContext) Send(b []byte) error { return nil }

func (c *fakeContext) JSON(code int, val any) error { return nil }

func (c *fakeContext) NoContent(code int) error { return nil }

func (c *fakeContext) Render(name string, bind any, layout ...string) error { return nil }

func (c *fakeContext) Redirect(path string, status ...int) error {
	c.RedirectedTo = path
	if len(status) > 0 {
		c.RedirectStatus = status[0]
	}
	return nil
}

func (c *fakeContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	return nil
}

func (c *fakeContext) RedirectBack(fallback string, status ...int) error { return nil }

func (c *fakeContext) SetHeader(key, val string) router.Context { return c }

func (c *fakeContext) Header(key string) string { return "" }

func (c *fakeContext) Get(key string, defaultValue any) any { return defaultValue }

func (c *fakeContext) GetBool(key string, defaultValue bool) bool { return defaultValue }

func (c *fakeContext) GetInt(key string, def int) int { return def }

func (c *fakeContext) Set(key string, val any) {}

func (c *fakeContext) Bind(i any) error { return nil }

func (c *fakeContext) BindJSON(i any) error { return nil }

func (c *fakeContext) BindXML(i any) error { return nil }

func (c *fakeContext) BindQuery(i any) error { return nil }

func (c *fakeContext) CookieParser(i any) error { return nil }

func (c *fakeContext) Cookie(cookie *router.Cookie) {}

func (c *fakeContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *fakeContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *fakeContext) ParamsInt(key string, defaultValue int) int { return defaultValue }

func (c *fakeContext) Query(key string, defaultValue ...string) string {
	if val, ok := c.QueryParams[key]; ok {
		return val
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *fakeContext) QueryValues(key string) []string {
	if val, ok := c.QueryParams[key]; ok {
		return []string{val}
	}
	return nil
}

func (c *fakeContext) QueryInt(key string, defaultValue int) int { return defaultValue }

func (c *fakeContext) Queries() map[string]string { return c.QueryParams }

func (c *fakeContext) GetString(key string, defaultValue string) string { return defaultValue }

func (c *fakeContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		c.locals[key] = value[0]
		return nil
	}
	return c.locals[key]
}

func (c *fakeContext) OriginalURL() string { return c.URL }

func (c *fakeContext) LocalsMerge(key any, value map[string]any) map[string]any {
	existing, _ := c.locals[key].(map[string]any)
	if existing == nil {
		existing = map[string]any{}
	}
	for k, v := range value {
		existing[k] = v
	}
	c.locals[key] = existing
	return existing
}

func (c *fakeContext) FormFile(key string) (*multipart.FileHeader, error) { return nil, nil }

func (c *fakeContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *fakeContext) IP() string { return "" }

func (c *fakeContext) SendStatus(code int) error { return nil }

func (c *fakeContext) SendStream(r io.Reader) error { return nil }

func (c *fakeContext) RouteName() string { return "" }

func (c *fakeContext) RouteParams() map[string]string { return map[string]string{} }

func (c *fakeContext) OnNext(callback func() error) {}

func (c *fakeContext) Referer() string { return "" }
