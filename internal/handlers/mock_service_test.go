package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blogsite/internal/models"
	"blogsite/internal/render"
	"blogsite/internal/service"
	"blogsite/internal/session"
	"blogsite/web"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerID  int
	registerErr error
	authUser    *models.User
	authErr     error

	lastRegister     service.RegisterInput
	registerCalls    int
	lastAuthUsername string
	lastAuthPassword string
}

func (m *mockAuth) Register(_ context.Context, in service.RegisterInput) (int, error) {
	m.registerCalls++
	m.lastRegister = in
	return m.registerID, m.registerErr
}

func (m *mockAuth) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	m.lastAuthUsername = username
	m.lastAuthPassword = password
	return m.authUser, m.authErr
}

type mockBlog struct {
	posts     []models.BlogPost
	summaries []models.PostSummary
	listErr   error
	getErr    error
	createID  int
	createErr error
	updateErr error
	deleteErr error

	lastLimit   int
	lastCreate  service.PostInput
	createCalls int
	lastUpdate  service.PostInput
	lastUpdID   int
	updateCalls int
	lastDelID   int
}

func (m *mockBlog) ListPosts(_ context.Context, limit int) ([]models.BlogPost, error) {
	m.lastLimit = limit
	return m.posts, m.listErr
}

func (m *mockBlog) ListSummaries(_ context.Context, limit int) ([]models.PostSummary, error) {
	m.lastLimit = limit
	return m.summaries, m.listErr
}

func (m *mockBlog) GetPost(_ context.Context, id int) (*models.BlogPost, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.posts {
		if m.posts[i].ID == id {
			p := m.posts[i]
			return &p, nil
		}
	}
	return nil, service.ErrPostNotFound
}

func (m *mockBlog) CreatePost(_ context.Context, in service.PostInput) (int, error) {
	m.createCalls++
	m.lastCreate = in
	return m.createID, m.createErr
}

func (m *mockBlog) UpdatePost(_ context.Context, id int, in service.PostInput) error {
	m.updateCalls++
	m.lastUpdID = id
	m.lastUpdate = in
	return m.updateErr
}

func (m *mockBlog) DeletePost(_ context.Context, id int) error {
	m.lastDelID = id
	return m.deleteErr
}

func (m *mockBlog) SeedPosts(_ context.Context, count int) (int, error) {
	return count, nil
}

type mockUploads struct {
	url  string
	err  error
	name string
	body string
}

func (m *mockUploads) SaveImage(_ context.Context, filename string, r io.Reader, _ int64, _ string) (string, error) {
	m.name = filename
	b, _ := io.ReadAll(r)
	m.body = string(b)
	return m.url, m.err
}

// ---- Shared Test Helpers ----

const testCSRF = "test-csrf-token"

var testSessions = session.NewManager("test-secret", "session", time.Hour, false)

func newTestHandler(t *testing.T, s *service.Service) *Handler {
	t.Helper()
	tmpl, err := render.NewHTML(web.Templates(), false)
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	return NewHandler(s, testSessions, nil, Options{
		Templates:    tmpl,
		Assets:       web.Static(),
		FeedInterval: time.Second,
		FeedSize:     3,
	})
}

func newTestRouter(t *testing.T, s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return newTestHandler(t, s).InitRoutes()
}

// sessionCookie encodes s the way the server would.
func sessionCookie(t *testing.T, s *session.Session) *http.Cookie {
	t.Helper()
	value, err := testSessions.Encode(s)
	if err != nil {
		t.Fatalf("encode session: %v", err)
	}
	return &http.Cookie{Name: testSessions.CookieName(), Value: value}
}

func loggedInCookie(t *testing.T) *http.Cookie {
	return sessionCookie(t, &session.Session{LoggedIn: true, Username: "alice", CSRFToken: testCSRF})
}

func anonymousCookie(t *testing.T) *http.Cookie {
	return sessionCookie(t, &session.Session{CSRFToken: testCSRF})
}

// responseSession decodes the session cookie set by the response.
func responseSession(t *testing.T, w *httptest.ResponseRecorder) *session.Session {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testSessions.CookieName() {
			s, err := testSessions.Decode(c.Value)
			if err != nil {
				t.Fatalf("decode session: %v", err)
			}
			return s
		}
	}
	t.Fatalf("response did not set a session cookie")
	return nil
}

func doGet(r http.Handler, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doPostForm(r http.Handler, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func hasFlash(s *session.Session, category, message string) bool {
	for _, f := range s.Flashes {
		if f.Category == category && f.Message == message {
			return true
		}
	}
	return false
}
