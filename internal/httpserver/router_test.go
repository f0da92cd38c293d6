package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"restaurant-frontend/internal/apiclient"
	"restaurant-frontend/internal/repository/slot"
	"restaurant-frontend/internal/service/profile"
	"restaurant-frontend/internal/service/session"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func signToken(t *testing.T) string {
	t.Helper()
	claims := session.Claims{
		Role: "CUSTOMER",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ana@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

// upstream fakes the restaurant API.
type upstream struct {
	mu         sync.Mutex
	failStatus map[string]int
	stripeURL  string
	token      string
}

func (u *upstream) fail(path string, status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failStatus == nil {
		u.failStatus = map[string]int{}
	}
	u.failStatus[path] = status
}

func (u *upstream) setToken(token string) {
	u.mu.Lock()
	u.token = token
	u.mu.Unlock()
}

func (u *upstream) setStripeURL(url string) {
	u.mu.Lock()
	u.stripeURL = url
	u.mu.Unlock()
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	status := u.failStatus[r.URL.Path]
	stripe := u.stripeURL
	token := u.token
	u.mu.Unlock()
	if status != 0 {
		w.WriteHeader(status)
		return
	}

	switch {
	case r.URL.Path == "/auth/login":
		_, _ = w.Write([]byte(`{"token":"` + token + `"}`))
	case strings.HasPrefix(r.URL.Path, "/users/email/"):
		_, _ = w.Write([]byte(`{"id":5,"email":"ana@example.com","role":"CUSTOMER"}`))
	case r.URL.Path == "/menu-items":
		_, _ = w.Write([]byte(`[{"id":"burger","name":"Burger","price":10}]`))
	case r.URL.Path == "/menu-items/burger":
		_, _ = w.Write([]byte(`{"id":"burger","name":"Burger","description":"Beef","price":10,"category":"mains"}`))
	case r.URL.Path == "/orders/user/5":
		_, _ = w.Write([]byte(`[{"id":1,"status":"Pending","orderItems":[]}]`))
	case r.URL.Path == "/orders":
		_, _ = w.Write([]byte(`{"id":100,"status":"Pending","orderItems":[]}`))
	case r.URL.Path == "/bills":
		_, _ = w.Write([]byte(`{"id":200,"orderId":100,"totalAmount":10,"tax":2.4,"finalAmount":12.4}`))
	case r.URL.Path == "/transactions":
		_, _ = w.Write([]byte(`{"id":300,"amount":12.4,"stripeUrl":"` + stripe + `"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type testEnv struct {
	router   *gin.Engine
	upstream *upstream
	slots    slot.Repository
	cookie   *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	up := &upstream{}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	slots := slot.NewMemory()
	registry := profile.NewRegistry(profile.Options{
		Slots: slots,
		API:   apiclient.New(srv.URL, time.Second, nil),
	})
	router, err := buildRouter(logDiscard(), Deps{
		Profiles:    registry,
		Storage:     slots,
		TaxRate:     decimal.RequireFromString("0.24"),
		CORSOrigins: []string{"http://localhost:5173"},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{router: router, upstream: up, slots: slots}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == defaultProfileCookie {
			e.cookie = c
		}
	}
	return rec
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/session/login", `{"token":"`+signToken(t)+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d body=%s", want, rec.Code, rec.Body.String())
	}
}

func expectBody(t *testing.T, rec *httptest.ResponseRecorder, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		if !strings.Contains(rec.Body.String(), f) {
			t.Fatalf("expected %s in body: %s", f, rec.Body.String())
		}
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestHealthAndReadiness(t *testing.T) {
	e := newTestEnv(t)
	expectStatus(t, e.do(t, http.MethodGet, "/healthz", ""), http.StatusOK)
	expectStatus(t, e.do(t, http.MethodGet, "/readyz", ""), http.StatusOK)

	for _, storage := range []Pinger{nil, failingPinger{}} {
		router, err := buildRouter(logDiscard(), Deps{Profiles: profile.NewRegistry(profile.Options{Slots: slot.NewMemory(), API: apiclient.New("http://unused", time.Second, nil)}), Storage: storage})
		if err != nil {
			t.Fatalf("build router: %v", err)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		expectStatus(t, rec, http.StatusServiceUnavailable)
	}
}

func TestBuildRouter_RequiresProfiles(t *testing.T) {
	if _, err := buildRouter(logDiscard(), Deps{}); err == nil {
		t.Fatalf("expected error without profile source")
	}
}

func TestProfileMiddleware_IssuesAndReusesCookie(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/api/cart", "")
	expectStatus(t, rec, http.StatusOK)
	if e.cookie == nil {
		t.Fatalf("expected profile cookie")
	}
	if !e.cookie.HttpOnly {
		t.Fatalf("expected HttpOnly cookie")
	}
	first := e.cookie.Value

	e.do(t, http.MethodGet, "/api/cart", "")
	if e.cookie.Value != first {
		t.Fatalf("expected the cookie to be kept, got %s then %s", first, e.cookie.Value)
	}

	e.cookie = &http.Cookie{Name: defaultProfileCookie, Value: "not-a-uuid"}
	e.do(t, http.MethodGet, "/api/cart", "")
	if e.cookie.Value == "not-a-uuid" || e.cookie.Value == first {
		t.Fatalf("expected a fresh profile id, got %s", e.cookie.Value)
	}
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentials to be allowed")
	}
}

func TestMenu_ProxiesCatalog(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/api/menu", "")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"name":"Burger"`)
}
