package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/kakeibo/internal/middleware"
)

func TestNewRouter_GeneralRateLimit_Returns429(t *testing.T) {
	deps := createTestDeps(t)
	cfg := middleware.NewRateLimiterConfig(2, 5)
	deps.RateLimiter = middleware.NewRateLimiter(cfg)
	t.Cleanup(deps.RateLimiter.Stop)
	router := NewRouter(deps)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		router.ServeHTTP(last, authenticated(httptest.NewRequest(http.MethodGet, "/api/categories", nil)))
	}

	assertStatus(t, last, http.StatusTooManyRequests)
	if last.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestNewRouter_ContactRateLimit_ByIP(t *testing.T) {
	deps := createTestDeps(t)
	deps.RateLimiter = middleware.NewRateLimiter(middleware.NewRateLimiterConfig(120, 1))
	t.Cleanup(deps.RateLimiter.Stop)
	router := NewRouter(deps)

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := newJSONRequest(http.MethodPost, "/api/contact", `{"name":"a","email":"a@example.com","subject":"s","message":"m"}`)
		req.RemoteAddr = remoteAddr
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
		req.Header.Set(middleware.CSRFHeaderName, "tok")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assertStatus(t, send("192.0.2.1:1234"), http.StatusAccepted)
	assertStatus(t, send("192.0.2.1:5678"), http.StatusTooManyRequests)
	assertStatus(t, send("192.0.2.2:1234"), http.StatusAccepted)
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	deps := createTestDeps(t)
	deps.CORSAllowedOrigin = "http://localhost:3000"
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
	}
}

func TestNewRouter_UnknownRoute_Returns404(t *testing.T) {
	router := createTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	assertStatus(t, w, http.StatusNotFound)
}

func TestNewRouter_TrustProxy_UsesForwardedFor(t *testing.T) {
	deps := createTestDeps(t)
	deps.TrustProxy = true
	deps.RateLimiter = middleware.NewRateLimiter(middleware.NewRateLimiterConfig(120, 1))
	t.Cleanup(deps.RateLimiter.Stop)
	router := NewRouter(deps)

	send := func(forwardedFor string) *httptest.ResponseRecorder {
		req := newJSONRequest(http.MethodPost, "/api/contact", `{}`)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
		req.Header.Set(middleware.CSRFHeaderName, "tok")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assertStatus(t, send("198.51.100.1"), http.StatusAccepted)
	assertStatus(t, send("198.51.100.2"), http.StatusAccepted)
	assertStatus(t, send("198.51.100.1"), http.StatusTooManyRequests)
}
