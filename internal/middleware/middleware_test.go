package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"certifyrpg/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type stubVerifier map[string]models.Principal

func (v stubVerifier) VerifyAccess(token string) (models.Principal, error) {
	p, ok := v[token]
	if !ok {
		return models.Principal{}, errors.New("unknown token")
	}
	return p, nil
}

var noContent = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthentication(t *testing.T) {
	verifier := stubVerifier{
		"user-token":  {UserID: "u1", Role: "user"},
		"admin-token": {UserID: "a1", Role: "admin"},
	}
	auth := Authentication(verifier, zerolog.Nop())

	var seen models.Principal
	h := auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetPrincipal(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dXNlcg==", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", http.StatusUnauthorized},
		{"valid", "Bearer user-token", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/credits", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if rec := serve(h, req); rec.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
	if seen.UserID != "u1" {
		t.Errorf("Expected principal u1 in context, got %+v", seen)
	}

	admin := auth(RequireAdmin()(noContent))
	for token, want := range map[string]int{"user-token": http.StatusForbidden, "admin-token": http.StatusNoContent} {
		req := httptest.NewRequest("POST", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		if rec := serve(admin, req); rec.Code != want {
			t.Errorf("%s: expected %d, got %d", token, want, rec.Code)
		}
	}
}

func TestRequireJSON(t *testing.T) {
	h := RequireJSON()(noContent)

	req := httptest.NewRequest("POST", "/x", strings.NewReader(`a=b`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rec := serve(h, req); rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("Expected 415, got %d", rec.Code)
	}

	req = httptest.NewRequest("POST", "/x", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if rec := serve(h, req); rec.Code != http.StatusNoContent {
		t.Errorf("Expected JSON body to pass, got %d", rec.Code)
	}

	if rec := serve(h, httptest.NewRequest("POST", "/x", nil)); rec.Code != http.StatusNoContent {
		t.Errorf("Expected empty body to pass, got %d", rec.Code)
	}
}

func TestRecover(t *testing.T) {
	h := Recover(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := serve(h, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "internal_error") {
		t.Errorf("Expected 500 internal_error, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestObserveRequestID(t *testing.T) {
	var inside string
	h := Observe(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inside = RequestID(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := serve(h, req)
	if inside != "req-42" || rec.Header().Get("X-Request-ID") != "req-42" {
		t.Errorf("Expected caller request id to propagate, got %q / %q", inside, rec.Header().Get("X-Request-ID"))
	}

	rec = serve(h, httptest.NewRequest("GET", "/", nil))
	if id := rec.Header().Get("X-Request-ID"); id == "" || id != inside {
		t.Errorf("Expected a generated request id, got %q (context %q)", id, inside)
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	h := NewRateLimiter(rate.Every(1<<62), 1).Middleware()(noContent)

	first := httptest.NewRequest("GET", "/", nil)
	first.RemoteAddr = "10.0.0.1:1000"
	if rec := serve(h, first); rec.Code != http.StatusNoContent {
		t.Fatalf("Expected first request to pass, got %d", rec.Code)
	}

	again := httptest.NewRequest("GET", "/", nil)
	again.RemoteAddr = "10.0.0.1:2000"
	if rec := serve(h, again); rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 for same client, got %d", rec.Code)
	}

	other := httptest.NewRequest("GET", "/", nil)
	other.RemoteAddr = "10.0.0.2:1000"
	if rec := serve(h, other); rec.Code != http.StatusNoContent {
		t.Errorf("Expected other client to pass, got %d", rec.Code)
	}
}
