package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

const testSecret = "test-secret"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body["message"]
}

func TestGenerateAndParseToken(t *testing.T) {
	acct := &domain.Account{ID: 42, Email: "doc@example.com", Role: domain.RoleDoctor}
	token, err := GenerateToken(acct, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	p, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if p.AccountID != 42 || p.Role != domain.RoleDoctor || p.Email != "doc@example.com" {
		t.Errorf("unexpected principal: %+v", p)
	}

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseToken_RejectsUnknownRole(t *testing.T) {
	claims := jwt.MapClaims{
		"account_id": 1,
		"role":       "janitor",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if _, err := ParseToken(token, testSecret); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestParseToken_Expired(t *testing.T) {
	claims := jwt.MapClaims{
		"account_id": 1,
		"role":       "admin",
		"exp":        time.Now().Add(-time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if _, err := ParseToken(token, testSecret); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestAuthMiddleware(t *testing.T) {
	token, _ := GenerateToken(&domain.Account{ID: 7, Email: "p@example.com", Role: domain.RolePatient}, testSecret)

	var got Principal
	h := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"valid header", "Bearer " + token, "", http.StatusOK},
		{"query fallback", "", "?access_token=" + token, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = Principal{}
			req := httptest.NewRequest(http.MethodGet, "/api/patients"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.status == http.StatusOK && got.AccountID != 7 {
				t.Errorf("expected principal 7, got %+v", got)
			}
			if tt.status != http.StatusOK && decodeMessage(t, rec) == "" {
				t.Error("expected message in error body")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(domain.RoleDoctor, domain.RoleReception)(okHandler())

	tests := []struct {
		role   domain.Role
		status int
	}{
		{domain.RoleDoctor, http.StatusOK},
		{domain.RoleReception, http.StatusOK},
		{domain.RoleAdmin, http.StatusOK},
		{domain.RolePatient, http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithPrincipal(req.Context(), Principal{AccountID: 1, Role: tt.role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Errorf("role %s: expected %d, got %d", tt.role, tt.status, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without principal, got %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }
	h := rl.Middleware(okHandler())

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if do("10.0.0.1") != http.StatusOK || do("10.0.0.1") != http.StatusOK {
		t.Fatal("expected first two requests to pass")
	}
	if code := do("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := do("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", code)
	}

	now = now.Add(time.Minute + time.Second)
	if code := do("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("expected window to slide, got %d", code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:1234"
	if ip := clientIP(req); ip != "192.168.1.5" {
		t.Errorf("expected remote host, got %s", ip)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := clientIP(req); ip != "203.0.113.9" {
		t.Errorf("expected first forwarded hop, got %s", ip)
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	h := APIKeyMiddleware("k1")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 without key, got %d", rec.Code)
	}

	req.Header.Set("X-API-Key", "k1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with key, got %d", rec.Code)
	}

	open := APIKeyMiddleware("")(okHandler())
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 when no key configured, got %d", rec.Code)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	h := CORSMiddleware([]string{"http://app.test"})(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/api/patients", nil)
	req.Header.Set("Origin", "http://app.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://app.test" {
		t.Errorf("unexpected allow-origin %q", got)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "internal server error" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestRequestID(t *testing.T) {
	h := RequestID(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("expected propagated request id, got %q", got)
	}
}
