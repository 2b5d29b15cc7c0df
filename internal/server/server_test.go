package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/adaptive-budget/backend/internal/config"
	"example.com/adaptive-budget/backend/internal/engine"
)

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{
			CORSOrigins:        []string{"http://localhost:3000"},
			RateLimitPerMinute: 600,
			RateLimitBurst:     50,
		},
		Auth: config.AuthConfig{JWTSecret: "secret", JWTIssuer: "adaptive-budget", AccessTokenTTL: time.Minute},
		AI: config.AIConfig{
			Provider:           "none",
			Timeout:            time.Second,
			RateLimitPerMinute: 60,
			RateLimitBurst:     5,
		},
	}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := New(testConfig(), logger, nil, engine.DefaultTables())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

// TestRoutes проверяет публичные и защищенные маршруты.
func TestRoutes(t *testing.T) {
	handler := newTestServer(t)

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/categories", "", http.StatusOK},
		{http.MethodPost, "/api/v1/budgets/validate", `{"monthlyIncome":60000,"city":"Pune","familySize":2,"age":27}`, http.StatusOK},
		{http.MethodPost, "/api/v1/budgets/generate", `{}`, http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/budgets", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/notifications/stream", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.want, rec.Code, rec.Body.String())
		}
	}
}

// TestCORSPreflight проверяет заголовки CORS для разрешенного origin.
func TestCORSPreflight(t *testing.T) {
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/categories", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

// TestNewInsightSourceRejectsUnknownProvider проверяет ошибку сборки клиента.
func TestNewInsightSourceRejectsUnknownProvider(t *testing.T) {
	_, err := NewInsightSource(config.AIConfig{Provider: "openai", APIKey: "key"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}
