package server

import (
	"net/http"
	"testing"
	"time"

	"healthjournal/internal/store"
)

func TestHealthOK(t *testing.T) {
	env := newTestEnv(t)
	rec := performRequest(t, env.router, http.MethodGet, "/health", "", nil, nil)
	requireStatus(t, rec, http.StatusOK)

	body := decodeJSONMap(t, rec)
	if body["status"] != "ok" {
		t.Fatalf("expected status=ok, got %v", body["status"])
	}
	if body["service"] != "healthjournal-api" {
		t.Fatalf("expected service=healthjournal-api, got %v", body["service"])
	}
}

func TestProtectedEndpointRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	expired := signToken(t, testID(), map[string]any{"exp": time.Now().Add(-time.Hour).Unix()})
	otherSecret := baseTestConfig
	otherSecret.JWTSecret = "another-secret-1234567890"

	cases := []struct {
		name   string
		token  string
		detail string
	}{
		{"missing", "", "Bearer token required"},
		{"malformed", "not-a-jwt", "Invalid bearer token"},
		{"expired", expired, "Invalid bearer token"},
		{"wrong secret", signTokenWithConfig(t, otherSecret, testID(), nil), "Invalid bearer token"},
		{"no subject", signToken(t, "", nil), "Token subject missing"},
		{"blank subject", signToken(t, "", map[string]any{"sub": "   "}), "Token subject missing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := performRequest(t, env.router, http.MethodGet, "/api/v1/entries", tc.token, nil, nil)
			requireStatus(t, rec, http.StatusUnauthorized)
			if detail := responseDetail(t, rec); detail != tc.detail {
				t.Fatalf("expected %q, got %q", tc.detail, detail)
			}
		})
	}
}

func TestAudienceAndIssuerChecks(t *testing.T) {
	cfg := baseTestConfig
	cfg.JWTAudience = "healthjournal"
	cfg.JWTIssuer = "https://auth.example.test"
	env := newTestEnvWith(t, cfg, store.NewMemory())

	cases := []struct {
		name      string
		overrides map[string]any
		status    int
		detail    string
	}{
		{"valid", nil, http.StatusOK, ""},
		{"audience list", map[string]any{"aud": []string{"other", "healthjournal"}}, http.StatusOK, ""},
		{"wrong audience", map[string]any{"aud": "other"}, http.StatusUnauthorized, "Invalid token audience"},
		{"missing issuer", map[string]any{"iss": nil}, http.StatusUnauthorized, "Invalid token issuer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := signTokenWithConfig(t, cfg, testID(), tc.overrides)
			rec := performRequest(t, env.router, http.MethodGet, "/api/v1/entries", token, nil, nil)
			requireStatus(t, rec, tc.status)
			if tc.detail != "" {
				if detail := responseDetail(t, rec); detail != tc.detail {
					t.Fatalf("expected %q, got %q", tc.detail, detail)
				}
			}
		})
	}
}

func TestUsersAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	alice := signToken(t, "alice", nil)
	bob := signToken(t, "bob", nil)

	rec := performRequest(t, env.router, http.MethodPost, "/api/v1/entries", alice, map[string]any{"content": "Slept 8 hours"}, nil)
	requireStatus(t, rec, http.StatusCreated)

	rec = performRequest(t, env.router, http.MethodGet, "/api/v1/entries", bob, nil, nil)
	requireStatus(t, rec, http.StatusOK)
	if count := decodeJSONMap(t, rec)["count"]; count != float64(0) {
		t.Fatalf("expected bob to see no entries, got %v", count)
	}
}
