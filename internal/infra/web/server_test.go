package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

type stubStats struct {
	total    int
	redeemed int
	err      error
}

func (s *stubStats) CodeCounts(context.Context) (int, int, error) {
	return s.total, s.redeemed, s.err
}

func newTestServer(apiKey string) *Server {
	l := zerolog.Nop()
	return NewServer(&stubStats{total: 10, redeemed: 4}, apiKey, &l)
}

func doRequest(t *testing.T, h http.Handler, path, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer("secret").Router(), "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz must not require auth, got %d", rec.Code)
	}
}

func TestMetricsEndpointIsOpen(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer("secret").Router(), "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint returned %d", rec.Code)
	}
}

func TestStatsAuth(t *testing.T) {
	t.Parallel()

	router := newTestServer("secret").Router()

	cases := []struct {
		name string
		auth string
		want int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"malformed", "secret", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusForbidden},
		{"valid", "Bearer secret", http.StatusOK},
	}
	for _, tc := range cases {
		if rec := doRequest(t, router, "/api/v1/stats", tc.auth); rec.Code != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestStatsRejectsWhenKeyUnset(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer("").Router(), "/api/v1/stats", "Bearer anything")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unset API key must reject every request, got %d", rec.Code)
	}
}

func TestStatsBody(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer("secret").Router(), "/api/v1/stats", "Bearer secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}

	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body["total_codes"] != 10 || body["redeemed_codes"] != 4 {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestStatsUpstreamError(t *testing.T) {
	t.Parallel()

	l := zerolog.Nop()
	srv := NewServer(&stubStats{err: errors.New("down")}, "secret", &l)
	rec := doRequest(t, srv.Router(), "/api/v1/stats", "Bearer secret")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got %d", rec.Code)
	}
}
