package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string {
	return &s
}

func TestRecoverPanic(t *testing.T) {
	app := newTestApplication(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	middleware := app.recoverPanic(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	middleware.ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
}

func TestAuthenticate(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	session := registerTestUser(t, ts, "frank", "frank@example.com")

	tests := []struct {
		name       string
		token      *string
		wantStatus int
	}{
		{
			name:       "valid token",
			token:      &session.token,
			wantStatus: http.StatusOK,
		},
		{
			name:       "no token",
			token:      nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown token",
			token:      strptr("ZZZZZZZZZZZZZZZZZZZZZZZZZZ"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			token:      strptr(""),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _, _ := ts.get(t, "/v1/users/me", tt.token)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestAnonymousAccess(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	// Public routes work without a token.
	status, _, _ := ts.get(t, "/v1/blogs", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = ts.get(t, "/v1/healthcheck", nil)
	assert.Equal(t, http.StatusOK, status)

	// Protected routes do not.
	status, _, _ = ts.post(t, "/v1/blogs/new", nil, map[string]string{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRateLimit(t *testing.T) {
	app := newTestApplication(t)
	app.config.LimiterEnabled = true
	app.config.LimiterRPS = 1
	app.config.LimiterBurst = 2

	ts := newTestServer(t, app.routes())

	// The burst allows two requests, the third is rejected.
	status, _, _ := ts.get(t, "/v1/healthcheck", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = ts.get(t, "/v1/healthcheck", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = ts.get(t, "/v1/healthcheck", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
}
