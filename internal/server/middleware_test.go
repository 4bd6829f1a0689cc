package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.0.0.1:5555", "10.0.0.1"},
		{"remote without port", nil, "10.0.0.1", "10.0.0.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "10.0.0.1:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 9.9.9.9 "}, "10.0.0.1:1", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.CORSOrigin = "https://example.org" })
	called := false
	h := s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodOptions, "/v1/outline", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, called)
		assert.Equal(t, "https://example.org", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.True(t, called)
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, RequestIDHeader, rec.Header().Get("Access-Control-Expose-Headers"))
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServer(t)
	var seen string
	h := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	})

	t.Run("generates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("keeps valid incoming id", func(t *testing.T) {
		id := uuid.NewString()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, id)
		rec := httptest.NewRecorder()
		h(rec, r)
		assert.Equal(t, id, seen)
		assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
	})

	t.Run("replaces malformed id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "not-a-uuid")
		h(httptest.NewRecorder(), r)
		assert.NotEqual(t, "not-a-uuid", seen)
	})

	assert.Empty(t, RequestIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := newTestServer(t)
		calls := 0
		h := s.rateLimitMiddleware(func(http.ResponseWriter, *http.Request) { calls++ })
		for range 5 {
			h(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
		}
		assert.Equal(t, 5, calls)
	})

	t.Run("per minute", func(t *testing.T) {
		s := newTestServer(t, func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: true, RequestsPerMinute: 1}
		})
		h := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

		first := httptest.NewRecorder()
		h(first, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		h(second, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Equal(t, "minute", second.Header().Get("X-RateLimit-Type"))
		assert.Equal(t, "1", second.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, second.Header().Get("Retry-After"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(second.Body).Decode(&body))
		assert.Equal(t, "rate_limit_exceeded", body["error"])
	})

	t.Run("daily data quota", func(t *testing.T) {
		s := newTestServer(t, func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: true, MaxDataPerDay: 10}
		})
		h := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.ContentLength = 50
		rec := httptest.NewRecorder()
		h(rec, r)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "data", rec.Header().Get("X-Quota-Type"))
		assert.Equal(t, "10", rec.Header().Get("X-Quota-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-Quota-Used"))
	})
}
