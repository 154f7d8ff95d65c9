package middleware

import (
	"bytes"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// TestSecurityHeaders tests that security headers are properly set
func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name        string
		config      SecurityHeadersConfig
		hasTLS      bool
		wantHSTS    bool
		wantIsolate bool
	}{
		{
			name:     "HSTS enabled without TLS",
			config:   SecurityHeadersConfig{EnableHSTS: true},
			wantHSTS: true,
		},
		{
			name:     "HSTS disabled with TLS",
			hasTLS:   true,
			wantHSTS: true,
		},
		{
			name:     "HSTS disabled without TLS",
			wantHSTS: false,
		},
		{
			name:        "cross-origin isolation",
			config:      SecurityHeadersConfig{EnableCrossOriginIsolation: true},
			wantIsolate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.hasTLS {
				req.TLS = &tls.ConnectionState{}
			}
			rec := httptest.NewRecorder()

			SecurityHeaders(tt.config)(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
			assert.Contains(t, rec.Header().Get("Permissions-Policy"), "geolocation=()")

			if tt.wantHSTS {
				assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")
			} else {
				assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
			}

			if tt.wantIsolate {
				assert.Equal(t, "same-origin", rec.Header().Get("Cross-Origin-Opener-Policy"))
				assert.Equal(t, "require-corp", rec.Header().Get("Cross-Origin-Embedder-Policy"))
			} else {
				assert.Empty(t, rec.Header().Get("Cross-Origin-Opener-Policy"))
			}
		})
	}
}

// TestCORS tests CORS header handling
func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		method         string
		wantCORS       bool
		wantStatus     int
	}{
		{
			name:           "allowed origin",
			allowedOrigins: []string{"https://dash.example.com"},
			requestOrigin:  "https://dash.example.com",
			method:         http.MethodPost,
			wantCORS:       true,
			wantStatus:     http.StatusOK,
		},
		{
			name:           "disallowed origin",
			allowedOrigins: []string{"https://dash.example.com"},
			requestOrigin:  "https://evil.example.net",
			method:         http.MethodPost,
			wantStatus:     http.StatusOK,
		},
		{
			name:           "no origin header",
			allowedOrigins: []string{"https://dash.example.com"},
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
		},
		{
			name:           "empty allowed origins list",
			allowedOrigins: nil,
			requestOrigin:  "https://dash.example.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
		},
		{
			name:           "preflight",
			allowedOrigins: []string{"https://dash.example.com"},
			requestOrigin:  "https://dash.example.com",
			method:         http.MethodOptions,
			wantCORS:       true,
			wantStatus:     http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/mcp", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}
			rec := httptest.NewRecorder()

			CORS(tt.allowedOrigins)(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "GET, POST, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Cloudflare-Account-ID")
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Mcp-Session-Id")

			if tt.wantCORS {
				assert.Equal(t, tt.requestOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "Origin", rec.Header().Get("Vary"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

// TestValidateAllowedOrigins tests CORS origin validation
func TestValidateAllowedOrigins(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      []string
		wantError bool
	}{
		{name: "empty string", input: "", want: nil},
		{name: "blank string", input: "  ", want: nil},
		{name: "single valid origin", input: "https://example.com", want: []string{"https://example.com"}},
		{
			name:  "multiple valid origins",
			input: "https://example.com,http://localhost:6274",
			want:  []string{"https://example.com", "http://localhost:6274"},
		},
		{name: "trailing slash normalized", input: "https://example.com/", want: []string{"https://example.com"}},
		{
			name:  "whitespace trimmed",
			input: " https://example.com , https://another.com ",
			want:  []string{"https://example.com", "https://another.com"},
		},
		{name: "invalid URL format", input: "not-a-url", wantError: true},
		{name: "missing scheme", input: "example.com", wantError: true},
		{name: "invalid scheme", input: "ftp://example.com", wantError: true},
		{name: "path not allowed", input: "https://example.com/path", wantError: true},
		{name: "query not allowed", input: "https://example.com?x=1", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAllowedOrigins(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestMaxRequestSize tests request body size limiting middleware
func TestMaxRequestSize(t *testing.T) {
	tests := []struct {
		name          string
		maxBytes      int64
		bodySize      int
		wantStatus    int
		wantBytesRead int
	}{
		{name: "within limit", maxBytes: 1024, bodySize: 100, wantStatus: http.StatusOK, wantBytesRead: 100},
		{name: "exactly at limit", maxBytes: 1024, bodySize: 1024, wantStatus: http.StatusOK, wantBytesRead: 1024},
		{name: "exceeds limit", maxBytes: 1024, bodySize: 2048, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "disabled with zero", maxBytes: 0, bodySize: 10000, wantStatus: http.StatusOK, wantBytesRead: 10000},
		{name: "disabled with negative", maxBytes: -1, bodySize: 10000, wantStatus: http.StatusOK, wantBytesRead: 10000},
		{name: "empty body", maxBytes: 1024, bodySize: 0, wantStatus: http.StatusOK, wantBytesRead: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bytesRead int
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					return
				}
				bytesRead = len(body)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(strings.Repeat("a", tt.bodySize)))
			req.ContentLength = int64(tt.bodySize)
			rec := httptest.NewRecorder()

			MaxRequestSize(tt.maxBytes)(handler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBytesRead, bytesRead)
		})
	}
}

// TestMaxRequestSizeChunkedTransfer tests handling of chunked transfer encoding
func TestMaxRequestSizeChunkedTransfer(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(strings.Repeat("a", 200)))
	req.ContentLength = -1
	rec := httptest.NewRecorder()

	MaxRequestSize(100)(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
