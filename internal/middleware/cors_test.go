package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		method         string
		wantStatus     int
		wantOrigin     string
	}{
		{
			name:           "no origins configured denies all",
			allowedOrigins: []string{},
			requestOrigin:  "https://desk.example.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantOrigin:     "",
		},
		{
			name:           "allowed origin gets header",
			allowedOrigins: []string{"https://desk.example.com"},
			requestOrigin:  "https://desk.example.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantOrigin:     "https://desk.example.com",
		},
		{
			name:           "second configured origin also allowed",
			allowedOrigins: []string{"https://desk.example.com", "https://staging.example.com"},
			requestOrigin:  "https://staging.example.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantOrigin:     "https://staging.example.com",
		},
		{
			name:           "disallowed origin rejected on preflight",
			allowedOrigins: []string{"https://desk.example.com"},
			requestOrigin:  "https://evil.example.net",
			method:         http.MethodOptions,
			wantStatus:     http.StatusForbidden,
			wantOrigin:     "",
		},
		{
			name:           "preflight returns no content",
			allowedOrigins: []string{"https://desk.example.com"},
			requestOrigin:  "https://desk.example.com",
			method:         http.MethodOptions,
			wantStatus:     http.StatusNoContent,
			wantOrigin:     "https://desk.example.com",
		},
		{
			name:           "origin match is case insensitive",
			allowedOrigins: []string{"HTTPS://DESK.EXAMPLE.COM"},
			requestOrigin:  "https://desk.example.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantOrigin:     "https://desk.example.com",
		},
		{
			name:           "no origin header skips CORS",
			allowedOrigins: []string{"https://desk.example.com"},
			requestOrigin:  "",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantOrigin:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.allowedOrigins

			handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/projects", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestCORSPreflightHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://desk.example.com"}

	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://desk.example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	for _, header := range []string{
		"Access-Control-Allow-Methods",
		"Access-Control-Allow-Headers",
		"Access-Control-Max-Age",
	} {
		if rec.Header().Get(header) == "" {
			t.Errorf("%s not set on preflight", header)
		}
	}
}
