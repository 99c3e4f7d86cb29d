package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthMiddleware(t *testing.T) {
	handler := NewHandler(nil, nil, nil, nil, nil, nil, nil, nil)
	server := NewServer(handler, "secret-key", "")

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"bearer wrong key", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/api/tags", nil)
		for k, v := range tt.headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)

		if w.Code != tt.wantStatus {
			t.Errorf("%s: expected status %d, got %d", tt.name, tt.wantStatus, w.Code)
		}
	}
}

func TestRootEndpoint(t *testing.T) {
	handler := NewHandler(nil, nil, nil, nil, nil, nil, nil, nil)
	server := NewServer(handler, "", "")

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRootEndpointUsesBaseUrl(t *testing.T) {
	handler := NewHandler(nil, nil, nil, nil, nil, nil, nil, nil)
	server := NewServer(handler, "", "https://leads.example.com/")

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	var body struct {
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid root response: %v", err)
	}
	if got := body.Endpoints["health"]; got != "https://leads.example.com/health" {
		t.Errorf("expected absolute health link, got %q", got)
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	handler := NewHandler(nil, nil, nil, nil, nil, nil, nil, nil)
	server := NewServer(handler, "", "")

	req := httptest.NewRequest("GET", "/api/tags", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 when API is disabled, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := NewHandler(nil, nil, nil, nil, nil, nil, nil, nil)
	server := NewServer(handler, "", "")

	req := httptest.NewRequest("OPTIONS", "/health", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard CORS origin, got %q", got)
	}
}
