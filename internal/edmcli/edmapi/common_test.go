package edmapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mockServer creates a test HTTP server that simulates the EDM admin API.
// A default /auth/login handler hands out "test-token".
func mockServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	if handlers == nil {
		handlers = make(map[string]http.HandlerFunc)
	}
	if _, ok := handlers["/auth/login"]; !ok {
		handlers["/auth/login"] = func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, 0, map[string]string{"accessToken": "test-token"}, "")
		}
	}

	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// writeEnvelope answers with the backend's {code, data, message} wrapper
func writeEnvelope(w http.ResponseWriter, code int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "data": data, "message": message})
}

// decodeBody reads the JSON request body into a map
func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Errorf("decode request body: %v", err)
	}
	return body
}

// newTestService returns a Service bound to server with a fixed token
func newTestService(t *testing.T, server *httptest.Server) *Service {
	t.Helper()
	client, err := New(context.Background(), server.URL, "test-token", nil, Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return NewService(client)
}
