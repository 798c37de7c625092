package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sha1n/termdex/internal/config"
)

func newTestMCPServer() *mcp.Server {
	impl := &mcp.Implementation{Name: "test", Version: "1.0"}
	return mcp.NewServer(impl, nil)
}

func serveSettings(transport string, authSettings config.AuthSettings) *config.Settings {
	return &config.Settings{
		Serve: config.ServeSettings{Transport: transport, Host: "localhost", Port: 8080},
		Auth:  authSettings,
	}
}

var basicAuth = config.AuthSettings{
	Type:  config.AuthTypeBasic,
	Basic: config.BasicAuthSettings{Username: "admin", Password: "secret"},
}

func TestNewHTTPServer_Addr(t *testing.T) {
	for _, transport := range []string{config.TransportSSE, config.TransportHTTP} {
		srv, err := NewHTTPServer(newTestMCPServer(), serveSettings(transport, config.AuthSettings{Type: config.AuthTypeNone}))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", transport, err)
		}
		if srv.Addr != "localhost:8080" {
			t.Errorf("%s: expected addr 'localhost:8080', got '%s'", transport, srv.Addr)
		}
		if srv.ReadHeaderTimeout != 10*time.Second {
			t.Errorf("%s: expected read header timeout 10s, got %v", transport, srv.ReadHeaderTimeout)
		}
	}
}

func TestNewHTTPServer_StdioRejected(t *testing.T) {
	_, err := NewHTTPServer(newTestMCPServer(), serveSettings(config.TransportStdio, config.AuthSettings{Type: config.AuthTypeNone}))
	if err == nil {
		t.Error("Expected error for stdio transport")
	}
}

func TestNewHTTPServer_InvalidAuth(t *testing.T) {
	settings := serveSettings(config.TransportSSE, config.AuthSettings{Type: config.AuthTypeBasic})

	_, err := NewHTTPServer(newTestMCPServer(), settings)
	if err == nil {
		t.Error("Expected error for invalid auth settings")
	}
}

func TestNewHTTPServer_HealthEndpoint(t *testing.T) {
	srv, err := NewHTTPServer(newTestMCPServer(), serveSettings(config.TransportHTTP, basicAuth))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Health must answer without credentials
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("Expected body 'ok', got '%s'", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		t.Errorf("Expected Content-Type 'text/plain; charset=utf-8', got '%s'", rec.Header().Get("Content-Type"))
	}
}

func TestNewHTTPServer_EndpointsRequireAuth(t *testing.T) {
	tests := []struct {
		transport string
		path      string
	}{
		{config.TransportSSE, SSEPath},
		{config.TransportHTTP, StreamablePath},
	}

	for _, tt := range tests {
		t.Run(tt.transport, func(t *testing.T) {
			srv, err := NewHTTPServer(newTestMCPServer(), serveSettings(tt.transport, basicAuth))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401 for %s without auth, got %d", tt.path, rec.Code)
			}
		})
	}
}

func TestNewHTTPServer_OtherTransportPathNotMounted(t *testing.T) {
	srv, err := NewHTTPServer(newTestMCPServer(), serveSettings(config.TransportHTTP, config.AuthSettings{Type: config.AuthTypeNone}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	req := httptest.NewRequest("GET", SSEPath, nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for %s on http transport, got %d", SSEPath, rec.Code)
	}
}

func TestStartHTTPServer_ShutsDownOnCancel(t *testing.T) {
	settings := serveSettings(config.TransportHTTP, config.AuthSettings{Type: config.AuthTypeNone})
	settings.Serve.Host = "127.0.0.1"
	settings.Serve.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartHTTPServer(ctx, newTestMCPServer(), settings)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shut down after cancel")
	}
}
