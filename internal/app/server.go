package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sha1n/termdex/internal/auth"
	"github.com/sha1n/termdex/internal/config"
)

const (
	// SSEPath serves the SSE transport
	SSEPath = "/sse"
	// StreamablePath serves the streamable HTTP transport
	StreamablePath = "/mcp"

	shutdownTimeout = 5 * time.Second
)

// StartHTTPServer serves MCP over HTTP until ctx is done
func StartHTTPServer(ctx context.Context, s *mcp.Server, settings *config.Settings) error {
	srv, err := NewHTTPServer(s, settings)
	if err != nil {
		return err
	}

	// Graceful shutdown when context is cancelled
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown failed", "error", err)
		}
	})
	defer stop()

	slog.Info("Server listening (HTTP)", "addr", srv.Addr, "auth_type", settings.Auth.Type)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewHTTPServer creates an HTTP server for the configured transport, guarded by
// the authentication middleware
func NewHTTPServer(s *mcp.Server, settings *config.Settings) (*http.Server, error) {
	// Factory function returns the server instance for each request
	getServer := func(r *http.Request) *mcp.Server {
		return s
	}

	mux := http.NewServeMux()
	mux.HandleFunc(auth.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	switch settings.Serve.Transport {
	case config.TransportSSE:
		mux.Handle(SSEPath, mcp.NewSSEHandler(getServer, nil))
	case config.TransportHTTP:
		mux.Handle(StreamablePath, mcp.NewStreamableHTTPHandler(getServer, nil))
	default:
		return nil, fmt.Errorf("transport %q is not served over HTTP", settings.Serve.Transport)
	}

	authMiddleware, err := auth.NewMiddleware(settings.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", settings.Serve.Host, settings.Serve.Port),
		Handler:           authMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}
