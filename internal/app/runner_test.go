package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"github.com/sha1n/termdex/internal/config"
	"github.com/sha1n/termdex/internal/index"
)

// noopValidate is a no-op validation function for tests
func noopValidate(*config.Settings) error {
	return nil
}

func testSettings(t *testing.T, transport string) *config.Settings {
	t.Helper()
	return &config.Settings{
		IndexPath: filepath.Join(t.TempDir(), "index.json"),
		LogLevel:  "error",
		Query:     config.QuerySettings{MaxResults: 10, CacheSize: 16},
		Serve: config.ServeSettings{
			Transport:    transport,
			Host:         "localhost",
			Port:         8080,
			MaxReadBytes: 1024,
		},
		Auth: config.AuthSettings{Type: config.AuthTypeNone},
	}
}

// testParams wires real index and server construction around fixed settings
func testParams(settings *config.Settings) RunParams {
	return RunParams{
		LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
			return settings, nil
		},
		ValidSettings: noopValidate,
		OpenIndex:     OpenIndex,
		CreateServer:  CreateMCPServer,
		LogOutput:     io.Discard,
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunServe_ErrorCases(t *testing.T) {
	failingOpen := func(*config.Settings) (*index.Engine, error) {
		return nil, errors.New("open error")
	}

	tests := []struct {
		name           string
		mutate         func(*RunParams)
		wantErrContain string
	}{
		{
			name: "LoadSettings error",
			mutate: func(p *RunParams) {
				p.LoadSettings = func(*pflag.FlagSet) (*config.Settings, error) {
					return nil, errors.New("settings error")
				}
			},
			wantErrContain: "failed to load settings",
		},
		{
			name: "ValidSettings error",
			mutate: func(p *RunParams) {
				p.ValidSettings = func(*config.Settings) error {
					return errors.New("validation error")
				}
			},
			wantErrContain: "invalid configuration",
		},
		{
			name: "OpenIndex error",
			mutate: func(p *RunParams) {
				p.OpenIndex = failingOpen
			},
			wantErrContain: "failed to open index",
		},
		{
			name: "CreateServer error",
			mutate: func(p *RunParams) {
				p.CreateServer = func(*config.Settings, *index.Engine, string) (*mcp.Server, error) {
					return nil, errors.New("create server error")
				}
			},
			wantErrContain: "create server error",
		},
		{
			name: "StartHTTPServer error",
			mutate: func(p *RunParams) {
				p.StartHTTPServer = func(context.Context, *mcp.Server, *config.Settings) error {
					return errors.New("http start error")
				}
			},
			wantErrContain: "http start error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testParams(testSettings(t, config.TransportSSE))
			tt.mutate(&params)

			err := RunServe(context.Background(), params, nil, "test")
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErrContain)
			}
			if !strings.Contains(err.Error(), tt.wantErrContain) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErrContain, err.Error())
			}
		})
	}
}

func TestRunServe_HTTPTransportsUseHTTPServer(t *testing.T) {
	for _, transport := range []string{config.TransportSSE, config.TransportHTTP} {
		t.Run(transport, func(t *testing.T) {
			started := false
			params := testParams(testSettings(t, transport))
			params.StartHTTPServer = func(_ context.Context, s *mcp.Server, _ *config.Settings) error {
				started = s != nil
				return nil
			}

			if err := RunServe(context.Background(), params, nil, "test"); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !started {
				t.Error("Expected HTTP server to be started with the MCP server")
			}
		})
	}
}

func TestRunServe_StdioWithCustomTransport(t *testing.T) {
	transportUsed := false
	params := testParams(testSettings(t, config.TransportStdio))
	params.CustomIOTransport = &mockTransport{connectCalled: &transportUsed}
	params.StartHTTPServer = func(context.Context, *mcp.Server, *config.Settings) error {
		t.Error("HTTP server must not start for stdio")
		return nil
	}

	// Use a cancelled context to avoid hanging
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = RunServe(ctx, params, nil, "test")

	if !transportUsed {
		t.Error("Custom transport Connect was not called")
	}
}

func TestDefaultRunParams(t *testing.T) {
	params := DefaultRunParams()

	if params.LoadSettings == nil {
		t.Error("LoadSettings is nil")
	}
	if params.ValidSettings == nil {
		t.Error("ValidSettings is nil")
	}
	if params.OpenIndex == nil {
		t.Error("OpenIndex is nil")
	}
	if params.CreateServer == nil {
		t.Error("CreateServer is nil")
	}
	if params.StartHTTPServer == nil {
		t.Error("StartHTTPServer is nil")
	}
}

func TestCreateMCPServer(t *testing.T) {
	settings := testSettings(t, config.TransportStdio)
	engine, err := OpenIndex(settings)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	server, err := CreateMCPServer(settings, engine, "1.0.0")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if server == nil {
		t.Error("Expected server to be created")
	}
}

func TestCreateMCPServer_InvalidSettings(t *testing.T) {
	settings := testSettings(t, config.TransportStdio)
	settings.Query.CacheSize = 0
	engine, err := OpenIndex(settings)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := CreateMCPServer(settings, engine, "1.0.0"); err == nil {
		t.Error("Expected error for zero cache size")
	}
}

func runCommand(t *testing.T, settings *config.Settings, command IndexCommand, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := RunIndexCommand(context.Background(), testParams(settings), nil, &out, args, command)
	return out.String(), err
}

func TestRunIndexCommand_OpenError(t *testing.T) {
	settings := testSettings(t, config.TransportStdio)
	writeTestFile(t, settings.IndexPath, "{broken")

	_, err := runCommand(t, settings, InfoCommand)
	if err == nil {
		t.Fatal("Expected error for corrupt index")
	}
	if !errors.Is(err, index.ErrCorruptIndex) {
		t.Errorf("Expected ErrCorruptIndex, got %v", err)
	}
	if !strings.Contains(err.Error(), "failed to open index") {
		t.Errorf("Expected open error prefix, got %q", err.Error())
	}
}

func TestIndexCommands_Lifecycle(t *testing.T) {
	settings := testSettings(t, config.TransportStdio)
	docs := t.TempDir()
	golang := filepath.Join(docs, "golang.txt")
	rust := filepath.Join(docs, "rust.txt")
	writeTestFile(t, golang, "golang golang channels")
	writeTestFile(t, rust, "rust borrow checker")
	writeTestFile(t, filepath.Join(docs, "image.bin"), "ignored")

	out, err := runCommand(t, settings, AddCommand, docs)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if out != "Indexed 2 files (1 skipped, 0 failed).\n" {
		t.Errorf("Unexpected add output: %q", out)
	}

	out, err = runCommand(t, settings, InfoCommand)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !strings.HasPrefix(out, "Documents: 2\n") {
		t.Errorf("Unexpected info output: %q", out)
	}

	out, err = runCommand(t, settings, QueryCommand, "golang", "channels")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and one result, got %q", out)
	}
	if lines[0] != "Query results for \"golang channels\":" {
		t.Errorf("Unexpected header: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], golang) {
		t.Errorf("Expected %s in result, got %q", golang, lines[1])
	}

	out, err = runCommand(t, settings, RemoveCommand, rust)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if out != "Removed 1 documents from the index.\n" {
		t.Errorf("Unexpected remove output: %q", out)
	}

	if err := os.Remove(golang); err != nil {
		t.Fatal(err)
	}
	out, err = runCommand(t, settings, PruneCommand)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if out != "Pruned 1 documents from the index that no longer exist.\n" {
		t.Errorf("Unexpected prune output: %q", out)
	}

	out, err = runCommand(t, settings, InfoCommand)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !strings.HasPrefix(out, "Documents: 0\n") {
		t.Errorf("Expected empty index, got %q", out)
	}
}

func TestAddCommand_InvalidPathStillSaves(t *testing.T) {
	settings := testSettings(t, config.TransportStdio)
	docs := t.TempDir()
	valid := filepath.Join(docs, "notes.md")
	writeTestFile(t, valid, "meeting notes")
	missing := filepath.Join(docs, "missing.txt")

	out, err := runCommand(t, settings, AddCommand, missing, valid)
	if !errors.Is(err, index.ErrInvalidPath) {
		t.Fatalf("Expected ErrInvalidPath, got %v", err)
	}
	if !strings.Contains(out, missing) {
		t.Errorf("Expected invalid path to be reported, got %q", out)
	}
	if !strings.Contains(out, "Indexed 1 files") {
		t.Errorf("Expected valid path to be indexed, got %q", out)
	}

	engine, err := OpenIndex(settings)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := engine.Document(valid); !ok {
		t.Error("Expected valid path to be saved in the index")
	}
}

func TestRefreshCommand(t *testing.T) {
	settings := testSettings(t, config.TransportStdio)
	doc := filepath.Join(t.TempDir(), "doc.txt")
	writeTestFile(t, doc, "first version")

	if _, err := runCommand(t, settings, AddCommand, doc); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	writeTestFile(t, doc, "second edition entirely")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(doc, future, future); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, settings, RefreshCommand)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if out != "Indexed 1 files (0 skipped, 0 failed).\n" {
		t.Errorf("Unexpected refresh output: %q", out)
	}

	engine, err := OpenIndex(settings)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := engine.TermFrequency("edition", doc); got != 1 {
		t.Errorf("Expected refreshed term frequency 1, got %d", got)
	}
	if got := engine.TermFrequency("first", doc); got != 0 {
		t.Errorf("Expected stale term to be gone, got %d", got)
	}
}

// mockTransport implements mcp.Transport for testing
type mockTransport struct {
	connectCalled *bool
}

func (m *mockTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	if m.connectCalled != nil {
		*m.connectCalled = true
	}
	return nil, errors.New("mock transport - no real connection")
}
