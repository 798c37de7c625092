package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"github.com/sha1n/termdex/internal/config"
	"github.com/sha1n/termdex/internal/extract"
	"github.com/sha1n/termdex/internal/index"
	mcputil "github.com/sha1n/termdex/internal/mcp"
	"github.com/sha1n/termdex/internal/scoring"
	"github.com/sha1n/termdex/internal/search"
)

// RunParams contains dependencies for the run functions
type RunParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	OpenIndex         func(*config.Settings) (*index.Engine, error)
	CreateServer      func(*config.Settings, *index.Engine, string) (*mcp.Server, error)
	StartHTTPServer   func(context.Context, *mcp.Server, *config.Settings) error
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
	LogOutput         io.Writer     // Optional: defaults to os.Stderr
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:    config.LoadSettingsWithFlags,
		ValidSettings:   config.ValidateSettings,
		OpenIndex:       OpenIndex,
		CreateServer:    CreateMCPServer,
		StartHTTPServer: StartHTTPServer,
	}
}

// Env is what an index command operates on
type Env struct {
	Settings *config.Settings
	Index    *index.Engine
	Out      io.Writer
}

// IndexCommand runs against an opened index
type IndexCommand func(ctx context.Context, env *Env, args []string) error

// OpenIndex loads the snapshot named by the settings with the default scoring
// model and extractors
func OpenIndex(settings *config.Settings) (*index.Engine, error) {
	return index.Open(settings.IndexPath, scoring.NewTfIdf(), extract.DefaultRegistry())
}

// CreateMCPServer creates the MCP server with the search tools registered
func CreateMCPServer(settings *config.Settings, engine *index.Engine, version string) (*mcp.Server, error) {
	svc, err := search.NewService(engine, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}

	return mcputil.CreateServer(mcputil.ServerConfig{
		Name:    "termdex",
		Version: version,
		Search:  svc,
	}), nil
}

// RunIndexCommand loads settings, opens the index and runs command against it
func RunIndexCommand(ctx context.Context, params RunParams, flags *pflag.FlagSet, out io.Writer, args []string, command IndexCommand) error {
	settings, err := prepare(params, flags)
	if err != nil {
		return err
	}

	engine, err := params.OpenIndex(settings)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}

	return command(ctx, &Env{Settings: settings, Index: engine, Out: out}, args)
}

// RunServe serves the index over MCP until ctx is done or the transport closes
func RunServe(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	settings, err := prepare(params, flags)
	if err != nil {
		return err
	}

	slog.Info("Starting termdex MCP server", "version", version)
	config.LogServe(settings, slog.Default())

	engine, err := params.OpenIndex(settings)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	info := engine.GetInfo()
	slog.Info("Index loaded", "path", settings.IndexPath, "documents", info.DocumentCount, "terms", info.TermCount)

	mcpServer, err := params.CreateServer(settings, engine, version)
	if err != nil {
		return err
	}

	if settings.Serve.Transport == config.TransportStdio {
		// Use custom transport if provided (for testing), otherwise use stdio
		transport := params.CustomIOTransport
		if transport == nil {
			transport = &mcp.StdioTransport{}
		}
		return mcpServer.Run(ctx, transport)
	}

	slog.Info("Starting HTTP server", "transport", settings.Serve.Transport, "host", settings.Serve.Host, "port", settings.Serve.Port)
	return params.StartHTTPServer(ctx, mcpServer, settings)
}

// prepare loads and validates settings and configures logging
func prepare(params RunParams, flags *pflag.FlagSet) (*config.Settings, error) {
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := params.ValidSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Configure logging - always use stderr so stdout stays clean for results and stdio transport
	level, err := config.ParseLogLevel(settings.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	output := params.LogOutput
	if output == nil {
		output = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})))

	config.Log(settings)
	return settings, nil
}

// AddCommand indexes every path argument and saves the index
func AddCommand(ctx context.Context, env *Env, paths []string) error {
	start := time.Now()
	report, invalid, err := applyToPaths(env, paths, env.Index.Add)
	if err != nil {
		return err
	}
	slog.Info("Added to index", "paths", len(paths), "elapsed", time.Since(start))

	PrintAddReport(env.Out, report)
	return invalidPaths(invalid, len(paths))
}

// RemoveCommand removes every path argument from the index and saves it
func RemoveCommand(ctx context.Context, env *Env, paths []string) error {
	report, invalid, err := applyToPaths(env, paths, env.Index.Remove)
	if err != nil {
		return err
	}

	PrintRemoveReport(env.Out, report)
	return invalidPaths(invalid, len(paths))
}

// PruneCommand drops documents whose files no longer exist and saves the index
func PruneCommand(ctx context.Context, env *Env, _ []string) error {
	removed := env.Index.Prune()
	if err := env.Index.Save(); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	_, _ = fmt.Fprintf(env.Out, "Pruned %d documents from the index that no longer exist.\n", removed)
	return nil
}

// RefreshCommand re-indexes documents modified since they were indexed and saves the index
func RefreshCommand(ctx context.Context, env *Env, _ []string) error {
	start := time.Now()
	report := env.Index.Refresh()
	if err := env.Index.Save(); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	slog.Info("Refreshed index", "elapsed", time.Since(start))

	PrintAddReport(env.Out, report)
	return nil
}

// QueryCommand prints the documents best matching the query words
func QueryCommand(ctx context.Context, env *Env, words []string) error {
	start := time.Now()
	query := strings.Join(words, " ")
	results := env.Index.Query(query, env.Settings.Query.MaxResults)
	slog.Info("Queried the index", "results", len(results), "elapsed", time.Since(start))

	PrintResults(env.Out, query, results)
	return nil
}

// InfoCommand prints index statistics
func InfoCommand(ctx context.Context, env *Env, _ []string) error {
	PrintInfo(env.Out, env.Index.GetInfo())
	return nil
}

// applyToPaths runs op for each path and saves the index. Invalid paths are
// printed and counted; any other error aborts the batch without saving.
func applyToPaths(env *Env, paths []string, op func(string) (index.Report, error)) (index.Report, int, error) {
	var report index.Report
	invalid := 0
	for _, path := range paths {
		r, err := op(path)
		if errors.Is(err, index.ErrInvalidPath) {
			_, _ = fmt.Fprintln(env.Out, err)
			invalid++
			continue
		}
		if err != nil {
			return report, invalid, err
		}
		report.Merge(r)
	}

	if err := env.Index.Save(); err != nil {
		return report, invalid, fmt.Errorf("failed to save index: %w", err)
	}
	return report, invalid, nil
}

func invalidPaths(invalid, total int) error {
	if invalid == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d paths skipped: %w", invalid, total, index.ErrInvalidPath)
}
