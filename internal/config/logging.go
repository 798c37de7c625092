package config

import (
	"context"
	"log/slog"
)

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.DebugContext(ctx, "Config: index_path", "value", s.IndexPath)
	logger.DebugContext(ctx, "Config: log_level", "value", s.LogLevel)
	logger.DebugContext(ctx, "Config: query.max_results", "value", s.Query.MaxResults)
}

// LogServe logs the settings that only matter when serving
func LogServe(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: serve.transport", "value", s.Serve.Transport)
	if s.Serve.Transport != TransportStdio {
		logger.InfoContext(ctx, "Config: serve.host", "value", s.Serve.Host)
		logger.InfoContext(ctx, "Config: serve.port", "value", s.Serve.Port)
	}
	logger.InfoContext(ctx, "Config: serve.max_read_bytes", "value", s.Serve.MaxReadBytes)
	logger.InfoContext(ctx, "Config: query.cache_size", "value", s.Query.CacheSize)

	logger.InfoContext(ctx, "Config: auth.type", "value", s.Auth.Type)
	switch s.Auth.Type {
	case AuthTypeBasic:
		logger.InfoContext(ctx, "Config: auth.basic.username", "value", s.Auth.Basic.Username)
		logger.InfoContext(ctx, "Config: auth.basic.password", "value", "****")
	case AuthTypeAPIKey:
		logger.InfoContext(ctx, "Config: auth.api_keys", "count", len(s.Auth.APIKeys))
	}
}

// AuthSettingsLogValue returns a slog.Value for AuthSettings with masked data
func AuthSettingsLogValue(s AuthSettings) slog.Value {
	keys := make([]string, len(s.APIKeys))
	for i := range s.APIKeys {
		keys[i] = "****"
	}
	return slog.GroupValue(
		slog.String("type", s.Type),
		slog.String("username", s.Basic.Username),
		slog.String("password", "****"),
		slog.Any("api_keys", keys),
	)
}

// SettingsLogValue returns a slog.Value for Settings with masked data
func SettingsLogValue(s Settings) slog.Value {
	return slog.GroupValue(
		slog.String("index_path", s.IndexPath),
		slog.String("log_level", s.LogLevel),
		slog.Group("query",
			slog.Int("max_results", s.Query.MaxResults),
			slog.Int("cache_size", s.Query.CacheSize),
		),
		slog.Group("serve",
			slog.String("transport", s.Serve.Transport),
			slog.String("host", s.Serve.Host),
			slog.Int("port", s.Serve.Port),
			slog.Int64("max_read_bytes", s.Serve.MaxReadBytes),
		),
		slog.Any("auth", AuthSettingsLogValue(s.Auth)),
	)
}
