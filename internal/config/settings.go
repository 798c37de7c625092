package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Auth type constants
const (
	AuthTypeNone   = "none"
	AuthTypeBasic  = "basic"
	AuthTypeAPIKey = "apikey"
)

// Transport constants
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http" // streamable HTTP
)

const envPrefix = "TERMDEX"

// AuthSettings configuration for authentication
type AuthSettings struct {
	Type    string            `mapstructure:"type"` // AuthTypeNone, AuthTypeBasic, or AuthTypeAPIKey
	Basic   BasicAuthSettings `mapstructure:"basic"`
	APIKeys []string          `mapstructure:"api_keys"`
}

// BasicAuthSettings configuration for basic auth
type BasicAuthSettings struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// QuerySettings configuration for ranked retrieval
type QuerySettings struct {
	MaxResults int `mapstructure:"max_results"`
	CacheSize  int `mapstructure:"cache_size"`
}

// ServeSettings configuration for the MCP server
type ServeSettings struct {
	Transport    string `mapstructure:"transport"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	MaxReadBytes int64  `mapstructure:"max_read_bytes"`
}

// Settings application settings
type Settings struct {
	IndexPath string        `mapstructure:"index_path"`
	LogLevel  string        `mapstructure:"log_level"`
	Query     QuerySettings `mapstructure:"query"`
	Serve     ServeSettings `mapstructure:"serve"`
	Auth      AuthSettings  `mapstructure:"auth"`
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("index_path", defaultIndexPath())
	v.SetDefault("log_level", "info")
	v.SetDefault("query.max_results", 10)
	v.SetDefault("query.cache_size", 256)
	v.SetDefault("serve.transport", TransportStdio)
	v.SetDefault("serve.host", "0.0.0.0")
	v.SetDefault("serve.port", 8080)
	v.SetDefault("serve.max_read_bytes", int64(256*1024)) // 256KB
	v.SetDefault("auth.type", AuthTypeNone)

	// Environment variables
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("index_path", envPrefix+"_INDEX_PATH")
	_ = v.BindEnv("log_level", envPrefix+"_LOG_LEVEL")
	_ = v.BindEnv("query.max_results", envPrefix+"_QUERY_MAX_RESULTS")
	_ = v.BindEnv("query.cache_size", envPrefix+"_QUERY_CACHE_SIZE")
	_ = v.BindEnv("serve.transport", envPrefix+"_SERVE_TRANSPORT")
	_ = v.BindEnv("serve.host", envPrefix+"_SERVE_HOST")
	_ = v.BindEnv("serve.port", envPrefix+"_SERVE_PORT")
	_ = v.BindEnv("serve.max_read_bytes", envPrefix+"_SERVE_MAX_READ_BYTES")
	_ = v.BindEnv("auth.type", envPrefix+"_AUTH_TYPE")
	_ = v.BindEnv("auth.basic.username", envPrefix+"_AUTH_BASIC_USERNAME")
	_ = v.BindEnv("auth.basic.password", envPrefix+"_AUTH_BASIC_PASSWORD")
	_ = v.BindEnv("auth.api_keys", envPrefix+"_AUTH_API_KEYS")

	// Bind CLI flags if provided (highest priority). Flags a command does not
	// register are looked up as nil and ignored.
	if flags != nil {
		_ = v.BindPFlag("index_path", flags.Lookup("index"))
		_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
		_ = v.BindPFlag("query.max_results", flags.Lookup("n"))
		_ = v.BindPFlag("serve.transport", flags.Lookup("transport"))
		_ = v.BindPFlag("serve.host", flags.Lookup("host"))
		_ = v.BindPFlag("serve.port", flags.Lookup("port"))
		_ = v.BindPFlag("auth.type", flags.Lookup("auth-type"))
		_ = v.BindPFlag("auth.basic.username", flags.Lookup("auth-basic-username"))
		_ = v.BindPFlag("auth.basic.password", flags.Lookup("auth-basic-password"))
		_ = v.BindPFlag("auth.api_keys", flags.Lookup("auth-api-keys"))
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle explicit parsing of API keys if provided via env var as comma-separated string
	apiKeysEnv := os.Getenv(envPrefix + "_AUTH_API_KEYS")
	if apiKeysEnv != "" {
		if len(settings.Auth.APIKeys) == 0 || (len(settings.Auth.APIKeys) == 1 && strings.Contains(settings.Auth.APIKeys[0], ",")) {
			settings.Auth.APIKeys = strings.Split(apiKeysEnv, ",")
		}
	}

	// Trim spaces from API keys and drop empty ones
	var keys []string
	for _, key := range settings.Auth.APIKeys {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	settings.Auth.APIKeys = keys

	settings.IndexPath = expandHomeDir(settings.IndexPath)
	settings.LogLevel = strings.ToLower(strings.TrimSpace(settings.LogLevel))

	return &settings, nil
}

// defaultIndexPath returns the default snapshot location
func defaultIndexPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".termdex", "index.json")
	}
	return filepath.Join(home, ".termdex", "index.json")
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// ParseLogLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
	return level, nil
}

// ValidateSettings checks for conflicting or out of range configuration.
func ValidateSettings(s *Settings) error {
	if strings.TrimSpace(s.IndexPath) == "" {
		return errors.New("index path cannot be empty")
	}

	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}

	if s.Query.MaxResults <= 0 {
		return errors.New("query max results must be positive")
	}
	if s.Query.CacheSize <= 0 {
		return errors.New("query cache size must be positive")
	}

	// Validate transport type
	switch s.Serve.Transport {
	case TransportStdio, TransportSSE, TransportHTTP:
		// valid
	default:
		return errors.New("transport must be 'stdio', 'sse' or 'http', got: " + s.Serve.Transport)
	}

	if s.Serve.MaxReadBytes <= 0 {
		return errors.New("serve max read bytes must be positive")
	}

	return validateAuthSettings(&s.Auth)
}

// validateAuthSettings rejects mutually exclusive or incomplete auth config
func validateAuthSettings(a *AuthSettings) error {
	hasBasicCreds := a.Basic.Username != "" || a.Basic.Password != ""
	hasAPIKeys := len(a.APIKeys) > 0

	switch a.Type {
	case AuthTypeNone, "":
		if hasBasicCreds || hasAPIKeys {
			return errors.New("auth-type 'none' is incompatible with auth credentials")
		}
	case AuthTypeBasic:
		if hasAPIKeys {
			return errors.New("auth-type 'basic' is mutually exclusive with auth-api-keys")
		}
		if a.Basic.Username == "" || a.Basic.Password == "" {
			return errors.New("auth-type 'basic' requires both username and password")
		}
	case AuthTypeAPIKey:
		if hasBasicCreds {
			return errors.New("auth-type 'apikey' is mutually exclusive with basic auth credentials")
		}
		if !hasAPIKeys {
			return errors.New("auth-type 'apikey' requires at least one API key")
		}
	default:
		return errors.New("unknown auth-type: " + a.Type)
	}

	return nil
}
