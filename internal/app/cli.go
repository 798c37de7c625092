package app

import "github.com/spf13/pflag"

// RegisterGlobalFlags registers the flags shared by every command
func RegisterGlobalFlags(flags *pflag.FlagSet) {
	flags.StringP("index", "i", "", "Path to the index file (default ~/.termdex/index.json)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
}

// RegisterQueryFlags registers the query command flags
func RegisterQueryFlags(flags *pflag.FlagSet) {
	flags.Int("n", 10, "Number of documents to return")
}

// RegisterServeFlags registers the serve command flags
func RegisterServeFlags(flags *pflag.FlagSet) {
	flags.StringP("transport", "t", "", "Transport type: stdio, sse or http")
	flags.StringP("host", "H", "", "Host for HTTP transports")
	flags.IntP("port", "p", 0, "Port for HTTP transports")
	flags.StringP("auth-type", "a", "", "Authentication type: none, basic, or apikey")
	flags.StringP("auth-basic-username", "u", "", "Basic auth username")
	flags.StringP("auth-basic-password", "P", "", "Basic auth password")
	flags.StringSliceP("auth-api-keys", "k", nil, "API keys (comma-separated)")
}
