package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sha1n/termdex/internal/search"
)

// ServerConfig contains configuration for creating an MCP server
type ServerConfig struct {
	Name    string
	Version string
	Search  *search.Service // Optional: registers the index tools when set
}

// CreateServer creates and configures the MCP server
func CreateServer(cfg ServerConfig) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &mcp.ServerOptions{
		Instructions: "Search a local full-text index: query_index ranks documents, read_document returns the content of a ranked path, index_info reports index size.",
	})

	if cfg.Search != nil {
		search.RegisterQueryTool(s, cfg.Search)
		search.RegisterReadTool(s, cfg.Search)
		search.RegisterInfoTool(s, cfg.Search)
	}

	return s
}
