package search

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sha1n/termdex/internal/extract"
)

// ReadArgument defines read parameters.
type ReadArgument struct {
	Path string `json:"path" jsonschema:"absolute path of an indexed document as returned by query_index"`
}

// ReadHandler handles the read_document MCP tool.
type ReadHandler struct {
	service *Service
}

// NewReadHandler creates a new read handler.
func NewReadHandler(service *Service) *ReadHandler {
	return &ReadHandler{
		service: service,
	}
}

// Handle reads an indexed document and returns its content.
func (h *ReadHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReadArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Path) == "" {
		return errorResult("Path cannot be empty"), nil, nil
	}
	if !filepath.IsAbs(args.Path) {
		return errorResult("Path must be absolute"), nil, nil
	}

	content, err := h.service.ReadDocument(args.Path)
	switch {
	case errors.Is(err, ErrNotIndexed):
		return errorResult(fmt.Sprintf("Document is not indexed: %s", args.Path)), nil, nil
	case errors.Is(err, extract.ErrBinaryContent):
		return errorResult("Cannot display binary file content"), nil, nil
	case err != nil:
		return errorResult(fmt.Sprintf("Error reading document: %s", err)), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**File**: `%s`\n", content.Document.Path)
	fmt.Fprintf(&sb, "**Size**: %d bytes\n", content.Size)
	if content.Truncated {
		fmt.Fprintf(&sb, "**Truncated**: showing the first %d bytes\n", len(content.Text))
	}
	fmt.Fprintf(&sb, "\n```%s\n%s\n```", fenceLanguage(content.Document.Path), content.Text)

	return textResult(sb.String()), nil, nil
}

// fenceLanguage maps a document extension to a code fence language hint.
func fenceLanguage(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "md", "markdown":
		return "markdown"
	case "html", "htm", "xhtml":
		return "html"
	default:
		return "text"
	}
}

// GetToolDefinition returns the MCP tool definition.
func (h *ReadHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "read_document",
		Description: "Read the content of a document that is part of the index",
	}
}

// RegisterReadTool registers the read tool with an MCP server.
func RegisterReadTool(server *mcp.Server, service *Service) {
	handler := NewReadHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
