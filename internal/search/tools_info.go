package search

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// InfoArgument is empty; index_info takes no parameters.
type InfoArgument struct{}

// InfoHandler handles the index_info MCP tool.
type InfoHandler struct {
	service *Service
}

// NewInfoHandler creates a new info handler.
func NewInfoHandler(service *Service) *InfoHandler {
	return &InfoHandler{
		service: service,
	}
}

// Handle reports index statistics.
func (h *InfoHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args InfoArgument) (*mcp.CallToolResult, any, error) {
	info := h.service.Info()
	text := fmt.Sprintf("**Index**: `%s`\n**Documents**: %d\n**Terms**: %d\n",
		h.service.IndexPath(), info.DocumentCount, info.TermCount)
	return textResult(text), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *InfoHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "index_info",
		Description: "Report the number of indexed documents and distinct terms",
	}
}

// RegisterInfoTool registers the info tool with an MCP server.
func RegisterInfoTool(server *mcp.Server, service *Service) {
	handler := NewInfoHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
