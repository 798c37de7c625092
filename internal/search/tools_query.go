package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sha1n/termdex/internal/tokenizer"
)

// QueryArgument defines query parameters.
type QueryArgument struct {
	Query string `json:"query" jsonschema:"free text query matched case-insensitively against indexed terms"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return"`
}

// QueryHandler handles the query_index MCP tool.
type QueryHandler struct {
	service *Service
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(service *Service) *QueryHandler {
	return &QueryHandler{
		service: service,
	}
}

// Handle runs the query and returns formatted results.
func (h *QueryHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args QueryArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Query) == "" {
		return errorResult("Query cannot be empty"), nil, nil
	}

	results, err := h.service.Query(args.Query, args.Limit)
	if errors.Is(err, ErrEmptyQuery) {
		return errorResult(fmt.Sprintf("Query '%s' has no searchable terms (terms need more than %d characters)", args.Query, tokenizer.MinTermLength)), nil, nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("Query failed: %s", err)), nil, nil
	}

	if len(results) == 0 {
		return textResult(fmt.Sprintf("No results found for query: %s", args.Query)), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d results for '%s':\n\n", len(results), args.Query)
	for i, r := range results {
		fmt.Fprintf(&sb, "### %d. %s\n", i+1, r.Path)
		fmt.Fprintf(&sb, "**Score**: %.4f\n\n", r.Score)
	}

	return textResult(sb.String()), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *QueryHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "query_index",
		Description: "Rank indexed local documents against a free text query using TF-IDF",
	}
}

// RegisterQueryTool registers the query tool with an MCP server.
func RegisterQueryTool(server *mcp.Server, service *Service) {
	handler := NewQueryHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	result := textResult(text)
	result.IsError = true
	return result
}
