package registry

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// ToMCPTool converts a descriptor to the mcp-go tool definition advertised in tools/list.
func ToMCPTool(d Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(d.Description),
		mcp.WithReadOnlyHintAnnotation(d.ReadOnly),
		mcp.WithDestructiveHintAnnotation(d.Destructive),
		mcp.WithOpenWorldHintAnnotation(true),
	}

	for _, p := range d.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if !p.Optional {
			props = append(props, mcp.Required())
		}

		switch p.Type {
		case TypeNumber:
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case TypeCoordinates:
			props = append(props,
				mcp.Items(map[string]any{"type": "number"}),
				mcp.MinItems(2),
				mcp.MaxItems(2),
			)
			opts = append(opts, mcp.WithArray(p.Name, props...))
		default:
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}

	return mcp.NewTool(d.Name, opts...)
}

// ToMCP converts the envelope to an mcp-go tool result.
func (r Result) ToMCP() *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(r.Content))
	for _, block := range r.Content {
		content = append(content, mcp.NewTextContent(block.Text))
	}
	return &mcp.CallToolResult{Content: content, IsError: r.IsError}
}

// MCPHandler returns the mcp-go handler for the named tool. It never returns
// a Go error; failures are reported in the result.
func (r *Registry) MCPHandler(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := r.Dispatch(ctx, Invocation{ToolName: name, Arguments: request.GetArguments()})
		return result.ToMCP(), nil
	}
}

// Mount adds every registered tool to the MCP server.
func (r *Registry) Mount(s *mcpserver.MCPServer) {
	for _, d := range r.Descriptors() {
		s.AddTool(ToMCPTool(d), r.MCPHandler(d.Name))
	}
}
