package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/themeprefs/internal/prefs"
)

// CurrentResourceURI names the MCP resource holding the current view.
const CurrentResourceURI = "prefs://current"

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Prefs   Preferences
	Version string
	Logger  *slog.Logger // nil means slog.Default()
}

func (d MCPDeps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// NewMCPServer creates an MCP server with the preference tools and the
// current-preferences resource registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"themeprefs",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("themeprefs: read and change the UI theme and corner radius."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("get_preferences",
			mcp.WithDescription("Return the current theme, radius, display class and primary color."),
		),
		mcpGetPreferences(deps),
	)

	s.AddTool(
		mcp.NewTool("set_theme",
			mcp.WithDescription("Switch the active theme. Names outside the catalog are stored but resolve no color."),
			mcp.WithString("name", mcp.Description("Theme name, e.g. zinc or rose"), mcp.Required()),
		),
		mcpSetTheme(deps),
	)

	s.AddTool(
		mcp.NewTool("set_radius",
			mcp.WithDescription("Set the corner radius in rem."),
			mcp.WithNumber("radius", mcp.Description("Radius in rem, e.g. 0.5"), mcp.Required()),
		),
		mcpSetRadius(deps),
	)

	s.AddTool(
		mcp.NewTool("list_themes",
			mcp.WithDescription("List catalog themes with their primary colors in the current mode."),
		),
		mcpListThemes(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			CurrentResourceURI,
			"Current Preferences",
			mcp.WithResourceDescription("Current theme preferences and derived values as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCurrent(deps),
	)

	return s
}

func mcpGetPreferences(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(deps.Prefs.View())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal preferences: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSetTheme(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil || name == "" {
			return mcpError("name is required"), nil
		}

		if err := deps.Prefs.SetTheme(ctx, name); err != nil {
			return mcpError(setErrorMessage(err)), nil
		}
		if err := deps.Prefs.Flush(ctx); err != nil {
			deps.logger().Warn("waiting for preference save", "tool", req.Params.Name, "error", err)
		}

		msg := fmt.Sprintf("Theme set to %s", name)
		if _, ok := deps.Prefs.Catalog().Lookup(name); !ok {
			msg += " (not in catalog; no primary color)"
		}
		return mcpText(msg), nil
	}
}

func mcpSetRadius(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		radius, err := req.RequireFloat("radius")
		if err != nil {
			return mcpError("radius is required and must be a number"), nil
		}
		if err := validateRadius(radius); err != nil {
			return mcpError(err.Error()), nil
		}

		if err := deps.Prefs.SetRadius(ctx, radius); err != nil {
			return mcpError(setErrorMessage(err)), nil
		}
		if err := deps.Prefs.Flush(ctx); err != nil {
			deps.logger().Warn("waiting for preference save", "tool", req.Params.Name, "error", err)
		}

		return mcpText(fmt.Sprintf("Radius set to %grem", radius)), nil
	}
}

func mcpListThemes(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(ListThemes(deps.Prefs))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal themes: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceCurrent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Prefs.View())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal preferences: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func setErrorMessage(err error) string {
	if errors.Is(err, prefs.ErrNotInitialized) {
		return "preferences not loaded yet"
	}
	return fmt.Sprintf("failed to update preferences: %v", err)
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
