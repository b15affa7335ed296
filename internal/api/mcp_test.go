package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/themeprefs/internal/prefs"
)

// --- helpers ---

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// slowSaves wraps a store whose pending saves never finish in time.
type slowSaves struct {
	*prefs.Store
}

func (slowSaves) Flush(context.Context) error { return context.DeadlineExceeded }

// --- tests ---

func TestNewMCPServer(t *testing.T) {
	p, _ := newTestPrefs(t)
	if s := NewMCPServer(MCPDeps{Prefs: p}); s == nil {
		t.Fatal("NewMCPServer returned nil")
	}
}

func TestMCPTool_GetPreferences(t *testing.T) {
	p, _ := newTestPrefs(t)
	handler := mcpGetPreferences(MCPDeps{Prefs: p})

	result, err := handler(ctx, makeCallToolRequest("get_preferences", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}

	var v prefs.View
	if err := json.Unmarshal([]byte(toolText(t, result)), &v); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if v.Theme != "zinc" || v.Radius != 0.5 || v.DisplayClass != "theme-zinc" {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestMCPTool_SetTheme(t *testing.T) {
	p, local := newTestPrefs(t)
	handler := mcpSetTheme(MCPDeps{Prefs: p})

	result, err := handler(ctx, makeCallToolRequest("set_theme", map[string]interface{}{
		"name": "rose",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}
	if text := toolText(t, result); text != "Theme set to rose" {
		t.Fatalf("unexpected response: %s", text)
	}
	if p.ThemeName() != "rose" {
		t.Fatalf("ThemeName = %q, want rose", p.ThemeName())
	}
	if stored, _ := local.GetItem(prefs.StorageKey); !strings.Contains(stored, `"theme":"rose"`) {
		t.Fatalf("stored record = %s, want theme rose", stored)
	}
}

func TestMCPTool_SetTheme_NotInCatalog(t *testing.T) {
	p, _ := newTestPrefs(t)
	handler := mcpSetTheme(MCPDeps{Prefs: p})

	result, err := handler(ctx, makeCallToolRequest("set_theme", map[string]interface{}{
		"name": "nonexistent",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}
	if text := toolText(t, result); !strings.Contains(text, "not in catalog") {
		t.Fatalf("unexpected response: %s", text)
	}
	if p.PrimaryColor() != "hsl()" {
		t.Fatalf("PrimaryColor = %q, want hsl()", p.PrimaryColor())
	}
}

func TestMCPTool_SetTheme_MissingName(t *testing.T) {
	p, _ := newTestPrefs(t)
	handler := mcpSetTheme(MCPDeps{Prefs: p})

	result, err := handler(ctx, makeCallToolRequest("set_theme", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing name")
	}
}

func TestMCPTool_SetTheme_NotInitialized(t *testing.T) {
	handler := mcpSetTheme(MCPDeps{Prefs: newUninitializedPrefs()})

	result, err := handler(ctx, makeCallToolRequest("set_theme", map[string]interface{}{
		"name": "red",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError || toolText(t, result) != "preferences not loaded yet" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestMCPTool_SetRadius(t *testing.T) {
	p, _ := newTestPrefs(t)
	handler := mcpSetRadius(MCPDeps{Prefs: p})

	result, err := handler(ctx, makeCallToolRequest("set_radius", map[string]interface{}{
		"radius": 0.75,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}
	if text := toolText(t, result); text != "Radius set to 0.75rem" {
		t.Fatalf("unexpected response: %s", text)
	}
	if p.Radius() != 0.75 {
		t.Fatalf("Radius = %v, want 0.75", p.Radius())
	}
}

func TestMCPTool_SetRadius_Invalid(t *testing.T) {
	p, _ := newTestPrefs(t)
	handler := mcpSetRadius(MCPDeps{Prefs: p})

	for _, args := range []map[string]interface{}{
		{},
		{"radius": "wide"},
		{"radius": -1.0},
	} {
		result, err := handler(ctx, makeCallToolRequest("set_radius", args))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Errorf("set_radius(%v) succeeded, want error", args)
		}
	}
	if p.Radius() != 0.5 {
		t.Fatalf("Radius = %v after rejected calls, want 0.5", p.Radius())
	}
}

func TestMCPTool_ListThemes(t *testing.T) {
	p, _ := newTestPrefs(t)
	handler := mcpListThemes(MCPDeps{Prefs: p})

	result, err := handler(ctx, makeCallToolRequest("list_themes", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var themes []ThemeInfo
	if err := json.Unmarshal([]byte(toolText(t, result)), &themes); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(themes) != len(p.Catalog()) {
		t.Fatalf("got %d themes, want %d", len(themes), len(p.Catalog()))
	}
	if themes[0].Name != "zinc" || !themes[0].Current {
		t.Fatalf("first theme = %+v, want current zinc", themes[0])
	}
	if themes[0].Hex == "" {
		t.Fatal("zinc has no hex color")
	}
}

func TestMCPResource_Current(t *testing.T) {
	p, _ := newTestPrefs(t)
	if err := p.SetTheme(ctx, "slate"); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}

	handler := mcpResourceCurrent(MCPDeps{Prefs: p})
	contents, err := handler(ctx, makeReadResourceRequest(CurrentResourceURI))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}

	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if tc.URI != CurrentResourceURI || tc.MIMEType != "application/json" {
		t.Fatalf("unexpected resource metadata: %s %s", tc.URI, tc.MIMEType)
	}

	var v prefs.View
	if err := json.Unmarshal([]byte(tc.Text), &v); err != nil {
		t.Fatalf("failed to parse view JSON: %v", err)
	}
	if v.Theme != "slate" || v.DisplayClass != "theme-slate" {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestMCPTool_SetFlushErrorIsLogged(t *testing.T) {
	p, _ := newTestPrefs(t)
	var logs bytes.Buffer
	deps := MCPDeps{
		Prefs:  slowSaves{p},
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	}

	tests := []struct {
		name    string
		handler func(MCPDeps) server.ToolHandlerFunc
		args    map[string]interface{}
	}{
		{"set_theme", mcpSetTheme, map[string]interface{}{"name": "rose"}},
		{"set_radius", mcpSetRadius, map[string]interface{}{"radius": 0.75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			result, err := tt.handler(deps)(ctx, makeCallToolRequest(tt.name, tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsError {
				t.Fatalf("unexpected tool error: %s", toolText(t, result))
			}
			out := logs.String()
			if !strings.Contains(out, "waiting for preference save") || !strings.Contains(out, "tool="+tt.name) {
				t.Errorf("log = %q, want flush warning for %s", out, tt.name)
			}
			if !strings.Contains(out, context.DeadlineExceeded.Error()) {
				t.Errorf("log = %q, want the flush error", out)
			}
		})
	}
}
