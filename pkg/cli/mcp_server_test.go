package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/lint"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/rules"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// connectTestClient starts the lint server on in-memory transports and returns a client session
func connectTestClient(t *testing.T) *mcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	server := NewMCPServer(rules.Default())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport)
	if err != nil {
		t.Fatalf("failed to connect server: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "canvas-lint-test", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport)
	if err != nil {
		t.Fatalf("failed to connect client: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func callLintTool(t *testing.T, session *mcp.ClientSession, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: LintToolName, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	return result
}

func textContents(t *testing.T, result *mcp.CallToolResult) []string {
	t.Helper()
	var texts []string
	for _, c := range result.Content {
		text, ok := c.(*mcp.TextContent)
		if !ok {
			t.Fatalf("expected text content, got %T", c)
		}
		texts = append(texts, text.Text)
	}
	return texts
}

func TestMCPServerListsLintTool(t *testing.T) {
	session := connectTestClient(t)

	tools, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(tools.Tools) != 1 || tools.Tools[0].Name != LintToolName {
		t.Fatalf("expected only %s, got %+v", LintToolName, tools.Tools)
	}
	if !strings.Contains(tools.Tools[0].Description, "'=' prefix") {
		t.Errorf("unexpected description: %s", tools.Tools[0].Description)
	}
}

func TestMCPLintToolContent(t *testing.T) {
	session := connectTestClient(t)

	result := callLintTool(t, session, map[string]any{"content": failingDoc, "name": "home.pa.yaml"})
	if result.IsError {
		t.Fatalf("findings are not tool errors: %+v", result)
	}

	texts := textContents(t, result)
	if len(texts) != 2 {
		t.Fatalf("expected text and JSON content, got %d items", len(texts))
	}
	if !strings.Contains(texts[0], "❌ Validation Failed: 2 error(s) in home.pa.yaml") {
		t.Errorf("unexpected text report:\n%s", texts[0])
	}

	var report lint.JSONReport
	if err := json.Unmarshal([]byte(texts[1]), &report); err != nil {
		t.Fatalf("second content is not a JSON report: %v", err)
	}
	if report.File != "home.pa.yaml" || report.Errors != 2 || report.Passed {
		t.Errorf("unexpected JSON report: %+v", report)
	}
}

func TestMCPLintToolPath(t *testing.T) {
	dir := writeFiles(t, map[string]string{"home.yaml": passingDoc})
	session := connectTestClient(t)

	result := callLintTool(t, session, map[string]any{"path": filepath.Join(dir, "home.yaml")})
	texts := textContents(t, result)
	if result.IsError || !strings.Contains(texts[0], "✅ Validation Passed") {
		t.Errorf("expected a passing report, got %+v", texts)
	}
}

func TestMCPLintToolErrors(t *testing.T) {
	session := connectTestClient(t)

	tests := []struct {
		name     string
		args     map[string]any
		contains string
	}{
		{name: "no input", args: map[string]any{}, contains: "one of path or content is required"},
		{name: "both inputs", args: map[string]any{"path": "a.yaml", "content": "a: 1"}, contains: "not both"},
		{name: "missing file", args: map[string]any{"path": filepath.Join(t.TempDir(), "missing.yaml")}, contains: "not found"},
		{name: "malformed yaml", args: map[string]any{"content": "Screens: [Home\n"}, contains: "validation could not run"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callLintTool(t, session, tt.args)
			if !result.IsError {
				t.Fatalf("expected a tool error, got %+v", result)
			}
			if texts := textContents(t, result); !strings.Contains(texts[0], tt.contains) {
				t.Errorf("expected %q in %q", tt.contains, texts[0])
			}
		})
	}
}
