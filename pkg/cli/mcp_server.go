package cli

import (
	"context"
	"fmt"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/constants"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/lint"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/rules"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LintToolName is the name of the MCP tool that validates a document
const LintToolName = "lint_canvas_yaml"

// LintToolArgs are the arguments of the lint tool. Exactly one of Path and
// Content must be set.
type LintToolArgs struct {
	Path    string `json:"path,omitempty" jsonschema:"path of a Power Apps canvas YAML document on the server's file system"`
	Content string `json:"content,omitempty" jsonschema:"YAML source of a Power Apps canvas document to validate"`
	Name    string `json:"name,omitempty" jsonschema:"display name used in the report when content is given"`
}

// NewMCPServer creates an MCP server exposing the lint tool
func NewMCPServer(tables *rules.Tables) *mcp.Server {
	linter := lint.NewLinter(tables)

	server := mcp.NewServer(&mcp.Implementation{Name: constants.CLIName, Version: GetVersion()}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name: LintToolName,
		Description: "Validate a Power Apps canvas YAML document for generator mistakes: identifiers with spaces, " +
			"renamed or non-existent properties, formulas missing the '=' prefix, galleries without a Variant " +
			"and containers without explicit styling. Returns a text report followed by the JSON result.",
	}, func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[LintToolArgs]) (*mcp.CallToolResultFor[any], error) {
		return runLintTool(linter, params.Arguments)
	})

	return server
}

func runLintTool(linter *lint.Linter, args LintToolArgs) (*mcp.CallToolResultFor[any], error) {
	var (
		name   string
		report *lint.Report
		err    error
	)

	switch {
	case args.Path != "" && args.Content != "":
		return toolError("provide either path or content, not both"), nil
	case args.Path != "":
		name = args.Path
		report, err = linter.LintFile(args.Path)
	case args.Content != "":
		name = args.Name
		if name == "" {
			name = "document.yaml"
		}
		report, err = linter.LintBytes(name, []byte(args.Content))
	default:
		return toolError("one of path or content is required"), nil
	}

	jsonText, jsonErr := lint.FormatReportJSON(lint.NewJSONReport(name, report, err))
	if jsonErr != nil {
		return nil, jsonErr
	}

	if err != nil {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("validation could not run: %v", err)},
				&mcp.TextContent{Text: jsonText},
			},
		}, nil
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: lint.FormatReport(report, lint.RenderOptions{})},
			&mcp.TextContent{Text: jsonText},
		},
	}, nil
}

func toolError(message string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}

// RunMCPServer serves the lint tool over stdio until the client disconnects or ctx is done
func RunMCPServer(ctx context.Context, configPath string) error {
	tables, err := LoadTables(configPath, false)
	if err != nil {
		return err
	}
	return NewMCPServer(tables).Run(ctx, mcp.NewStdioTransport())
}
