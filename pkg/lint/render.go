package lint

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/console"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/parser"
)

// contextRadius is the number of source lines shown around a finding in verbose mode
const contextRadius = 2

// RenderOptions controls text rendering of a report
type RenderOptions struct {
	// Verbose adds a source excerpt for every finding
	Verbose bool
	// Source is the document content, used for excerpts
	Source []byte
}

// FormatReport renders a report as human-readable text.
//
// A document with no findings gets the pass line. Otherwise the error count
// heads an IDE-parseable list of errors, followed by the warnings, if any.
func FormatReport(report *Report, opts RenderOptions) string {
	path := console.ToRelativePath(report.File)

	if report.Passed() {
		return console.FormatPassMessage(fmt.Sprintf("%s is ready for Power Apps.", path)) + "\n"
	}

	var out strings.Builder
	errs := report.Errors()
	warnings := report.Warnings()

	out.WriteString(console.FormatFailMessage(fmt.Sprintf("%d error(s) in %s", len(errs), path)))
	out.WriteString("\n")
	for _, f := range errs {
		out.WriteString(console.FormatListItem(findingLine(path, f)))
		out.WriteString("\n")
	}

	if len(warnings) > 0 {
		out.WriteString(console.FormatSectionHeader(fmt.Sprintf("⚠️  %d warning(s):", len(warnings)), string(SeverityWarning)))
		out.WriteString("\n")
		for _, f := range warnings {
			out.WriteString(console.FormatListItem(findingLine(path, f)))
			out.WriteString("\n")
		}
	}

	if opts.Verbose {
		for _, f := range report.Findings {
			out.WriteString("\n")
			out.WriteString(console.FormatError(console.Diagnostic{
				Position: console.Position{File: report.File, Line: f.Location.Line, Column: f.Location.Column},
				Severity: string(f.Severity),
				Rule:     f.RuleID,
				Message:  f.Message,
				Context:  console.ContextLines(opts.Source, f.Location.Line, contextRadius),
				Hint:     "at " + f.Path.String(),
			}))
		}
	}

	return out.String()
}

func findingLine(path string, f Finding) string {
	return fmt.Sprintf("File %q, line %d, col %d: %s", path, f.Location.Line, f.Location.Column, f.Message)
}

// FormatFailure renders an error returned by LintFile or LintBytes.
// Load errors are shown with the offending source line when source is known.
func FormatFailure(path string, err error, source []byte) string {
	var loadErr *parser.LoadError
	if errors.As(err, &loadErr) {
		return console.FormatError(console.Diagnostic{
			Position: console.Position{File: path, Line: loadErr.Line, Column: loadErr.Column},
			Severity: "error",
			Message:  "invalid YAML: " + loadErr.Message,
			Context:  console.ContextLines(source, loadErr.Line, contextRadius),
		})
	}

	var notFound *FileNotFoundError
	if errors.As(err, &notFound) {
		return console.FormatErrorMessage(fmt.Sprintf("File %s not found.", console.ToRelativePath(notFound.Path))) + "\n"
	}

	return console.FormatErrorMessage(err.Error()) + "\n"
}

// JSONFinding is the machine-readable form of a Finding
type JSONFinding struct {
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Path     string `json:"path"`
}

// JSONReport is the machine-readable form of one document's result
type JSONReport struct {
	File     string        `json:"file"`
	Passed   bool          `json:"passed"`
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Findings []JSONFinding `json:"findings"`
	// Error is set when validation could not run
	Error string `json:"error,omitempty"`
}

// NewJSONReport converts a report, or the error that prevented one, to its JSON form
func NewJSONReport(file string, report *Report, err error) JSONReport {
	out := JSONReport{File: file, Findings: []JSONFinding{}}
	if err != nil {
		out.Error = err.Error()
		return out
	}

	out.Passed = report.Passed()
	out.Errors = len(report.Errors())
	out.Warnings = len(report.Warnings())
	for _, f := range report.Findings {
		out.Findings = append(out.Findings, JSONFinding{
			Severity: string(f.Severity),
			Rule:     f.RuleID,
			Message:  f.Message,
			Line:     f.Location.Line,
			Column:   f.Location.Column,
			Path:     f.Path.String(),
		})
	}
	return out
}

// FormatReportJSON renders results as indented JSON
func FormatReportJSON(results ...JSONReport) (string, error) {
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data) + "\n", nil
}
