package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Position represents a position in a source file
type Position struct {
	File   string
	Line   int
	Column int
}

// Diagnostic represents a structured lint message with position information
type Diagnostic struct {
	Position Position
	Severity string   // "error", "warning", "info"
	Rule     string   // Optional rule identifier shown after the message
	Message  string
	Context  []string // Source lines for context, centered on Position.Line
	Hint     string   // Optional hint for fixing the problem
}

// Styles for different severities
var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	contextLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2"))

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF5555")).
			Foreground(lipgloss.Color("#282A36"))

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#50FA7B"))

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))
)

// isTTY checks if stdout is a terminal
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// applyStyle conditionally applies styling based on TTY status
func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

// ToRelativePath converts an absolute path to a relative path from the current working directory
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}

	wd, err := os.Getwd()
	if err != nil {
		return path
	}

	relPath, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}

	return relPath
}

// ContextLines returns up to radius lines on each side of line (1-based) from content
func ContextLines(content []byte, line, radius int) []string {
	if line <= 0 {
		return nil
	}
	lines := strings.Split(string(content), "\n")
	if line > len(lines) {
		return nil
	}

	// Keep the window centered on line so renderContext numbers it correctly
	start := line - radius
	end := line + radius
	var out []string
	for i := start; i <= end; i++ {
		if i < 1 || i > len(lines) {
			out = append(out, "")
			continue
		}
		out = append(out, strings.TrimRight(lines[i-1], "\r"))
	}
	return out
}

// FormatError formats a Diagnostic with Rust-like rendering
func FormatError(d Diagnostic) string {
	var output strings.Builder

	var typeStyle lipgloss.Style
	var prefix string
	switch d.Severity {
	case "warning":
		typeStyle = warningStyle
		prefix = "warning"
	case "info":
		typeStyle = infoStyle
		prefix = "info"
	default:
		typeStyle = errorStyle
		prefix = "error"
	}

	// IDE-parseable format: file:line:column: type: message
	if d.Position.File != "" {
		relativePath := ToRelativePath(d.Position.File)
		location := relativePath + ":"
		if d.Position.Line > 0 {
			location = fmt.Sprintf("%s:%d:%d:", relativePath, d.Position.Line, d.Position.Column)
		}
		output.WriteString(applyStyle(filePathStyle, location))
		output.WriteString(" ")
	}

	output.WriteString(applyStyle(typeStyle, prefix+":"))
	output.WriteString(" ")
	output.WriteString(d.Message)
	if d.Rule != "" {
		output.WriteString(" ")
		output.WriteString(applyStyle(ruleStyle, "["+d.Rule+"]"))
	}
	output.WriteString("\n")

	if len(d.Context) > 0 && d.Position.Line > 0 {
		output.WriteString(renderContext(d))
	}

	if d.Hint != "" {
		output.WriteString("\n")
		output.WriteString(applyStyle(hintStyle, "hint: "))
		output.WriteString(d.Hint)
		output.WriteString("\n")
	}

	return output.String()
}

// renderContext renders source context with line numbers and highlighting
func renderContext(d Diagnostic) string {
	var output strings.Builder

	maxLineNum := d.Position.Line + len(d.Context)/2
	lineNumWidth := len(fmt.Sprintf("%d", maxLineNum))

	for i, line := range d.Context {
		// Context is centered on the diagnostic line
		lineNum := d.Position.Line - len(d.Context)/2 + i
		if lineNum < 1 {
			continue
		}

		lineNumStr := fmt.Sprintf("%*d", lineNumWidth, lineNum)
		output.WriteString(applyStyle(lineNumberStyle, lineNumStr))
		output.WriteString(" | ")

		if lineNum == d.Position.Line {
			if before, marked, after, ok := splitAtColumn(line, d.Position.Column); ok {
				output.WriteString(applyStyle(contextLineStyle, before))
				output.WriteString(applyStyle(highlightStyle, marked))
				output.WriteString(applyStyle(contextLineStyle, after))
			} else {
				output.WriteString(applyStyle(highlightStyle, line))
			}
		} else {
			output.WriteString(applyStyle(contextLineStyle, line))
		}
		output.WriteString("\n")

		if lineNum == d.Position.Line && d.Position.Column > 0 {
			padding := strings.Repeat(" ", lineNumWidth+3+d.Position.Column-1)
			output.WriteString(padding)
			output.WriteString(applyStyle(errorStyle, "^"))
			output.WriteString("\n")
		}
	}

	return output.String()
}

// splitAtColumn splits line around the character at the 1-based column.
// Columns count characters, not bytes.
func splitAtColumn(line string, column int) (before, marked, after string, ok bool) {
	runes := []rune(line)
	if column < 1 || column > len(runes) {
		return "", "", "", false
	}
	return string(runes[:column-1]), string(runes[column-1]), string(runes[column:]), true
}

// FormatPassMessage formats the verdict line for a document without findings
func FormatPassMessage(message string) string {
	return applyStyle(successStyle, "✅ Validation Passed: ") + message
}

// FormatFailMessage formats the verdict line for a document with findings
func FormatFailMessage(message string) string {
	return applyStyle(errorStyle, "❌ Validation Failed: ") + message
}

// FormatSuccessMessage formats a success message with styling
func FormatSuccessMessage(message string) string {
	return applyStyle(successStyle, "✓ ") + message
}

// FormatInfoMessage formats an informational message
func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

// FormatWarningMessage formats a warning message
func FormatWarningMessage(message string) string {
	return applyStyle(warningStyle, "⚠ ") + message
}

// FormatErrorMessage formats a simple error message (for stderr output)
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}

// FormatVerboseMessage formats verbose debugging output
func FormatVerboseMessage(message string) string {
	verboseStyle := lipgloss.NewStyle().
		Italic(true).
		Foreground(lipgloss.Color("#6272A4"))

	return applyStyle(verboseStyle, "🔍 ") + message
}

// FormatLocationMessage formats a file/directory location message
func FormatLocationMessage(message string) string {
	locationStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFB86C"))

	return applyStyle(locationStyle, "📁 ") + message
}

// FormatProgressMessage formats a progress/activity message
func FormatProgressMessage(message string) string {
	progressStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F1FA8C"))

	return applyStyle(progressStyle, "🔨 ") + message
}

// FormatCountMessage formats a count/numeric status message
func FormatCountMessage(message string) string {
	countStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#8BE9FD"))

	return applyStyle(countStyle, "📊 ") + message
}

// FormatListItem formats an indented item of a finding list
func FormatListItem(item string) string {
	return "  - " + item
}

// FormatSectionHeader formats a header above a group of list items
func FormatSectionHeader(header string, severity string) string {
	style := errorStyle
	if severity == "warning" {
		style = warningStyle
	}
	return applyStyle(style, header)
}

var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#BD93F9"))

	tableSeparatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6272A4"))
)

// SummaryTable describes the per-file overview printed after a multi-file run
type SummaryTable struct {
	Headers  []string
	Rows     [][]string
	TotalRow []string
}

// RenderSummaryTable renders a column-aligned table. Cells are padded on
// their plain width before styling so ANSI codes do not skew alignment.
func RenderSummaryTable(table SummaryTable) string {
	if len(table.Headers) == 0 {
		return ""
	}

	widths := make([]int, len(table.Headers))
	for i, header := range table.Headers {
		widths[i] = len([]rune(header))
	}
	all := table.Rows
	if len(table.TotalRow) > 0 {
		all = append(all[:len(all):len(all)], table.TotalRow)
	}
	for _, row := range all {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	separator := make([]string, len(widths))
	for i, w := range widths {
		separator[i] = strings.Repeat("-", w)
	}

	var output strings.Builder
	output.WriteString(renderTableRow(table.Headers, widths, tableHeaderStyle))
	output.WriteString(renderTableRow(separator, widths, tableSeparatorStyle))
	for _, row := range table.Rows {
		output.WriteString(renderTableRow(row, widths, lipgloss.NewStyle()))
	}
	if len(table.TotalRow) > 0 {
		output.WriteString(renderTableRow(separator, widths, tableSeparatorStyle))
		output.WriteString(renderTableRow(table.TotalRow, widths, tableHeaderStyle))
	}
	return output.String()
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded := cell + strings.Repeat(" ", w-len([]rune(cell)))
		parts[i] = applyStyle(style, padded)
	}
	return strings.TrimRight(strings.Join(parts, " | "), " ") + "\n"
}
