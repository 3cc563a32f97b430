package console

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		diag     Diagnostic
		expected []string // Substrings that should be present in output
	}{
		{
			name: "basic error with position",
			diag: Diagnostic{
				Position: Position{
					File:   "home.pa.yaml",
					Line:   5,
					Column: 10,
				},
				Severity: "error",
				Message:  "'My Button' contains spaces",
			},
			expected: []string{
				"home.pa.yaml:5:10:",
				"error:",
				"'My Button' contains spaces",
			},
		},
		{
			name: "warning with rule and hint",
			diag: Diagnostic{
				Position: Position{
					File:   "home.pa.yaml",
					Line:   2,
					Column: 3,
				},
				Severity: "warning",
				Rule:     "container-styling",
				Message:  "GroupContainer 'Card' does not set DropShadow",
				Hint:     "set DropShadow explicitly",
			},
			expected: []string{
				"home.pa.yaml:2:3:",
				"warning:",
				"[container-styling]",
				"hint:",
				"set DropShadow explicitly",
			},
		},
		{
			name: "error with context",
			diag: Diagnostic{
				Position: Position{
					File:   "home.pa.yaml",
					Line:   3,
					Column: 5,
				},
				Severity: "error",
				Message:  "missing the '=' prefix",
				Context: []string{
					"  Properties:",
					"    Items: Filter(Posts, Published)",
					"    Variant: BrowseLayout_Flexible_SocialFeed_ver5.0",
				},
			},
			expected: []string{
				"home.pa.yaml:3:5:",
				"2 |",
				"3 |",
				"4 |",
				"^",
			},
		},
		{
			name: "file without position",
			diag: Diagnostic{
				Position: Position{File: "broken.yaml"},
				Message:  "document is empty",
			},
			expected: []string{
				"broken.yaml:",
				"error:",
				"document is empty",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := FormatError(tt.diag)

			for _, expected := range tt.expected {
				if !strings.Contains(output, expected) {
					t.Errorf("Expected output to contain '%s', but got:\n%s", expected, output)
				}
			}
		})
	}
}

func TestContextLines(t *testing.T) {
	content := []byte("a\nb\nc\nd\ne\n")

	tests := []struct {
		name     string
		line     int
		radius   int
		expected []string
	}{
		{name: "middle", line: 3, radius: 1, expected: []string{"b", "c", "d"}},
		{name: "first line pads before", line: 1, radius: 1, expected: []string{"", "a", "b"}},
		{name: "no location", line: 0, radius: 2, expected: nil},
		{name: "past the end", line: 42, radius: 1, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContextLines(content, tt.line, tt.radius)
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") || len(got) != len(tt.expected) {
				t.Errorf("ContextLines(%d, %d) = %q, want %q", tt.line, tt.radius, got, tt.expected)
			}
		})
	}
}

func TestFormatVerdictMessages(t *testing.T) {
	pass := FormatPassMessage("home.pa.yaml is ready for Power Apps.")
	if !strings.Contains(pass, "✅ Validation Passed: home.pa.yaml is ready for Power Apps.") {
		t.Errorf("unexpected pass message: %s", pass)
	}

	fail := FormatFailMessage("2 error(s) in home.pa.yaml")
	if !strings.Contains(fail, "❌ Validation Failed: 2 error(s) in home.pa.yaml") {
		t.Errorf("unexpected fail message: %s", fail)
	}
}

func TestFormatSuccessMessage(t *testing.T) {
	output := FormatSuccessMessage("all documents passed")
	if !strings.Contains(output, "all documents passed") {
		t.Errorf("Expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, "✓") {
		t.Errorf("Expected output to contain checkmark, got: %s", output)
	}
}

func TestFormatInfoMessage(t *testing.T) {
	output := FormatInfoMessage("processing file")
	if !strings.Contains(output, "processing file") {
		t.Errorf("Expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, "ℹ") {
		t.Errorf("Expected output to contain info icon, got: %s", output)
	}
}

func TestFormatWarningMessage(t *testing.T) {
	output := FormatWarningMessage("no files matched")
	if !strings.Contains(output, "no files matched") {
		t.Errorf("Expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, "⚠") {
		t.Errorf("Expected output to contain warning icon, got: %s", output)
	}
}

func TestFormatLocationMessage(t *testing.T) {
	output := FormatLocationMessage("Watching: screens")
	if !strings.Contains(output, "Watching: screens") {
		t.Errorf("Expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, "📁") {
		t.Errorf("Expected output to contain folder icon, got: %s", output)
	}
}

func TestRenderSummaryTable(t *testing.T) {
	output := RenderSummaryTable(SummaryTable{
		Headers: []string{"File", "Errors", "Warnings"},
		Rows: [][]string{
			{"screens/home.pa.yaml", "2", "0"},
			{"a.yaml", "0", "1"},
		},
		TotalRow: []string{"TOTAL", "2", "1"},
	})

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines (header, separator, 2 rows, separator, total), got %d:\n%s", len(lines), output)
	}
	for _, expected := range []string{"File", "screens/home.pa.yaml", "TOTAL", "---"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected table to contain %q, got:\n%s", expected, output)
		}
	}

	if RenderSummaryTable(SummaryTable{}) != "" {
		t.Error("expected empty output for a table without headers")
	}
}

func TestToRelativePath(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		expectedFunc func(string) bool
	}{
		{
			name: "relative path unchanged",
			path: "home.pa.yaml",
			expectedFunc: func(result string) bool {
				return result == "home.pa.yaml"
			},
		},
		{
			name: "nested relative path unchanged",
			path: "src/screens/home.pa.yaml",
			expectedFunc: func(result string) bool {
				return result == "src/screens/home.pa.yaml"
			},
		},
		{
			name: "absolute path converted to relative",
			path: "/tmp/home.pa.yaml",
			expectedFunc: func(result string) bool {
				return !strings.HasPrefix(result, "/") && strings.HasSuffix(result, "home.pa.yaml")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToRelativePath(tt.path)
			if !tt.expectedFunc(result) {
				t.Errorf("ToRelativePath(%s) = %s, but validation failed", tt.path, result)
			}
		})
	}
}

func TestFormatErrorWithAbsolutePaths(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "home.pa.yaml")

	output := FormatError(Diagnostic{
		Position: Position{
			File:   tmpFile,
			Line:   5,
			Column: 10,
		},
		Severity: "error",
		Message:  "invalid syntax",
	})

	if !strings.Contains(output, "home.pa.yaml:5:10:") {
		t.Errorf("Expected output to contain relative file path with line:column, got: %s", output)
	}

	lines := strings.Split(output, "\n")
	if strings.HasPrefix(lines[0], "/") {
		t.Errorf("Expected output to start with relative path, but found absolute path: %s", lines[0])
	}
}

func TestSplitAtColumn(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		column int
		before string
		marked string
		after  string
		ok     bool
	}{
		{name: "ascii", line: "Text: hello", column: 7, before: "Text: ", marked: "h", after: "ello", ok: true},
		{name: "multibyte before column", line: "Título: Buenos días", column: 9, before: "Título: ", marked: "B", after: "uenos días", ok: true},
		{name: "multibyte at column", line: "Ñame: x", column: 1, before: "", marked: "Ñ", after: "ame: x", ok: true},
		{name: "last character", line: "días", column: 4, before: "día", marked: "s", after: "", ok: true},
		{name: "column past characters but within bytes", line: "días", column: 5, ok: false},
		{name: "zero column", line: "Text", column: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, marked, after, ok := splitAtColumn(tt.line, tt.column)
			if ok != tt.ok || before != tt.before || marked != tt.marked || after != tt.after {
				t.Errorf("splitAtColumn(%q, %d) = (%q, %q, %q, %v), expected (%q, %q, %q, %v)",
					tt.line, tt.column, before, marked, after, ok, tt.before, tt.marked, tt.after, tt.ok)
			}
		})
	}
}

func TestFormatErrorCaretWithMultibyteLine(t *testing.T) {
	output := FormatError(Diagnostic{
		Position: Position{File: "screen.yaml", Line: 1, Column: 9},
		Severity: "error",
		Message:  "missing the '=' prefix",
		Context:  []string{"Título: Buenos días"},
	})

	// "1 | " is four characters wide, so the caret sits under column 9
	if !strings.Contains(output, "1 | Título: Buenos días\n"+strings.Repeat(" ", 12)+"^\n") {
		t.Errorf("caret not aligned under column 9:\n%s", output)
	}
}
