package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// goccyErrorPattern matches the "[line:column] message" header goccy/go-yaml puts on syntax errors
var goccyErrorPattern = regexp.MustCompile(`^\s*\[(\d+):(\d+)\]\s*(.*)$`)

// ExtractYAMLError extracts line and column information from YAML parsing errors.
// A zero line means the error carried no position.
func ExtractYAMLError(err error) (line int, column int, message string) {
	errStr := err.Error()

	// goccy/go-yaml: "[3:5] mapping value is not allowed in this context" followed by a source excerpt
	firstLine, _, _ := strings.Cut(errStr, "\n")
	if m := goccyErrorPattern.FindStringSubmatch(firstLine); m != nil {
		if _, scanErr := fmt.Sscanf(m[1]+" "+m[2], "%d %d", &line, &column); scanErr == nil {
			return line, column, strings.TrimSpace(m[3])
		}
	}

	// "yaml: line X: column Y: message"
	if strings.Contains(errStr, "yaml: line ") && strings.Contains(errStr, "column ") {
		rest := strings.SplitN(errStr, "yaml: line ", 2)[1]
		lineStr, afterLine, ok := strings.Cut(rest, ":")
		if ok {
			if _, parseErr := fmt.Sscanf(lineStr, "%d", &line); parseErr == nil {
				if columnParts := strings.SplitN(afterLine, "column ", 2); len(columnParts) > 1 {
					columnStr, msg, ok := strings.Cut(columnParts[1], ":")
					if ok {
						if _, parseErr := fmt.Sscanf(columnStr, "%d", &column); parseErr == nil {
							return line, column, strings.TrimSpace(msg)
						}
					}
				}
			}
		}
	}

	// "yaml: line X: message"
	if strings.Contains(errStr, "yaml: line ") {
		rest := strings.SplitN(errStr, "yaml: line ", 2)[1]
		lineStr, msg, ok := strings.Cut(rest, ":")
		if ok {
			if _, parseErr := fmt.Sscanf(lineStr, "%d", &line); parseErr == nil {
				return line, 1, strings.TrimSpace(msg)
			}
		}
	}

	// "yaml: unmarshal errors:\n  line X: message" (first entry wins)
	if strings.Contains(errStr, "yaml: unmarshal errors:") {
		for _, errorLine := range strings.Split(errStr, "\n") {
			errorLine = strings.TrimSpace(errorLine)
			if !strings.HasPrefix(errorLine, "line ") {
				continue
			}
			lineStr, msg, ok := strings.Cut(strings.TrimPrefix(errorLine, "line "), ":")
			if !ok {
				continue
			}
			if _, parseErr := fmt.Sscanf(lineStr, "%d", &line); parseErr == nil {
				return line, 1, strings.TrimSpace(msg)
			}
		}
	}

	return 0, 0, strings.TrimSpace(firstLine)
}
