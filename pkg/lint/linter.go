package lint

import (
	"errors"
	"fmt"
	"os"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/parser"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/rules"
)

// FileNotFoundError is returned when the target document does not exist.
// No load is attempted in that case.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file %s not found", e.Path)
}

// InternalError wraps an unexpected fault raised while evaluating rules
type InternalError struct {
	Path  string
	Cause any
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("unexpected error while validating %s: %v", e.Path, e.Cause)
}

// Unwrap exposes the cause when the fault was an error value
func (e *InternalError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// Linter runs the load and validate stages for one document at a time.
// A Linter is safe for concurrent use as long as its loader is.
type Linter struct {
	loader    parser.Loader
	validator *Validator
}

// NewLinter creates a linter using the YAML loader and the given rule tables
func NewLinter(tables *rules.Tables) *Linter {
	return &Linter{
		loader:    parser.NewYAMLLoader(),
		validator: NewValidator(tables),
	}
}

// SetLoader replaces the document loader
func (l *Linter) SetLoader(loader parser.Loader) {
	l.loader = loader
}

// LintFile validates the document at path.
//
// The returned error is a *FileNotFoundError when path does not exist, wraps a
// *parser.LoadError when the document is malformed, and is an *InternalError
// when rule evaluation failed unexpectedly. Findings are never errors: a
// document with problems yields a Report and a nil error.
func (l *Linter) LintFile(path string) (*Report, error) {
	report, _, err := l.ReadAndLint(path)
	return report, err
}

// ReadAndLint is LintFile that also returns the bytes that were validated,
// so excerpts can be rendered from the same content. The content is nil when
// the file could not be read.
func (l *Linter) ReadAndLint(path string) (*Report, []byte, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, &FileNotFoundError{Path: path}
		}
		return nil, nil, fmt.Errorf("failed to access %s: %w", path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	report, err := l.LintBytes(path, content)
	return report, content, err
}

// LintBytes validates an in-memory document; name is used for reporting only
func (l *Linter) LintBytes(name string, content []byte) (report *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = &InternalError{Path: name, Cause: r}
		}
	}()

	root, err := l.loader.Load(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	report = l.validator.Validate(root)
	report.File = name
	return report, nil
}
