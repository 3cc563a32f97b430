package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/config"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/console"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/constants"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/lint"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/rules"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/sourcegraph/conc/pool"
)

// ErrValidationFailed is returned when at least one document failed
// validation or could not be validated
var ErrValidationFailed = errors.New("validation failed")

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LintOptions configures a lint run
type LintOptions struct {
	ConfigPath string
	Format     string
	Strict     bool
	Verbose    bool

	// Out receives reports; Err receives failures and progress. Both default
	// to the process streams.
	Out io.Writer
	Err io.Writer
}

func (o LintOptions) stdout() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

func (o LintOptions) stderr() io.Writer {
	if o.Err != nil {
		return o.Err
	}
	return os.Stderr
}

// FileResult is the outcome of linting one document
type FileResult struct {
	Path   string
	Report *lint.Report
	Err    error
	// Source holds the document content when it is needed for rendering
	Source []byte
}

// Failed reports whether this result makes the run fail
func (r FileResult) Failed(strict bool) bool {
	return r.Err != nil || r.Report.Failed(strict)
}

// LoadTables builds the rule tables from the built-in defaults and the configuration file
func LoadTables(configPath string, verbose bool) (*rules.Tables, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose && cfg.Source != "" {
		fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Using configuration "+console.ToRelativePath(cfg.Source)))
	}
	return cfg.Apply(rules.Default())
}

// RunLint lints every document named by args and writes the reports.
// It returns ErrValidationFailed when the run should exit non-zero.
func RunLint(args []string, opts LintOptions) error {
	if opts.Format != "" && opts.Format != FormatText && opts.Format != FormatJSON {
		return fmt.Errorf("unsupported format %q: expected %s or %s", opts.Format, FormatText, FormatJSON)
	}

	tables, err := LoadTables(opts.ConfigPath, opts.Verbose)
	if err != nil {
		return err
	}

	files, err := ExpandTargets(args)
	if err != nil {
		return err
	}

	linter := lint.NewLinter(tables)
	results := LintFiles(linter, files, opts)

	if err := WriteResults(results, opts); err != nil {
		return err
	}

	for _, r := range results {
		if r.Failed(opts.Strict) {
			return ErrValidationFailed
		}
	}
	return nil
}

// hasGlobMeta reports whether arg should be expanded as a pattern
func hasGlobMeta(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}

// ExpandTargets turns the command-line arguments into the list of documents
// to lint. Patterns are expanded with doublestar, directories are searched
// for YAML files, and anything else is taken as a file path so that missing
// files are reported per document. Order follows the arguments; duplicates
// are dropped.
func ExpandTargets(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("no documents given")
	}

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		pattern := ""
		switch {
		case hasGlobMeta(arg):
			pattern = arg
		case isDir(arg):
			pattern = filepath.Join(arg, constants.DefaultGlob)
		default:
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no YAML documents match %s", arg)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if isConfigFile(m) {
				continue
			}
			add(m)
		}
	}

	if len(files) == 0 {
		return nil, errors.New("no YAML documents to lint")
	}
	return files, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isConfigFile(path string) bool {
	return filepath.Base(path) == constants.ConfigFileName
}

// LintFiles lints the documents concurrently and returns the results in input order
func LintFiles(linter *lint.Linter, files []string, opts LintOptions) []FileResult {
	type indexed struct {
		index  int
		result FileResult
	}

	var spinner *console.SpinnerWrapper
	if len(files) > 1 && opts.Format != FormatJSON {
		spinner = console.NewSpinner(fmt.Sprintf("Linting %d documents...", len(files)))
		spinner.Start()
		defer spinner.Stop()
	}

	var done atomic.Int32
	p := pool.NewWithResults[indexed]().WithMaxGoroutines(constants.MaxConcurrentFiles)
	for i, file := range files {
		p.Go(func() indexed {
			result := lintOne(linter, file)
			if spinner != nil && spinner.IsEnabled() {
				spinner.UpdateMessage(fmt.Sprintf("Linted %d/%d documents...", done.Add(1), len(files)))
			}
			return indexed{index: i, result: result}
		})
	}

	collected := p.Wait()
	sort.Slice(collected, func(a, b int) bool { return collected[a].index < collected[b].index })

	results := make([]FileResult, len(collected))
	for i, c := range collected {
		results[i] = c.result
	}
	return results
}

func lintOne(linter *lint.Linter, file string) FileResult {
	report, source, err := linter.ReadAndLint(file)
	return FileResult{Path: file, Report: report, Err: err, Source: source}
}

// WriteResults renders the results in the requested format
func WriteResults(results []FileResult, opts LintOptions) error {
	out := opts.stdout()

	if opts.Format == FormatJSON {
		reports := make([]lint.JSONReport, 0, len(results))
		for _, r := range results {
			reports = append(reports, lint.NewJSONReport(r.Path, r.Report, r.Err))
		}
		text, err := lint.FormatReportJSON(reports...)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, text)
		return err
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if r.Err != nil {
			fmt.Fprint(opts.stderr(), lint.FormatFailure(r.Path, r.Err, r.Source))
			continue
		}
		if opts.Verbose {
			fmt.Fprintln(out, console.FormatVerboseMessage(fmt.Sprintf("Checked %d keys in %s, %d finding(s)",
				r.Report.KeysChecked, console.ToRelativePath(r.Path), len(r.Report.Findings))))
		}
		fmt.Fprint(out, lint.FormatReport(r.Report, lint.RenderOptions{Verbose: opts.Verbose, Source: r.Source}))
	}

	if len(results) > 1 {
		fmt.Fprintln(out)
		fmt.Fprint(out, console.RenderSummaryTable(summarize(results, opts.Strict)))
		fmt.Fprintln(out, summaryLine(results, opts.Strict))
	}
	return nil
}

func summarize(results []FileResult, strict bool) console.SummaryTable {
	table := console.SummaryTable{Headers: []string{"File", "Errors", "Warnings", "Status"}}
	totalErrors, totalWarnings := 0, 0

	for _, r := range results {
		row := []string{console.ToRelativePath(r.Path), "-", "-", "not validated"}
		if r.Err == nil {
			errs, warnings := len(r.Report.Errors()), len(r.Report.Warnings())
			totalErrors += errs
			totalWarnings += warnings
			row[1], row[2] = strconv.Itoa(errs), strconv.Itoa(warnings)
			row[3] = "passed"
			if r.Report.Failed(strict) {
				row[3] = "failed"
			}
		}
		table.Rows = append(table.Rows, row)
	}

	table.TotalRow = []string{"TOTAL", strconv.Itoa(totalErrors), strconv.Itoa(totalWarnings), ""}
	return table
}

func summaryLine(results []FileResult, strict bool) string {
	failed := 0
	for _, r := range results {
		if r.Failed(strict) {
			failed++
		}
	}
	line := fmt.Sprintf("%d document(s) checked, %d failed", len(results), failed)
	if failed == 0 {
		return console.FormatSuccessMessage(line)
	}
	return console.FormatCountMessage(line)
}
