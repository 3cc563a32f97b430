package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/console"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/lint"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 300 * time.Millisecond

// WatchAndLint lints the targets, then re-lints documents as they change
// until ctx is cancelled or the process receives SIGINT or SIGTERM.
func WatchAndLint(ctx context.Context, args []string, opts LintOptions) error {
	if opts.Format == FormatJSON {
		return errors.New("watch mode only supports text output")
	}

	tables, err := LoadTables(opts.ConfigPath, opts.Verbose)
	if err != nil {
		return err
	}
	linter := lint.NewLinter(tables)

	dirs, err := watchRoots(args)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := addRecursive(watcher, dir); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := opts.stdout()
	fmt.Fprintln(out, console.FormatLocationMessage("Watching for changes in "+strings.Join(relativePaths(dirs), ", ")))
	if opts.Verbose {
		fmt.Fprintln(out, "Press Ctrl+C to stop watching.")
	}

	// Initial run; missing targets are reported but do not stop the watch
	if files, err := ExpandTargets(args); err != nil {
		fmt.Fprintln(opts.stderr(), console.FormatWarningMessage(err.Error()))
	} else if err := WriteResults(LintFiles(linter, files, opts), opts); err != nil {
		return err
	}

	debounce := time.NewTimer(debounceDelay)
	debounce.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := addRecursive(watcher, event.Name); err != nil && opts.Verbose {
					fmt.Fprintln(opts.stderr(), console.FormatWarningMessage(err.Error()))
				}
				continue
			}

			if !isYAMLFile(event.Name) || isConfigFile(event.Name) {
				continue
			}

			if opts.Verbose {
				fmt.Fprintln(out, console.FormatVerboseMessage(fmt.Sprintf("Detected change: %s (%s)", console.ToRelativePath(event.Name), event.Op)))
			}

			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				delete(pending, event.Name)
				fmt.Fprintln(out, console.FormatInfoMessage(fmt.Sprintf("%s was removed", console.ToRelativePath(event.Name))))
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				pending[event.Name] = struct{}{}
				debounce.Reset(debounceDelay)
			}

		case <-debounce.C:
			files := matchingTargets(args, pending)
			clear(pending)
			if len(files) == 0 {
				continue
			}
			fmt.Fprintln(out, console.FormatProgressMessage(fmt.Sprintf("Re-linting %d document(s)...", len(files))))
			if err := WriteResults(LintFiles(linter, files, opts), opts); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			fmt.Fprintln(opts.stderr(), console.FormatWarningMessage(fmt.Sprintf("Watcher error: %v", err)))

		case <-ctx.Done():
			debounce.Stop()
			if opts.Verbose {
				fmt.Fprintln(out, console.FormatInfoMessage("Stopping watch mode..."))
			}
			return nil
		}
	}
}

// watchRoots returns the directories to watch for the given targets
func watchRoots(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("no documents given")
	}

	var dirs []string
	for _, arg := range args {
		var dir string
		switch {
		case hasGlobMeta(arg):
			base, _ := doublestar.SplitPattern(filepath.ToSlash(arg))
			dir = filepath.FromSlash(base)
		case isDir(arg):
			dir = arg
		default:
			dir = filepath.Dir(arg)
		}

		if !isDir(dir) {
			return nil, fmt.Errorf("cannot watch %s: directory %s does not exist", arg, dir)
		}
		dir = filepath.Clean(dir)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

// relativePaths renders paths relative to the working directory for display
func relativePaths(paths []string) []string {
	rel := make([]string, len(paths))
	for i, p := range paths {
		rel[i] = console.ToRelativePath(p)
	}
	return rel
}

// addRecursive watches dir and every directory below it
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		return nil
	})
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// matchingTargets keeps the changed files that one of the targets refers to,
// sorted for stable output
func matchingTargets(args []string, changed map[string]struct{}) []string {
	var files []string
	for path := range changed {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if targeted(args, path) {
			files = append(files, path)
		}
	}
	slices.Sort(files)
	return files
}

func targeted(args []string, path string) bool {
	clean := filepath.Clean(path)
	for _, arg := range args {
		switch {
		case hasGlobMeta(arg):
			if ok, _ := doublestar.PathMatch(filepath.Clean(arg), clean); ok {
				return true
			}
		case isDir(arg):
			rel, err := filepath.Rel(arg, clean)
			if err == nil && !strings.HasPrefix(rel, "..") {
				return true
			}
		default:
			if filepath.Clean(arg) == clean {
				return true
			}
		}
	}
	return false
}
