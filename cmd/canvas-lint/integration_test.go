package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"
)

// buildBinary compiles canvas-lint into a temporary directory
func buildBinary(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go binary not available - skipping integration test")
	}

	binaryPath := filepath.Join(t.TempDir(), "canvas-lint")
	buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("Failed to build canvas-lint binary: %v", err)
	}
	return binaryPath
}

// runInPTY runs the binary with a TTY attached and returns the combined output and exit code
func runInPTY(t *testing.T, binary string, args ...string) (string, int) {
	t.Helper()

	cmd := exec.Command(binary, args...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		t.Fatalf("failed to start PTY: %v", err)
	}
	defer func() { _ = ptmx.Close() }() // Best effort

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, ptmx)
		close(done)
	}()

	err = cmd.Wait()

	select {
	case <-done:
	case <-time.After(750 * time.Millisecond):
	}

	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("failed to run canvas-lint: %v", err)
	}
	return buf.String(), code
}

func TestCLIIntegrationWithTTY(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.pa.yaml")
	bad := filepath.Join(dir, "bad.pa.yaml")
	if err := os.WriteFile(good, []byte("Home:\n  Properties:\n    Fill: =RGBA(0, 0, 0, 1)\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("Home:\n  Properties:\n    Visible: If(true, 1, 2)\n"), 0644); err != nil {
		t.Fatal(err)
	}

	output, code := runInPTY(t, binary, good)
	if code != 0 {
		t.Fatalf("expected exit 0 for a valid document, got %d\n%s", code, output)
	}
	if !strings.Contains(output, "Validation Passed") {
		t.Errorf("expected pass line, got:\n%s", output)
	}

	output, code = runInPTY(t, binary, "--verbose", bad)
	if code != 1 {
		t.Fatalf("expected exit 1 for an invalid document, got %d\n%s", code, output)
	}
	for _, expected := range []string{"Validation Failed", "missing the '=' prefix", "[formula-prefix]", "^"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected output to contain %q, got:\n%s", expected, output)
		}
	}

	output, code = runInPTY(t, binary, filepath.Join(dir, "**/*.pa.yaml"))
	if code != 1 {
		t.Fatalf("expected exit 1 when one of the documents fails, got %d\n%s", code, output)
	}
	if !strings.Contains(output, "2 document(s) checked, 1 failed") {
		t.Errorf("expected multi-file summary, got:\n%s", output)
	}
}
