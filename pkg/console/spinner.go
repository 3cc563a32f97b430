package console

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// SpinnerWrapper shows progress on stderr while documents are being linted.
// It is a no-op when stderr is not a terminal, so reports written to stdout
// stay clean when piped.
type SpinnerWrapper struct {
	spinner *spinner.Spinner
	enabled bool
}

// NewSpinner creates a new spinner with the given message
func NewSpinner(message string) *SpinnerWrapper {
	enabled := isatty.IsTerminal(os.Stderr.Fd())

	s := &SpinnerWrapper{
		enabled: enabled,
	}

	if enabled {
		s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.spinner.Suffix = " " + message
		_ = s.spinner.Color("cyan")
	}

	return s
}

// Start begins the spinner animation
func (s *SpinnerWrapper) Start() {
	if s.enabled && s.spinner != nil {
		s.spinner.Start()
	}
}

// Stop stops the spinner animation
func (s *SpinnerWrapper) Stop() {
	if s.enabled && s.spinner != nil {
		s.spinner.Stop()
	}
}

// UpdateMessage updates the spinner message
func (s *SpinnerWrapper) UpdateMessage(message string) {
	if s.enabled && s.spinner != nil {
		s.spinner.Lock()
		s.spinner.Suffix = " " + message
		s.spinner.Unlock()
	}
}

// IsEnabled returns whether the spinner is enabled (i.e., stderr is a TTY)
func (s *SpinnerWrapper) IsEnabled() bool {
	return s.enabled
}
