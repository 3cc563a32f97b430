package lint

import (
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/document"
)

// Severity indicates how serious a finding is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single issue detected during validation
type Finding struct {
	Severity Severity
	RuleID   string
	Message  string
	Location document.Location
	Path     document.Path
}

// Report is the outcome of a validation run that completed
type Report struct {
	File     string
	Findings []Finding
	// KeysChecked counts the mapping keys the rule set was applied to
	KeysChecked int
}

// Errors returns the error findings in the order they were recorded
func (r *Report) Errors() []Finding {
	return r.filter(SeverityError)
}

// Warnings returns the warning findings in the order they were recorded
func (r *Report) Warnings() []Finding {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(severity Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// HasErrors reports whether any error finding was recorded
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Passed reports whether the document produced no findings of any severity
func (r *Report) Passed() bool {
	return len(r.Findings) == 0
}

// Failed decides the exit status: errors always fail, warnings only in strict mode
func (r *Report) Failed(strict bool) bool {
	if r.HasErrors() {
		return true
	}
	return strict && len(r.Findings) > 0
}
