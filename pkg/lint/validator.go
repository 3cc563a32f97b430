package lint

import (
	"fmt"
	"strings"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/constants"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/document"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/rules"
)

// Validator walks a document tree and applies the rule set to every mapping key.
// It holds no per-run state, so one Validator can serve concurrent runs.
type Validator struct {
	tables *rules.Tables
}

// NewValidator creates a validator backed by the given rule tables
func NewValidator(tables *rules.Tables) *Validator {
	if tables == nil {
		tables = rules.Default()
	}
	return &Validator{tables: tables}
}

// Validate checks the tree rooted at root and returns the findings in document order
func (v *Validator) Validate(root document.Node) *Report {
	w := &walker{tables: v.tables}
	w.walk(root, nil, locationOf(root))
	return &Report{Findings: w.findings, KeysChecked: w.keys}
}

func locationOf(root document.Node) document.Location {
	if root == nil {
		return document.Location{}
	}
	return root.Location()
}

// pairCheck is one rule applied to a mapping entry
type pairCheck func(w *walker, p pairContext)

// pairContext describes the mapping entry under inspection
type pairContext struct {
	key      string
	value    document.Node
	location document.Location
	// path leads to the mapping that owns key
	path document.Path
}

// pairChecks run in this order for every mapping entry
var pairChecks = []struct {
	id    string
	check pairCheck
}{
	{rules.IdentifierRule, checkIdentifier},
	{rules.RenamedPropertyRule, checkRenamedProperty},
	{rules.ForbiddenPropertyRule, checkForbiddenProperty},
	{rules.FormulaPrefixRule, checkFormulaPrefix},
	{rules.GalleryVariantRule, checkGalleryVariant},
	{rules.ContainerStylingRule, checkContainerStyling},
}

type walker struct {
	tables   *rules.Tables
	findings []Finding
	keys     int
	current  string
}

func (w *walker) walk(node document.Node, path document.Path, enclosing document.Location) {
	switch n := node.(type) {
	case *document.Mapping:
		for _, pair := range n.Pairs {
			loc := pair.KeyLocation
			if loc.IsZero() {
				loc = n.Loc
			}
			if loc.IsZero() {
				loc = enclosing
			}

			w.checkPair(pairContext{key: pair.Key, value: pair.Value, location: loc, path: path})
			w.walk(pair.Value, path.WithKey(pair.Key), loc)
		}
	case *document.Sequence:
		for i, item := range n.Items {
			w.walk(item, path.WithIndex(i), enclosing)
		}
	case *document.Scalar, nil:
		// terminal
	}
}

func (w *walker) checkPair(p pairContext) {
	w.keys++
	for _, c := range pairChecks {
		if !w.tables.Enabled(c.id) {
			continue
		}
		w.current = c.id
		c.check(w, p)
	}
	w.current = ""
}

func (w *walker) report(severity Severity, p pairContext, message string) {
	w.findings = append(w.findings, Finding{
		Severity: severity,
		RuleID:   w.current,
		Message:  message,
		Location: p.location,
		Path:     p.path.WithKey(p.key),
	})
}

func checkIdentifier(w *walker, p pairContext) {
	if strings.Contains(p.key, " ") {
		w.report(SeverityError, p, fmt.Sprintf("Name Error: '%s' contains spaces. Control and property names must be a single alphanumeric token.", p.key))
	}
}

func checkRenamedProperty(w *walker, p pairContext) {
	if replacement, ok := w.tables.RenamedProperties[p.key]; ok {
		w.report(SeverityError, p, fmt.Sprintf("Property Name Error: '%s' uses '%s'. Did you mean '%s'?", ownerName(p.path), p.key, replacement))
	}
}

func checkForbiddenProperty(w *walker, p pairContext) {
	if reason, ok := w.tables.ForbiddenProperties[p.key]; ok {
		w.report(SeverityError, p, fmt.Sprintf("Property Name Error: '%s' uses '%s', which does not exist: %s.", ownerName(p.path), p.key, reason))
	}
}

func checkFormulaPrefix(w *walker, p pairContext) {
	scalar, ok := p.value.(*document.Scalar)
	if !ok || scalar.Type == document.NullScalar || scalar.Type == document.AliasScalar {
		return
	}

	text := strings.TrimSpace(scalar.Text())
	if text == "" || text == "=" {
		return
	}

	if strings.HasPrefix(text, `"`) && !strings.HasPrefix(text, `="`) {
		w.report(SeverityError, p, fmt.Sprintf("Formula Error: Property '%s' in '%s' is a quoted literal without the '=' prefix. Found: '%s' (write it as '=%s').", p.key, ownerName(p.path), text, text))
		return
	}

	if strings.HasPrefix(text, "=") {
		return
	}

	for _, indicator := range w.tables.FormulaIndicators {
		if indicator.MatchString(text) {
			w.report(SeverityError, p, fmt.Sprintf("Formula Error: Property '%s' in '%s' contains logic but is missing the '=' prefix. Found: '%s'", p.key, ownerName(p.path), text))
			return
		}
	}
}

func checkGalleryVariant(w *walker, p pairContext) {
	control, ok := p.value.(*document.Mapping)
	if !ok || controlType(w.tables, control) != w.tables.GalleryControl {
		return
	}

	if !properties(control).Has("Variant") {
		w.report(SeverityError, p, fmt.Sprintf("Gallery Error: '%s' is missing the 'Variant' property. Suggestion: Add 'Variant: %s'", p.key, w.tables.DefaultGalleryVariant))
	}
}

func checkContainerStyling(w *walker, p pairContext) {
	control, ok := p.value.(*document.Mapping)
	if !ok || controlType(w.tables, control) != w.tables.ContainerControl {
		return
	}

	props := properties(control)
	var missing []string
	for _, key := range w.tables.ContainerStylingKeys {
		if !props.Has(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return
	}

	w.report(SeverityWarning, p, fmt.Sprintf("Styling Warning: %s '%s' does not set %s; Power Apps will apply its implicit defaults (%s).",
		w.tables.ContainerControl, p.key, strings.Join(missing, ", "), w.tables.ContainerStylingDefaults))
}

// controlType returns the control kind named by the first discriminator key
// present, without any "@version" suffix
func controlType(tables *rules.Tables, control *document.Mapping) string {
	for _, key := range tables.DiscriminatorKeys {
		node, ok := control.Get(key)
		if !ok {
			continue
		}
		scalar, ok := node.(*document.Scalar)
		if !ok || scalar.Type != document.StringScalar {
			continue
		}
		name := strings.TrimSpace(scalar.Value)
		if name == "" {
			continue
		}
		name, _, _ = strings.Cut(name, "@")
		return name
	}
	return ""
}

// properties returns the control's property block; anything other than a mapping counts as empty
func properties(control *document.Mapping) *document.Mapping {
	node, ok := control.Get(constants.PropertiesKey)
	if !ok {
		return nil
	}
	props, _ := node.(*document.Mapping)
	return props
}

// ownerName returns the name of the control that owns the mapping at path
func ownerName(path document.Path) string {
	for i := len(path) - 1; i >= 0; i-- {
		s := path[i]
		if s.IsKey && s.Key != constants.PropertiesKey {
			return s.Key
		}
	}
	return "Root"
}
