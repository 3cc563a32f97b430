package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/constants"
)

// Rule identifiers, usable in configuration and machine-readable output
const (
	IdentifierRule        = "identifier"
	RenamedPropertyRule   = "renamed-property"
	ForbiddenPropertyRule = "forbidden-property"
	FormulaPrefixRule     = "formula-prefix"
	GalleryVariantRule    = "gallery-variant"
	ContainerStylingRule  = "container-styling"
)

// AllRuleIDs lists every rule in evaluation order
var AllRuleIDs = []string{
	IdentifierRule,
	RenamedPropertyRule,
	ForbiddenPropertyRule,
	FormulaPrefixRule,
	GalleryVariantRule,
	ContainerStylingRule,
}

// IsKnownRule reports whether id names a rule
func IsKnownRule(id string) bool {
	return slices.Contains(AllRuleIDs, id)
}

// defaultFormulaIndicators are fragments that only make sense inside a Power Fx formula.
// Matching is a heuristic: false positives and negatives are expected.
var defaultFormulaIndicators = []string{
	`Filter\(`, `Navigate\(`, `LookUp\(`, `Set\(`, `UpdateContext\(`,
	`Patch\(`, `Collect\(`, `Color\.`, `DisplayMode\.`, `ThisItem\.`,
	`Parent\.`, `RGBA\(`, `If\(`, `CountRows\(`, `SortByColumns\(`,
	`\btrue\b`, `\bfalse\b`,
}

// Tables holds the lookup data the validator consults. A Tables value is
// never modified after construction; Merge returns a new value.
type Tables struct {
	// RenamedProperties maps a deprecated or hallucinated name to its replacement
	RenamedProperties map[string]string
	// ForbiddenProperties maps a name with no schema equivalent to an explanation
	ForbiddenProperties map[string]string
	// FormulaIndicators are tested in order against unprefixed values
	FormulaIndicators []*regexp.Regexp

	DiscriminatorKeys     []string
	GalleryControl        string
	DefaultGalleryVariant string

	ContainerControl         string
	ContainerStylingKeys     []string
	ContainerStylingDefaults string

	disabled map[string]bool
}

// Default returns the built-in rule tables
func Default() *Tables {
	t := &Tables{
		RenamedProperties: map[string]string{
			"OnClick": "OnSelect",
			"OnPress": "OnSelect",
			"Value":   "Default",
		},
		ForbiddenProperties: map[string]string{
			"ZIndex": "there is no z-order property; controls are layered by their declaration order in Children",
		},
		DiscriminatorKeys:     slices.Clone(constants.DiscriminatorKeys),
		GalleryControl:        "Gallery",
		DefaultGalleryVariant: "BrowseLayout_Flexible_SocialFeed_ver5.0",
		ContainerControl:      "GroupContainer",
		ContainerStylingKeys: []string{
			"RadiusTopLeft",
			"RadiusTopRight",
			"RadiusBottomLeft",
			"RadiusBottomRight",
			"DropShadow",
		},
		ContainerStylingDefaults: "corner radius 0 and DropShadow.Light",
		disabled:                 map[string]bool{},
	}

	indicators, err := CompileIndicators(defaultFormulaIndicators)
	if err != nil {
		panic(fmt.Sprintf("built-in formula indicator does not compile: %v", err))
	}
	t.FormulaIndicators = indicators
	return t
}

// CompileIndicators compiles formula indicator patterns as case-insensitive, unanchored expressions
func CompileIndicators(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid formula indicator %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Enabled reports whether the rule with the given id should run
func (t *Tables) Enabled(id string) bool {
	return !t.disabled[id]
}

// DisabledRules returns the disabled rule ids in evaluation order
func (t *Tables) DisabledRules() []string {
	var ids []string
	for _, id := range AllRuleIDs {
		if t.disabled[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Overrides are user-supplied adjustments to the built-in tables
type Overrides struct {
	RenamedProperties   map[string]string
	ForbiddenProperties map[string]string
	FormulaIndicators   []string
	AllowProperties     []string
	Disable             []string
}

// Merge returns a copy of t with the overrides applied. Allowed properties
// are removed from both property tables after additions, so an allow entry
// always wins.
func (t *Tables) Merge(o Overrides) (*Tables, error) {
	merged := t.clone()

	for name, replacement := range o.RenamedProperties {
		merged.RenamedProperties[name] = replacement
	}
	for name, reason := range o.ForbiddenProperties {
		merged.ForbiddenProperties[name] = reason
	}
	for _, name := range o.AllowProperties {
		delete(merged.RenamedProperties, name)
		delete(merged.ForbiddenProperties, name)
	}

	if len(o.FormulaIndicators) > 0 {
		extra, err := CompileIndicators(o.FormulaIndicators)
		if err != nil {
			return nil, err
		}
		merged.FormulaIndicators = append(merged.FormulaIndicators, extra...)
	}

	var unknown []string
	for _, id := range o.Disable {
		if !IsKnownRule(id) {
			unknown = append(unknown, id)
			continue
		}
		merged.disabled[id] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown rule(s) %s; known rules: %s", strings.Join(unknown, ", "), strings.Join(AllRuleIDs, ", "))
	}

	return merged, nil
}

func (t *Tables) clone() *Tables {
	c := *t
	c.RenamedProperties = make(map[string]string, len(t.RenamedProperties))
	for k, v := range t.RenamedProperties {
		c.RenamedProperties[k] = v
	}
	c.ForbiddenProperties = make(map[string]string, len(t.ForbiddenProperties))
	for k, v := range t.ForbiddenProperties {
		c.ForbiddenProperties[k] = v
	}
	c.FormulaIndicators = slices.Clone(t.FormulaIndicators)
	c.DiscriminatorKeys = slices.Clone(t.DiscriminatorKeys)
	c.ContainerStylingKeys = slices.Clone(t.ContainerStylingKeys)
	c.disabled = make(map[string]bool, len(t.disabled))
	for k, v := range t.disabled {
		c.disabled[k] = v
	}
	return &c
}
