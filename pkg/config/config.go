package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/internal/mapper"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/console"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/constants"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/parser"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/rules"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/config_schema.json
var configSchema string

const schemaURL = "https://canvas-lint.local/config_schema.json"

// Config is the optional per-project configuration file
type Config struct {
	RenamedProperties   map[string]string `yaml:"renamed-properties"`
	ForbiddenProperties map[string]string `yaml:"forbidden-properties"`
	FormulaIndicators   []string          `yaml:"formula-indicators"`
	AllowProperties     []string          `yaml:"allow-properties"`
	Disable             []string          `yaml:"disable"`

	// Source is the file the configuration was read from; empty for defaults
	Source string `yaml:"-"`
}

// ValidationError reports a configuration file that does not match the schema
type ValidationError struct {
	Path    string
	Line    int
	Column  int
	Message string
	context []string
}

func (e *ValidationError) Error() string {
	return strings.TrimRight(console.FormatError(console.Diagnostic{
		Position: console.Position{File: e.Path, Line: e.Line, Column: e.Column},
		Severity: "error",
		Message:  e.Message,
		Context:  e.context,
		Hint:     fmt.Sprintf("see the %s reference in the README for the supported keys", constants.ConfigFileName),
	}), "\n")
}

// Load reads the configuration at path. With an empty path the default
// config file in the working directory is used when it exists; otherwise
// an empty configuration is returned.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = constants.ConfigFileName
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return Parse(path, content)
}

// Parse decodes and validates configuration content; path is used for reporting
func Parse(path string, content []byte) (*Config, error) {
	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		line, column, message := parser.ExtractYAMLError(err)
		return nil, &ValidationError{
			Path:    path,
			Line:    line,
			Column:  column,
			Message: "invalid YAML: " + message,
			context: console.ContextLines(content, line, 1),
		}
	}

	cfg := &Config{Source: path}
	if raw == nil {
		return cfg, nil
	}

	if err := validateWithSchema(path, content, raw); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	for i, pattern := range cfg.FormulaIndicators {
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, locatedError(path, content, []string{"formula-indicators", strconv.Itoa(i)},
				mapper.ErrorMeta{Kind: mapper.KindPattern}, fmt.Sprintf("invalid formula indicator %q: %v", pattern, err))
		}
	}

	return cfg, nil
}

// Overrides converts the configuration to rule table overrides
func (c *Config) Overrides() rules.Overrides {
	return rules.Overrides{
		RenamedProperties:   c.RenamedProperties,
		ForbiddenProperties: c.ForbiddenProperties,
		FormulaIndicators:   c.FormulaIndicators,
		AllowProperties:     c.AllowProperties,
		Disable:             c.Disable,
	}
}

// Apply returns base merged with the configuration
func (c *Config) Apply(base *rules.Tables) (*rules.Tables, error) {
	tables, err := base.Merge(c.Overrides())
	if err != nil {
		if c.Source != "" {
			return nil, fmt.Errorf("invalid config %s: %w", c.Source, err)
		}
		return nil, err
	}
	return tables, nil
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var schemaDoc any
	if err := json.Unmarshal([]byte(configSchema), &schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to parse config schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add config schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

func validateWithSchema(path string, content []byte, raw any) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so the validator sees JSON types
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("invalid config %s: keys must be strings: %w", path, err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	err = schema.Validate(normalized)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	leaf := firstLeaf(validationErr)
	return locatedError(path, content, leaf.InstanceLocation, errorMeta(leaf), cleanJSONSchemaErrorMessage(leaf.Error()))
}

// firstLeaf descends to the most specific cause of a validation error
func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

func errorMeta(err *jsonschema.ValidationError) mapper.ErrorMeta {
	switch k := err.ErrorKind.(type) {
	case *kind.AdditionalProperties:
		meta := mapper.ErrorMeta{Kind: mapper.KindAdditionalProperties}
		if len(k.Properties) > 0 {
			meta.Property = k.Properties[0]
		}
		return meta
	case *kind.Required:
		meta := mapper.ErrorMeta{Kind: mapper.KindRequired}
		if len(k.Missing) > 0 {
			meta.Property = k.Missing[0]
		}
		return meta
	case *kind.Type:
		return mapper.ErrorMeta{Kind: mapper.KindType}
	case *kind.Enum:
		return mapper.ErrorMeta{Kind: mapper.KindEnum}
	case *kind.Pattern:
		return mapper.ErrorMeta{Kind: mapper.KindPattern}
	default:
		return mapper.ErrorMeta{}
	}
}

func locatedError(path string, content []byte, location []string, meta mapper.ErrorMeta, message string) *ValidationError {
	span := mapper.Best(content, location, meta)
	return &ValidationError{
		Path:    path,
		Line:    span.StartLine,
		Column:  span.StartCol,
		Message: fmt.Sprintf("%s (at %s)", message, mapper.FormatPointer(location)),
		context: console.ContextLines(content, span.StartLine, 1),
	}
}

var schemaLocationPrefix = regexp.MustCompile(`^- at '[^']*': `)

// cleanJSONSchemaErrorMessage removes unhelpful prefixes from jsonschema validation errors
func cleanJSONSchemaErrorMessage(errorMsg string) string {
	var cleanedLines []string
	for _, line := range strings.Split(errorMsg, "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "jsonschema validation failed") {
			continue
		}

		line = schemaLocationPrefix.ReplaceAllString(line, "")

		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	result := strings.Join(cleanedLines, "\n")
	if strings.TrimSpace(result) == "" {
		return "schema validation failed"
	}
	return result
}
