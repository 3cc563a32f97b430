package constants

// CLIName is the name used in user-facing output to refer to the linter
const CLIName = "canvas-lint"

// ConfigFileName is the project-level configuration file picked up when --config is not given
const ConfigFileName = ".canvaslint.yaml"

// DefaultGlob is the pattern used when a directory is passed instead of a file
const DefaultGlob = "**/*.{yaml,yml}"

// MaxConcurrentFiles caps how many documents are linted in parallel
const MaxConcurrentFiles = 8

// DiscriminatorKeys are the keys that name the kind of a control, in lookup order
var DiscriminatorKeys = []string{"Control", "Type"}

// PropertiesKey is the key holding a control's property block
const PropertiesKey = "Properties"
