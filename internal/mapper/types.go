package mapper

// Span describes a location in the source YAML file.
type Span struct {
	StartLine  int // 1-based
	StartCol   int // 1-based
	EndLine    int
	EndCol     int
	Confidence float64 // 0.0 - 1.0
	Reason     string  // short reason why this span was chosen
}

// Error kinds understood by MapErrorToSpans
const (
	KindType                 = "type"
	KindRequired             = "required"
	KindAdditionalProperties = "additionalProperties"
	KindPattern              = "pattern"
	KindFormat               = "format"
	KindEnum                 = "enum"
)

// ErrorMeta contains validator-provided metadata about the error.
type ErrorMeta struct {
	Kind     string // one of the Kind constants, or any other keyword
	Property string // offending or missing property name, when the error names one
}
