package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Node
type Kind int

const (
	MappingKind Kind = iota
	SequenceKind
	ScalarKind
)

func (k Kind) String() string {
	switch k {
	case MappingKind:
		return "mapping"
	case SequenceKind:
		return "sequence"
	case ScalarKind:
		return "scalar"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is one element of a parsed document tree. The concrete type is always
// one of *Mapping, *Sequence or *Scalar.
type Node interface {
	Kind() Kind
	// Location returns where the node begins, or a zero Location when unknown
	Location() Location
}

// Location is a 1-based line/column position in the source document
type Location struct {
	Line   int
	Column int
}

// IsZero reports whether the location is unknown
func (l Location) IsZero() bool {
	return l.Line <= 0
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Pair is one key/value entry of a Mapping
type Pair struct {
	Key         string
	KeyLocation Location
	Value       Node
}

// Mapping is an ordered set of uniquely keyed pairs
type Mapping struct {
	Pairs []Pair
	Loc   Location
}

func (m *Mapping) Kind() Kind         { return MappingKind }
func (m *Mapping) Location() Location { return m.Loc }

// Get returns the value stored under key
func (m *Mapping) Get(key string) (Node, bool) {
	if m == nil {
		return nil, false
	}
	for _, p := range m.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Sequence is an ordered list of nodes
type Sequence struct {
	Items []Node
	Loc   Location
}

func (s *Sequence) Kind() Kind         { return SequenceKind }
func (s *Sequence) Location() Location { return s.Loc }

// ScalarType is the decoded type of a Scalar
type ScalarType int

const (
	StringScalar ScalarType = iota
	BoolScalar
	NumberScalar
	NullScalar
	// AliasScalar is a reference to an anchored node. The anchored node is
	// validated where it is defined, so aliases are kept opaque.
	AliasScalar
)

// Style records how a scalar was quoted in the source
type Style int

const (
	PlainStyle Style = iota
	SingleQuotedStyle
	DoubleQuotedStyle
	LiteralStyle
	FoldedStyle
)

// Scalar is a terminal value
type Scalar struct {
	Type ScalarType
	// Value is the decoded text: string content without YAML quoting, or the
	// canonical text of a bool/number
	Value string
	// Raw is the token text exactly as written in the source
	Raw   string
	Style Style
	Loc   Location
}

func (s *Scalar) Kind() Kind         { return ScalarKind }
func (s *Scalar) Location() Location { return s.Loc }

// Text returns the text the formula rules look at: the decoded string for
// string scalars and the source token for everything else.
func (s *Scalar) Text() string {
	if s.Type == StringScalar {
		return s.Value
	}
	if s.Raw != "" {
		return s.Raw
	}
	return s.Value
}

// NewString builds a plain string scalar, mostly useful in tests
func NewString(value string) *Scalar {
	return &Scalar{Type: StringScalar, Value: value, Raw: value}
}

// NewBool builds a bool scalar
func NewBool(value bool) *Scalar {
	text := strconv.FormatBool(value)
	return &Scalar{Type: BoolScalar, Value: text, Raw: text}
}

// Segment is one step of a Path: either a mapping key or a sequence index
type Segment struct {
	Key   string
	Index int
	IsKey bool
}

// Path is the route from the document root to a node
type Path []Segment

// WithKey returns a copy of p extended by key
func (p Path) WithKey(key string) Path {
	return p.with(Segment{Key: key, IsKey: true})
}

// WithIndex returns a copy of p extended by index
func (p Path) WithIndex(index int) Path {
	return p.with(Segment{Index: index})
}

func (p Path) with(s Segment) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, s)
}

// String renders the path as Screens.Main.Children[0]
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	for i, s := range p {
		if !s.IsKey {
			fmt.Fprintf(&b, "[%d]", s.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}
