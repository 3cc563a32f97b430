package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/document"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// Loader turns raw document bytes into a document tree
type Loader interface {
	Load(src []byte) (document.Node, error)
}

// LoadError reports source text that is not a well-formed document.
// Line and Column are zero when the problem has no position.
type LoadError struct {
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid YAML at line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("invalid YAML: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// YAMLLoader parses documents with goccy/go-yaml, keeping token positions
type YAMLLoader struct{}

// NewYAMLLoader creates a loader for YAML control trees
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

// Load parses src into a document tree. Empty input and multi-document
// streams are rejected.
func (l *YAMLLoader) Load(src []byte) (document.Node, error) {
	file, err := parser.ParseBytes(src, 0)
	if err != nil {
		line, column, message := ExtractYAMLError(err)
		return nil, &LoadError{Line: line, Column: column, Message: message, Err: err}
	}

	var docs []*ast.DocumentNode
	if file != nil {
		for _, doc := range file.Docs {
			if doc != nil && !isEmptyBody(doc.Body) {
				docs = append(docs, doc)
			}
		}
	}

	if len(docs) == 0 {
		return nil, &LoadError{Message: "document is empty"}
	}
	if len(docs) > 1 {
		loc := positionOf(docs[1].Body)
		return nil, &LoadError{
			Line:    loc.Line,
			Column:  loc.Column,
			Message: fmt.Sprintf("found %d YAML documents, expected exactly one", len(docs)),
		}
	}

	c := &converter{}
	return c.convert(docs[0].Body)
}

// isEmptyBody reports whether a document body holds no data
func isEmptyBody(body ast.Node) bool {
	switch body.(type) {
	case nil, *ast.NullNode, *ast.CommentGroupNode, *ast.CommentNode:
		return true
	}
	return false
}

type converter struct{}

func (c *converter) convert(node ast.Node) (document.Node, error) {
	switch n := node.(type) {
	case nil:
		return &document.Scalar{Type: document.NullScalar}, nil
	case *ast.DocumentNode:
		return c.convert(n.Body)
	case *ast.MappingNode:
		return c.convertMapping(n.Values, positionOf(n))
	case *ast.MappingValueNode:
		// A lone key/value pair without an enclosing mapping node
		return c.convertMapping([]*ast.MappingValueNode{n}, positionOf(n))
	case *ast.SequenceNode:
		seq := &document.Sequence{Loc: positionOf(n)}
		for _, item := range n.Values {
			child, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, child)
		}
		return seq, nil
	case *ast.AnchorNode:
		return c.convert(n.Value)
	case *ast.TagNode:
		return c.convert(n.Value)
	case *ast.AliasNode:
		return &document.Scalar{
			Type:  document.AliasScalar,
			Value: "*" + nodeText(n.Value),
			Raw:   tokenValue(n),
			Loc:   positionOf(n),
		}, nil
	case *ast.StringNode:
		return &document.Scalar{
			Type:  document.StringScalar,
			Value: n.Value,
			Raw:   rawText(n),
			Style: styleOf(n.GetToken()),
			Loc:   positionOf(n),
		}, nil
	case *ast.LiteralNode:
		value := ""
		if n.Value != nil {
			value = n.Value.Value
		}
		style := document.LiteralStyle
		if n.Start != nil && n.Start.Type == token.FoldedType {
			style = document.FoldedStyle
		}
		return &document.Scalar{
			Type:  document.StringScalar,
			Value: value,
			Raw:   value,
			Style: style,
			Loc:   positionOf(n),
		}, nil
	case *ast.BoolNode:
		return &document.Scalar{
			Type:  document.BoolScalar,
			Value: strconv.FormatBool(n.Value),
			Raw:   tokenValue(n),
			Loc:   positionOf(n),
		}, nil
	case *ast.IntegerNode, *ast.FloatNode, *ast.InfinityNode, *ast.NanNode:
		raw := tokenValue(n)
		return &document.Scalar{
			Type:  document.NumberScalar,
			Value: raw,
			Raw:   raw,
			Loc:   positionOf(n),
		}, nil
	case *ast.NullNode:
		return &document.Scalar{
			Type: document.NullScalar,
			Raw:  tokenValue(n),
			Loc:  positionOf(n),
		}, nil
	default:
		if n.GetToken() == nil {
			return &document.Scalar{Type: document.NullScalar}, nil
		}
		raw := tokenValue(n)
		return &document.Scalar{
			Type:  document.StringScalar,
			Value: raw,
			Raw:   raw,
			Loc:   positionOf(n),
		}, nil
	}
}

func (c *converter) convertMapping(values []*ast.MappingValueNode, loc document.Location) (document.Node, error) {
	m := &document.Mapping{Loc: loc}
	seen := make(map[string]document.Location, len(values))

	for _, mv := range values {
		if mv == nil {
			continue
		}
		key := keyText(mv.Key)
		keyLoc := positionOf(mv.Key)

		if first, dup := seen[key]; dup {
			return nil, &LoadError{
				Line:    keyLoc.Line,
				Column:  keyLoc.Column,
				Message: fmt.Sprintf("mapping key %q already defined at line %d", key, first.Line),
			}
		}
		seen[key] = keyLoc

		value, err := c.convert(mv.Value)
		if err != nil {
			return nil, err
		}
		m.Pairs = append(m.Pairs, document.Pair{Key: key, KeyLocation: keyLoc, Value: value})
	}

	// The mapping begins where its first key begins
	if len(m.Pairs) > 0 && !m.Pairs[0].KeyLocation.IsZero() {
		m.Loc = m.Pairs[0].KeyLocation
	}
	return m, nil
}

// keyText extracts the string form of a mapping key
func keyText(key ast.MapKeyNode) string {
	if key == nil {
		return ""
	}
	if k, ok := key.(*ast.MappingKeyNode); ok {
		return nodeText(k.Value)
	}
	return nodeText(key)
}

// nodeText extracts string value from various node types
func nodeText(node ast.Node) string {
	switch n := node.(type) {
	case nil:
		return ""
	case *ast.StringNode:
		return n.Value
	case *ast.LiteralNode:
		if n.Value != nil {
			return n.Value.Value
		}
		return ""
	default:
		return tokenValue(node)
	}
}

func tokenValue(node ast.Node) string {
	if node == nil {
		return ""
	}
	if tok := node.GetToken(); tok != nil {
		return tok.Value
	}
	return ""
}

// rawText returns the scalar as written, quotes included
func rawText(n *ast.StringNode) string {
	tok := n.GetToken()
	if tok == nil {
		return n.Value
	}
	if origin := strings.TrimSpace(tok.Origin); origin != "" {
		return origin
	}
	switch tok.Type {
	case token.DoubleQuoteType:
		return `"` + tok.Value + `"`
	case token.SingleQuoteType:
		return `'` + tok.Value + `'`
	}
	return tok.Value
}

func styleOf(tok *token.Token) document.Style {
	if tok == nil {
		return document.PlainStyle
	}
	switch tok.Type {
	case token.DoubleQuoteType:
		return document.DoubleQuotedStyle
	case token.SingleQuoteType:
		return document.SingleQuotedStyle
	}
	return document.PlainStyle
}

func positionOf(node ast.Node) document.Location {
	if node == nil {
		return document.Location{}
	}
	tok := node.GetToken()
	if tok == nil || tok.Position == nil {
		return document.Location{}
	}
	return document.Location{Line: tok.Position.Line, Column: tok.Position.Column}
}
