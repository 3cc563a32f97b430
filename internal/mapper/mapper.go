package mapper

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// MapErrorToSpans maps a JSON Schema error, identified by the instance
// location of the failing value, to candidate spans in the YAML source.
// Spans are ordered by confidence, best first; the result is never empty
// unless the YAML itself cannot be parsed.
func MapErrorToSpans(yamlBytes []byte, segments []string, meta ErrorMeta) ([]Span, error) {
	file, err := parser.ParseBytes(yamlBytes, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return []Span{documentFallbackSpan()}, nil
	}

	root := unwrap(file.Docs[0].Body)
	node, parent := traverseBySegments(root, segments)

	switch meta.Kind {
	case KindType, KindPattern, KindFormat, KindEnum:
		if node != nil {
			if span, ok := valueNodeSpan(node); ok {
				span.Reason = meta.Kind + ": highlighting value"
				return []Span{span}, nil
			}
			return []Span{nodeSpan(node, 0.9, meta.Kind+": highlighting node")}, nil
		}

	case KindAdditionalProperties:
		if node != nil {
			if meta.Property != "" {
				if key := findKeyInMapping(node, meta.Property); key != nil {
					return []Span{nodeSpan(key, 0.98, "additional property key")}, nil
				}
			}
			return []Span{nodeSpan(node, 0.6, "additionalProperties fallback")}, nil
		}

	case KindRequired:
		if node != nil {
			return []Span{computeInsertionAnchor(node, meta.Property)}, nil
		}
		if parent != nil {
			return []Span{computeInsertionAnchor(parent, meta.Property)}, nil
		}

	default:
		if node != nil {
			return []Span{nodeSpan(node, 0.8, "generic mapping")}, nil
		}
	}

	if candidates := fallbackHeuristics(root, yamlBytes, segments, meta); len(candidates) > 0 {
		return candidates, nil
	}

	return []Span{documentFallbackSpan()}, nil
}

// Best returns the highest-confidence span for the error
func Best(yamlBytes []byte, segments []string, meta ErrorMeta) Span {
	spans, err := MapErrorToSpans(yamlBytes, segments, meta)
	if err != nil || len(spans) == 0 {
		return documentFallbackSpan()
	}
	return spans[0]
}

// unwrap skips anchors and tags, which carry no location of their own worth reporting
func unwrap(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.AnchorNode:
			node = n.Value
		case *ast.TagNode:
			node = n.Value
		default:
			return node
		}
	}
}

// traverseBySegments walks the AST along segments. It returns the node for
// the final segment, or nil when the path leaves the document, together with
// the deepest container reached.
func traverseBySegments(root ast.Node, segments []string) (ast.Node, ast.Node) {
	current := root
	var parent ast.Node

	for _, segment := range segments {
		current = unwrap(current)
		parent = current

		switch node := current.(type) {
		case *ast.MappingNode:
			value := findValueInMapping(node.Values, segment)
			if value == nil {
				return nil, parent
			}
			current = value

		case *ast.MappingValueNode:
			value := findValueInMapping([]*ast.MappingValueNode{node}, segment)
			if value == nil {
				return nil, parent
			}
			current = value

		case *ast.SequenceNode:
			idx, ok := parseIndex(segment)
			if !ok || idx >= len(node.Values) {
				return nil, parent
			}
			current = node.Values[idx]

		default:
			return nil, parent
		}
	}

	return unwrap(current), parent
}

func findValueInMapping(values []*ast.MappingValueNode, segment string) ast.Node {
	for _, v := range values {
		if keyMatches(v.Key, segment) {
			return v.Value
		}
	}
	return nil
}

// keyMatches checks if a mapping key node matches the expected segment string
func keyMatches(keyNode ast.MapKeyNode, segment string) bool {
	switch key := keyNode.(type) {
	case *ast.StringNode:
		return key.Value == segment
	case *ast.MappingKeyNode:
		return key.Value.GetToken().Value == segment
	default:
		if tok := key.GetToken(); tok != nil {
			return tok.Value == segment
		}
		return false
	}
}

// valueNodeSpan maps an AST node to a span that highlights its value token
func valueNodeSpan(node ast.Node) (Span, bool) {
	if tok := node.GetToken(); tok != nil {
		return tokenToSpan(tok, 0.95, "exact value node"), true
	}
	return Span{}, false
}

// nodeSpan builds a span from an AST node with the given confidence
func nodeSpan(node ast.Node, conf float64, reason string) Span {
	if tok := node.GetToken(); tok != nil {
		return tokenToSpan(tok, conf, reason)
	}
	return Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1, Confidence: conf * 0.5, Reason: reason + " (no position)"}
}

func tokenToSpan(tok *token.Token, confidence float64, reason string) Span {
	pos := tok.Position
	return Span{
		StartLine:  pos.Line,
		StartCol:   pos.Column,
		EndLine:    pos.Line,
		EndCol:     pos.Column + len(tok.Value),
		Confidence: confidence,
		Reason:     reason,
	}
}

// findKeyInMapping returns the key node for key in a mapping, if present
func findKeyInMapping(node ast.Node, key string) ast.Node {
	var values []*ast.MappingValueNode
	switch n := unwrap(node).(type) {
	case *ast.MappingNode:
		values = n.Values
	case *ast.MappingValueNode:
		values = []*ast.MappingValueNode{n}
	}
	for _, v := range values {
		if keyMatches(v.Key, key) {
			return v.Key
		}
	}
	return nil
}

// computeInsertionAnchor points just below the last entry of a mapping,
// where a missing key would be added
func computeInsertionAnchor(node ast.Node, propertyName string) Span {
	var values []*ast.MappingValueNode
	switch n := unwrap(node).(type) {
	case *ast.MappingNode:
		values = n.Values
	case *ast.MappingValueNode:
		values = []*ast.MappingValueNode{n}
	}

	if len(values) > 0 {
		last := values[len(values)-1]
		keyPos := last.Key.GetToken().Position
		endLine := keyPos.Line
		if tok := last.Value.GetToken(); tok != nil && tok.Position.Line > endLine {
			endLine = tok.Position.Line
		}
		return Span{
			StartLine:  endLine + 1,
			StartCol:   keyPos.Column,
			EndLine:    endLine + 1,
			EndCol:     keyPos.Column,
			Confidence: 0.75,
			Reason:     fmt.Sprintf("insertion anchor for missing property '%s'", propertyName),
		}
	}

	if tok := node.GetToken(); tok != nil {
		return Span{
			StartLine:  tok.Position.Line,
			StartCol:   tok.Position.Column + 1,
			EndLine:    tok.Position.Line,
			EndCol:     tok.Position.Column + 1,
			Confidence: 0.7,
			Reason:     fmt.Sprintf("empty mapping insertion anchor for '%s'", propertyName),
		}
	}

	return Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1, Confidence: 0.3, Reason: "insertion anchor fallback"}
}

// fallbackHeuristics looks for the property name in the text, then for the
// deepest ancestor of the missing node that does exist
func fallbackHeuristics(root ast.Node, yamlBytes []byte, segments []string, meta ErrorMeta) []Span {
	var candidates []Span

	if meta.Property != "" {
		candidates = append(candidates, searchPropertyInText(yamlBytes, meta.Property)...)
	}

	for i := len(segments) - 1; i > 0; i-- {
		if ancestor, _ := traverseBySegments(root, segments[:i]); ancestor != nil {
			candidates = append(candidates, nodeSpan(ancestor, 0.4, fmt.Sprintf("parent context for missing segments at depth %d", i)))
			break
		}
	}

	return candidates
}

// searchPropertyInText returns a span for every line mentioning property
func searchPropertyInText(yamlBytes []byte, property string) []Span {
	var spans []Span
	for lineNum, line := range strings.Split(string(yamlBytes), "\n") {
		if idx := strings.Index(line, property); idx != -1 {
			spans = append(spans, Span{
				StartLine:  lineNum + 1,
				StartCol:   idx + 1,
				EndLine:    lineNum + 1,
				EndCol:     idx + len(property) + 1,
				Confidence: 0.6,
				Reason:     fmt.Sprintf("text search match for property '%s'", property),
			})
		}
	}
	return spans
}

func documentFallbackSpan() Span {
	return Span{
		StartLine:  1,
		StartCol:   1,
		EndLine:    1,
		EndCol:     1,
		Confidence: 0.2,
		Reason:     "document-level fallback",
	}
}
