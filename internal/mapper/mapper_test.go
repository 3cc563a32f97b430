package mapper

import (
	"strings"
	"testing"
)

const configYAML = `renamed-properties:
  OnClick: OnSelect
  OnPress: 42
forbidden-properties:
  ZIndex: no z-order
disable:
  - identifier
  - not-a-rule
colour: blue
`

func TestFormatPointer(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		expected string
	}{
		{name: "root", segments: nil, expected: "/"},
		{name: "simple path", segments: []string{"disable", "1"}, expected: "/disable/1"},
		{name: "escapes", segments: []string{"path~with/slash"}, expected: "/path~0with~1slash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPointer(tt.segments); got != tt.expected {
				t.Errorf("FormatPointer(%q) = %q, expected %q", tt.segments, got, tt.expected)
			}
		})
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		segment  string
		expected int
		ok       bool
	}{
		{"0", 0, true},
		{"123", 123, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"name", 0, false},
		{"", 0, false},
		{"1.5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			got, ok := parseIndex(tt.segment)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("parseIndex(%q) = (%d, %v), expected (%d, %v)", tt.segment, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestMapErrorToSpans(t *testing.T) {
	tests := []struct {
		name          string
		segments      []string
		meta          ErrorMeta
		line          int
		col           int
		shouldContain string // substring that should be in the reason
	}{
		{
			name:          "type mismatch on map value",
			segments:      []string{"renamed-properties", "OnPress"},
			meta:          ErrorMeta{Kind: KindType},
			line:          3,
			col:           12,
			shouldContain: "type",
		},
		{
			name:          "enum mismatch in sequence",
			segments:      []string{"disable", "1"},
			meta:          ErrorMeta{Kind: KindEnum},
			line:          8,
			col:           5,
			shouldContain: "enum",
		},
		{
			name:          "additional property at root",
			segments:      nil,
			meta:          ErrorMeta{Kind: KindAdditionalProperties, Property: "colour"},
			line:          9,
			col:           1,
			shouldContain: "additional property key",
		},
		{
			name:          "missing node falls back to text search",
			segments:      []string{"formula-indicators", "0"},
			meta:          ErrorMeta{Kind: KindType, Property: "ZIndex"},
			line:          5,
			col:           3,
			shouldContain: "text search",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := MapErrorToSpans([]byte(configYAML), tt.segments, tt.meta)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(spans) == 0 {
				t.Fatal("expected at least one span")
			}

			best := spans[0]
			if best.StartLine != tt.line || best.StartCol != tt.col {
				t.Errorf("expected span at %d:%d, got %d:%d (%s)", tt.line, tt.col, best.StartLine, best.StartCol, best.Reason)
			}
			if !strings.Contains(best.Reason, tt.shouldContain) {
				t.Errorf("expected reason to contain %q, got %q", tt.shouldContain, best.Reason)
			}
		})
	}
}

func TestMapErrorToSpansRequired(t *testing.T) {
	src := `renamed-properties:
  OnClick: OnSelect
`
	spans, err := MapErrorToSpans([]byte(src), []string{"renamed-properties"}, ErrorMeta{Kind: KindRequired, Property: "OnPress"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if spans[0].StartLine != 3 || spans[0].StartCol != 3 {
		t.Errorf("expected insertion anchor at 3:3, got %d:%d", spans[0].StartLine, spans[0].StartCol)
	}
	if !strings.Contains(spans[0].Reason, "OnPress") {
		t.Errorf("expected reason to name the missing property, got %q", spans[0].Reason)
	}
}

func TestMapErrorToSpansFallbacks(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		spans, err := MapErrorToSpans([]byte(""), []string{"disable"}, ErrorMeta{Kind: KindType})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if spans[0].Reason != "document-level fallback" {
			t.Errorf("expected document fallback, got %q", spans[0].Reason)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := MapErrorToSpans([]byte("a: [1, 2"), nil, ErrorMeta{}); err == nil {
			t.Error("expected a parse error")
		}
		if span := Best([]byte("a: [1, 2"), nil, ErrorMeta{}); span.StartLine != 1 {
			t.Errorf("expected Best to fall back to line 1, got %d", span.StartLine)
		}
	})

	t.Run("index out of range uses parent", func(t *testing.T) {
		span := Best([]byte(configYAML), []string{"disable", "7"}, ErrorMeta{Kind: KindEnum})
		if !strings.Contains(span.Reason, "parent context") {
			t.Errorf("expected parent context fallback, got %q", span.Reason)
		}
	})
}
