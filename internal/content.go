package internal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ContentKind tags the variant held by a Content value
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentStructured
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentStructured:
		return "structured"
	default:
		return fmt.Sprintf("ContentKind(%d)", int(k))
	}
}

// Content is the body of a message entry: either free text or an arbitrary
// JSON value returned by the backend. The zero value is empty text.
type Content struct {
	kind ContentKind
	text string
	raw  json.RawMessage // compacted JSON, only for ContentStructured
}

// TextContent wraps a string.
func TextContent(s string) Content {
	return Content{kind: ContentText, text: s}
}

// StructuredContent marshals v and wraps it. A value that marshals to a JSON
// string becomes text content.
func StructuredContent(v interface{}) (Content, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Content{}, fmt.Errorf("failed to marshal structured content: %w", err)
	}
	return RawContent(data)
}

// RawContent classifies a JSON document: strings are text, every other
// value (object, array, number, bool, null) is structured.
func RawContent(data []byte) (Content, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Content{}, fmt.Errorf("empty content document")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Content{}, fmt.Errorf("invalid text content: %w", err)
		}
		return TextContent(s), nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return Content{}, fmt.Errorf("invalid structured content: %w", err)
	}
	return Content{kind: ContentStructured, raw: json.RawMessage(buf.Bytes())}, nil
}

// Kind reports which variant c holds.
func (c Content) Kind() ContentKind { return c.kind }

// IsText reports whether c holds text.
func (c Content) IsText() bool { return c.kind == ContentText }

// Text returns the text and true for text content.
func (c Content) Text() (string, bool) {
	if c.kind != ContentText {
		return "", false
	}
	return c.text, true
}

// Raw returns the compacted JSON for structured content, nil for text.
func (c Content) Raw() json.RawMessage {
	if c.kind != ContentStructured {
		return nil
	}
	return append(json.RawMessage(nil), c.raw...)
}

// Decode unmarshals structured content into v.
func (c Content) Decode(v interface{}) error {
	if c.kind != ContentStructured {
		return fmt.Errorf("content is %s, not structured", c.kind)
	}
	return json.Unmarshal(c.raw, v)
}

// Falsy reports whether the value would count as "no answer": empty text,
// null, false or zero.
func (c Content) Falsy() bool {
	switch c.kind {
	case ContentText:
		return c.text == ""
	case ContentStructured:
		var v interface{}
		if err := json.Unmarshal(c.raw, &v); err != nil {
			return true
		}
		switch x := v.(type) {
		case nil:
			return true
		case bool:
			return !x
		case float64:
			return x == 0
		}
		return false
	default:
		return true
	}
}

// Render returns the display form: the text itself, or indented JSON.
func (c Content) Render() string {
	switch c.kind {
	case ContentText:
		return c.text
	case ContentStructured:
		var buf bytes.Buffer
		if err := json.Indent(&buf, c.raw, "", "  "); err != nil {
			return string(c.raw)
		}
		return buf.String()
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (c Content) String() string { return c.Render() }

// Equal compares variant and value.
func (c Content) Equal(o Content) bool {
	if c.kind != o.kind {
		return false
	}
	if c.kind == ContentText {
		return c.text == o.text
	}
	return bytes.Equal(c.raw, o.raw)
}

// MarshalJSON implements json.Marshaler.
func (c Content) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case ContentStructured:
		if len(c.raw) == 0 {
			return []byte("null"), nil
		}
		return c.raw, nil
	default:
		return json.Marshal(c.text)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Content) UnmarshalJSON(data []byte) error {
	parsed, err := RawContent(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML renders text as a scalar and structured content as native YAML.
func (c Content) MarshalYAML() (interface{}, error) {
	switch c.kind {
	case ContentStructured:
		var v interface{}
		if err := json.Unmarshal(c.raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return c.text, nil
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Content) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" {
		*c = TextContent(node.Value)
		return nil
	}
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}
	parsed, err := StructuredContent(v)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
