package concat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const yamlMergeTag = "!!merge"

// UnmarshalYAML decodes a YAML mapping keeping the document key order. Nested
// mappings decode into *Mapping and sequences into Sequence.
func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := decodeYAMLNode(node)
	if err != nil {
		return err
	}
	mapping, ok := decoded.(*Mapping)
	if !ok {
		return fmt.Errorf("concat: expected a YAML mapping, got %s", nodeKindName(node))
	}
	*m = *mapping
	return nil
}

// UnmarshalJSON decodes a JSON object keeping the document key order.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeJSONValue(data)
	if err != nil {
		return err
	}
	mapping, ok := decoded.(*Mapping)
	if !ok {
		return fmt.Errorf("concat: expected a JSON object, got %T", decoded)
	}
	*m = *mapping
	return nil
}

// Decode parses data in the named format ("json", "yaml" or "yml", with or
// without a leading dot). Unknown formats are read as YAML, which also
// accepts most JSON documents.
func Decode(data []byte, format string) (*Mapping, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case "json":
		return DecodeJSON(data)
	default:
		return DecodeYAML(data)
	}
}

// DecodeYAML parses a YAML (or JSON) document whose root is a mapping.
func DecodeYAML(data []byte) (*Mapping, error) {
	m := NewMapping()
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("concat: decode yaml: %w", err)
	}
	return m, nil
}

// DecodeJSON parses a JSON document whose root is an object.
func DecodeJSON(data []byte) (*Mapping, error) {
	m := NewMapping()
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeYAMLNode(node *yaml.Node) (any, error) {
	if node == nil {
		return nil, nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return NewMapping(), nil
		}
		return decodeYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return decodeYAMLNode(node.Alias)
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			if keyNode.Tag == yamlMergeTag {
				if err := mergeYAML(m, valueNode); err != nil {
					return nil, err
				}
				continue
			}
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("concat: line %d: mapping keys must be scalars", keyNode.Line)
			}
			value, err := decodeYAMLNode(valueNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, value)
		}
		return m, nil
	case yaml.SequenceNode:
		items := make(Sequence, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := decodeYAMLNode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	default:
		var out any
		if err := node.Decode(&out); err != nil {
			return nil, fmt.Errorf("concat: line %d: %w", node.Line, err)
		}
		return out, nil
	}
}

func mergeYAML(dst *Mapping, node *yaml.Node) error {
	sources := []*yaml.Node{node}
	if node.Kind == yaml.SequenceNode {
		sources = node.Content
	}
	for _, source := range sources {
		decoded, err := decodeYAMLNode(source)
		if err != nil {
			return err
		}
		merged, ok := decoded.(*Mapping)
		if !ok {
			return fmt.Errorf("concat: line %d: merge value must be a mapping", source.Line)
		}
		for _, entry := range merged.Entries() {
			if _, exists := dst.Lookup(entry.Key); exists {
				continue
			}
			dst.Set(entry.Key, entry.Value)
		}
	}
	return nil
}

func nodeKindName(node *yaml.Node) string {
	if node == nil {
		return "nothing"
	}
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "node"
	}
}

// DecodeJSONValue parses a single JSON document of any shape. Objects decode
// into *Mapping in document order, arrays into Sequence, integers into int64
// and other numbers into float64. Anything after the document is an error.
func DecodeJSONValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return value, nil
	}
	if err != nil {
		return nil, fmt.Errorf("concat: decode json: %w", err)
	}
	return nil, fmt.Errorf("concat: decode json: unexpected %v after document", tok)
}

func decodeJSONObject(dec *json.Decoder) (*Mapping, error) {
	m := NewMapping()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("concat: decode json: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("concat: decode json: unexpected key %v", tok)
		}
		value, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		m.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("concat: decode json: %w", err)
	}
	return m, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("concat: decode json: %w", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return nil, fmt.Errorf("concat: decode json: %w", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			items := Sequence{}
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("concat: decode json: %w", err)
			}
			return items, nil
		}
		return nil, fmt.Errorf("concat: decode json: unexpected delimiter %v", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("concat: decode json: %w", err)
		}
		return f, nil
	default:
		return t, nil
	}
}
