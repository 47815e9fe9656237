package concat

import (
	"bytes"
	"encoding/json"
)

// Entry is a single key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value any
}

// Mapping is a string-keyed collection that remembers insertion order. The
// zero value is ready to use.
type Mapping struct {
	keys   []string
	values map[string]any
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]any)}
}

// MappingOf builds a mapping from entries in the given order. Repeated keys
// keep their first position and the last value.
func MappingOf(entries ...Entry) *Mapping {
	m := &Mapping{values: make(map[string]any, len(entries))}
	for _, entry := range entries {
		m.Set(entry.Key, entry.Value)
	}
	return m
}

// Set inserts or replaces a value. Replacing keeps the original position.
func (m *Mapping) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Lookup returns the value stored under key.
func (m *Mapping) Lookup(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	value, ok := m.values[key]
	return value, ok
}

// Get returns the value stored under key or nil. It has a single result so
// templates can call it directly.
func (m *Mapping) Get(key string) any {
	value, _ := m.Lookup(key)
	return value
}

// Len reports the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entries returns the key/value pairs in insertion order.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, 0, len(m.keys))
	for _, key := range m.keys {
		out = append(out, Entry{Key: key, Value: m.values[key]})
	}
	return out
}

// ToMap converts the mapping, and any ordered containers nested in it, into
// plain Go maps and slices.
func (m *Mapping) ToMap() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m.keys))
	for _, key := range m.keys {
		out[key] = bindable(m.values[key])
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func mappingFromMap(in map[string]any) *Mapping {
	m := &Mapping{values: make(map[string]any, len(in))}
	for _, key := range sortedKeys(in) {
		m.Set(key, in[key])
	}
	return m
}
