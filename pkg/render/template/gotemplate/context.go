package gotemplate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-concat/pkg/concat"
)

// orderIndexKey holds the render's *orderIndex in the execution context.
const orderIndexKey = "_concat_order"

// orderIndex remembers the key order of ordered mappings after they are
// flattened into plain maps. pongo2 only resolves attributes on Go maps and
// structs, so templates see maps while the concat tags rebuild the order.
type orderIndex struct {
	parent  *orderIndex
	entries map[uintptr]orderedKeys
}

type orderedKeys struct {
	// m keeps the map reachable so its address is not reused.
	m    map[string]any
	keys []string
}

func newOrderIndex(parent *orderIndex) *orderIndex {
	return &orderIndex{parent: parent, entries: make(map[uintptr]orderedKeys)}
}

// orderIndexFor returns the index of the running render. Engines seed it into
// the public context; other hosts get one created on first use.
func orderIndexFor(ctx *pongo2.ExecutionContext) *orderIndex {
	if idx, ok := ctx.Private[orderIndexKey].(*orderIndex); ok {
		return idx
	}
	if idx, ok := ctx.Public[orderIndexKey].(*orderIndex); ok {
		return idx
	}
	idx := newOrderIndex(nil)
	ctx.Private[orderIndexKey] = idx
	return idx
}

func (idx *orderIndex) remember(m map[string]any, keys []string) {
	idx.entries[reflect.ValueOf(m).Pointer()] = orderedKeys{m: m, keys: keys}
}

func (idx *orderIndex) keysOf(m map[string]any) ([]string, bool) {
	ptr := reflect.ValueOf(m).Pointer()
	for cur := idx; cur != nil; cur = cur.parent {
		if entry, ok := cur.entries[ptr]; ok {
			return entry.keys, true
		}
	}
	return nil, false
}

// context flattens render data into a pongo2 context. The root must be a
// mapping; structs are read through their JSON form, in field order.
func (idx *orderIndex) context(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	flat, err := idx.flatten(data)
	if err != nil {
		return nil, err
	}
	root, ok := flat.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("data must be a mapping, got %T", data)
	}

	out := make(pongo2.Context, len(root))
	for key, value := range root {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out, nil
}

func (idx *orderIndex) flatten(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number, *pongo2.Value:
		return v, nil
	case *concat.Mapping:
		return idx.flattenMapping(v)
	case concat.Mapping:
		return idx.flattenMapping(&v)
	case concat.Sequence:
		return idx.flattenSlice(v)
	case []any:
		return idx.flattenSlice(v)
	case concat.Value:
		switch v.Kind() {
		case concat.KindString:
			return v.Str(), nil
		case concat.KindSequence:
			return idx.flattenSlice(v.Seq())
		case concat.KindMapping:
			return idx.flattenMapping(v.Map())
		default:
			return nil, nil
		}
	case pongo2.Context:
		return idx.flattenMap(v)
	case map[string]any:
		return idx.flattenMap(v)
	}

	if reflect.TypeOf(value).Kind() == reflect.Func {
		return value, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		// Left as is; the helper rejects it if it is used as an argument.
		return value, nil
	}
	decoded, err := concat.DecodeJSONValue(raw)
	if err != nil {
		return nil, err
	}
	return idx.flatten(decoded)
}

func (idx *orderIndex) flattenMapping(m *concat.Mapping) (map[string]any, error) {
	entries := m.Entries()
	out := make(map[string]any, len(entries))
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		value, err := idx.flatten(entry.Value)
		if err != nil {
			return nil, err
		}
		out[entry.Key] = value
		keys = append(keys, entry.Key)
	}
	idx.remember(out, keys)
	return out, nil
}

func (idx *orderIndex) flattenMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := idx.flatten(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func (idx *orderIndex) flattenSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := idx.flatten(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// restore turns flattened maps back into ordered mappings before they reach
// the helper. Maps the index never saw keep Go map semantics.
func (idx *orderIndex) restore(value any) any {
	switch v := value.(type) {
	case pongo2.Context:
		return idx.restore(map[string]any(v))
	case map[string]any:
		keys, ok := idx.keysOf(v)
		if !ok {
			out := make(map[string]any, len(v))
			for key, item := range v {
				out[key] = idx.restore(item)
			}
			return out
		}
		m := concat.NewMapping()
		for _, key := range keys {
			m.Set(key, idx.restore(v[key]))
		}
		return m
	case []any:
		out := make(concat.Sequence, len(v))
		for i, item := range v {
			out[i] = idx.restore(item)
		}
		return out
	default:
		return value
	}
}

// concatCall backs the per-render {{ concat(a, b) }} function.
func (idx *orderIndex) concatCall(args ...any) (string, error) {
	restored := make([]any, len(args))
	for i, arg := range args {
		restored[i] = idx.restore(arg)
	}
	return concat.Concatenate(restored, concat.DefaultOptions(), nil)
}
