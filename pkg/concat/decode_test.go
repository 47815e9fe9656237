package concat_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-concat/pkg/concat"
)

func TestDecodeYAML_PreservesOrder(t *testing.T) {
	doc := []byte(`
zero: Zero
s: One
arr: [One, Two]
obj:
  key2: {label: Four}
  key0: {label: Two}
  key1: {label: Three}
count: 3
missing: ~
`)

	m, err := concat.DecodeYAML(doc)
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}

	if diff := cmp.Diff([]string{"zero", "s", "arr", "obj", "count", "missing"}, m.Keys()); diff != "" {
		t.Fatalf("root keys mismatch (-want +got):\n%s", diff)
	}
	obj, ok := m.Get("obj").(*concat.Mapping)
	if !ok {
		t.Fatalf("expected nested *Mapping, got %T", m.Get("obj"))
	}
	if diff := cmp.Diff([]string{"key2", "key0", "key1"}, obj.Keys()); diff != "" {
		t.Fatalf("nested keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(concat.Sequence{"One", "Two"}, m.Get("arr")); diff != "" {
		t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
	}
	if got := m.Get("count"); got != 3 {
		t.Fatalf("expected int 3, got %#v", got)
	}
	if v, ok := m.Lookup("missing"); !ok || v != nil {
		t.Fatalf("expected explicit nil entry, got %#v %v", v, ok)
	}

	out, err := concat.Concat([]any{m.Get("obj")}, nil, nil)
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	if out != "key2,key0,key1" {
		t.Fatalf("expected document order, got %q", out)
	}
}

func TestDecodeYAML_MergeKeys(t *testing.T) {
	doc := []byte(`
base: &base
  a: 1
  b: 2
derived:
  <<: *base
  b: 3
  c: 4
`)
	m, err := concat.DecodeYAML(doc)
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	derived := m.Get("derived").(*concat.Mapping)
	want := []concat.Entry{{Key: "a", Value: 1}, {Key: "b", Value: 3}, {Key: "c", Value: 4}}
	if diff := cmp.Diff(want, derived.Entries()); diff != "" {
		t.Fatalf("merged entries mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeYAML_RejectsNonMappingRoot(t *testing.T) {
	if _, err := concat.DecodeYAML([]byte("- a\n- b\n")); err == nil {
		t.Fatalf("expected error for sequence root")
	}
}

func TestDecodeJSON_PreservesOrder(t *testing.T) {
	doc := []byte(`{"b": {"y": 1, "x": 2.5}, "a": [true, null, "s"], "c": "d"}`)

	m, err := concat.DecodeJSON(doc)
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, m.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	nested := m.Get("b").(*concat.Mapping)
	want := []concat.Entry{{Key: "y", Value: int64(1)}, {Key: "x", Value: 2.5}}
	if diff := cmp.Diff(want, nested.Entries()); diff != "" {
		t.Fatalf("nested entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(concat.Sequence{true, nil, "s"}, m.Get("a")); diff != "" {
		t.Fatalf("array mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"array root":    `["a"]`,
		"truncated":     `{"a": [1, 2`,
		"trailing junk": `{"a": 1} junk`,
		"second object": `{"a": 1} {"b": 2}`,
		"null root":     `null`,
	} {
		if _, err := concat.DecodeJSON([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDecode_Format(t *testing.T) {
	doc := []byte(`{"b": 1, "a": 2}`)
	for _, format := range []string{"json", ".JSON", "yaml", ".yml", ""} {
		m, err := concat.Decode(doc, format)
		if err != nil {
			t.Fatalf("%q: decode: %v", format, err)
		}
		if diff := cmp.Diff([]string{"b", "a"}, m.Keys()); diff != "" {
			t.Fatalf("%q: keys mismatch (-want +got):\n%s", format, diff)
		}
	}
}

func TestDecodeJSONValue(t *testing.T) {
	got, err := concat.DecodeJSONValue([]byte(`[{"b": 1, "a": 1.5}, "s"]`))
	if err != nil {
		t.Fatalf("decode json value: %v", err)
	}
	seq, ok := got.(concat.Sequence)
	if !ok || len(seq) != 2 {
		t.Fatalf("expected two element Sequence, got %#v", got)
	}
	obj := seq[0].(*concat.Mapping)
	want := []concat.Entry{{Key: "b", Value: int64(1)}, {Key: "a", Value: 1.5}}
	if diff := cmp.Diff(want, obj.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	if _, err := concat.DecodeJSONValue([]byte(`"a" "b"`)); err == nil {
		t.Fatalf("expected error for trailing value")
	}
}
