package textio

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/treeline/pkg/codec"
	"github.com/matzehuels/treeline/pkg/stree"
)

func marshalJSONValue(t *testing.T, in any) string {
	t.Helper()
	s, err := codec.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data, err := MarshalJSON(s)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	return string(data)
}

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"null", nil, "null\n"},
		{"bool", true, "true\n"},
		{"int", 42, "42\n"},
		{"float", 3.5, "3.5\n"},
		{"string", "hello", `"hello"` + "\n"},
		{"ambiguous string", "42", `"42"` + "\n"},
		{"escapes", "a\"b", `"a\"b"` + "\n"},
		{"binary", []byte("hi"), `"aGk="` + "\n"},
		{"sequence", []any{1, "two", nil}, `[1,"two",null]` + "\n"},
		{"mapping", map[any]any{"b": 2, "a": 1}, `{"a":1,"b":2}` + "\n"},
		{"int key", map[any]any{3: "x"}, `{"3":"x"}` + "\n"},
		{"nested", map[any]any{"l": []any{true}}, `{"l":[true]}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := marshalJSONValue(t, tt.in)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if !json.Valid([]byte(got)) {
				t.Errorf("output %q is not valid JSON", got)
			}
		})
	}
}

func TestMarshalJSONTimestamp(t *testing.T) {
	got := marshalJSONValue(t, time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))
	if got != `"2026-08-25T12:00:00Z"`+"\n" {
		t.Errorf("got %q", got)
	}
}

func TestMarshalJSONExpandsAliases(t *testing.T) {
	shared := []any{"x"}
	got := marshalJSONValue(t, []any{shared, shared})
	if got != `[["x"],["x"]]`+"\n" {
		t.Errorf("got %q", got)
	}
}

func TestMarshalJSONCycleFails(t *testing.T) {
	m := map[any]any{}
	m["self"] = m
	s, err := codec.Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	_, err = MarshalJSON(s)
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error = %v, want cycle failure", err)
	}
}

func TestMarshalJSONRejections(t *testing.T) {
	tests := []struct {
		name string
		root *stree.Node
		want string
	}{
		{"custom tag", stree.TaggedScalar("!custom/x", "5"), "no JSON form"},
		{"infinity", stree.TaggedScalar("!!float", ".inf"), "render scalar"},
		{"nan", stree.TaggedScalar("!!float", ".nan"), "render scalar"},
		{
			"non-scalar key",
			stree.Mapping(stree.Pair{Key: stree.Sequence(), Value: stree.Scalar("x")}),
			"mapping key",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stree.NewStream()
			s.Append(stree.NewDocument(tt.root))
			_, err := MarshalJSON(s)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestMarshalJSONMultipleDocuments(t *testing.T) {
	s, err := codec.Encode(1, "two")
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalJSON(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1\n\"two\"\n" {
		t.Errorf("got %q", data)
	}
}

func TestReadJSONValues(t *testing.T) {
	s, err := UnmarshalJSON([]byte(`{"a": [1, 2.5], "b": null, "c": "text"}`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := codec.Decode(s)
	if err != nil {
		t.Fatal(err)
	}
	want := map[any]any{"a": []any{1, 2.5}, "b": nil, "c": "text"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestReadJSONMultipleDocuments(t *testing.T) {
	s, err := UnmarshalJSON([]byte("{\"n\": 1}\n{\"n\": 2}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("documents = %d, want 2", s.Len())
	}
	vals, err := codec.DecodeAll(s)
	if err != nil {
		t.Fatal(err)
	}
	want := []any{map[any]any{"n": 1}, map[any]any{"n": 2}}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("got %#v", vals)
	}
}

func TestReadJSONParseError(t *testing.T) {
	_, err := UnmarshalJSON([]byte(`{"a": `))
	if err == nil || !strings.Contains(err.Error(), "parse json") {
		t.Errorf("error = %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := map[any]any{
		"name":  "alpha",
		"count": 3,
		"ratio": 0.25,
		"tags":  []any{"a", "b"},
		"gone":  nil,
	}
	s, err := codec.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalJSON(s)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := UnmarshalJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	got, err := codec.Decode(parsed)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("got %#v, want %#v", got, in)
	}
}

func TestMarshalJSONInfinityDetail(t *testing.T) {
	s, err := codec.Encode(math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := MarshalJSON(s); err == nil {
		t.Error("infinity rendered as JSON")
	}
}
