package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIsStrict(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		want   bool
	}{
		{
			name:   "all properties required",
			schema: Object(map[string]*Schema{"a": String("a"), "b": String("b")}, "a", "b"),
			want:   true,
		},
		{
			name:   "optional property",
			schema: Object(map[string]*Schema{"a": String("a"), "b": String("b")}, "a"),
			want:   false,
		},
		{
			name:   "empty object",
			schema: Object(nil),
			want:   true,
		},
		{
			name: "nested object with optional property",
			schema: Object(map[string]*Schema{
				"outer": Object(map[string]*Schema{"x": String("x"), "y": String("y")}, "x"),
			}, "outer"),
			want: false,
		},
		{
			name: "array of objects all required",
			schema: Object(map[string]*Schema{
				"items": Array("items", Object(map[string]*Schema{"v": String("v")}, "v")),
			}, "items"),
			want: true,
		},
		{
			name: "array of objects with optional",
			schema: Object(map[string]*Schema{
				"items": Array("items", Object(map[string]*Schema{"v": String("v"), "w": String("w")}, "v")),
			}, "items"),
			want: false,
		},
		{
			name:   "required name not in properties",
			schema: &Schema{Type: "object", Properties: map[string]*Schema{"a": String("a")}, Required: []string{"b"}},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStrict(tt.schema); got != tt.want {
				t.Errorf("IsStrict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarshalEmitsRequiredAndAdditionalProperties(t *testing.T) {
	s := Object(map[string]*Schema{"name": String("the name")})

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out := string(raw)
	if !strings.Contains(out, `"required":[]`) {
		t.Errorf("expected empty required array in output, got %s", out)
	}
	if !strings.Contains(out, `"additionalProperties":false`) {
		t.Errorf("expected additionalProperties:false in output, got %s", out)
	}
}

func TestMarshalOmitsObjectKeywordsForScalars(t *testing.T) {
	raw, err := json.Marshal(String("plain"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "required") {
		t.Errorf("scalar schema should not carry required, got %s", raw)
	}
}

func TestAsMap(t *testing.T) {
	s := Object(map[string]*Schema{
		"order": StringEnum("sort order", "asc", "desc"),
		"page":  Integer("page number"),
	}, "order", "page")

	m, err := AsMap(s)
	if err != nil {
		t.Fatalf("AsMap: %v", err)
	}
	if m["type"] != "object" {
		t.Errorf("expected object type, got %v", m["type"])
	}
	props, ok := m["properties"].(map[string]any)
	if !ok || len(props) != 2 {
		t.Fatalf("expected 2 properties, got %v", m["properties"])
	}
}
