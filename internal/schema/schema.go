// Package schema models the JSON Schema subset transmitted to LLM providers
// as function parameter definitions: type, properties, required, enum, items,
// and additionalProperties. Object schemas always carry
// additionalProperties:false because providers are invoked in strict mode for
// most capabilities.
package schema

import "encoding/json"

// Schema is a node in a parameter schema tree.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Description          string             `json:"description,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"-"`
	Items                *Schema            `json:"items,omitempty"`
	MinItems             int                `json:"minItems,omitempty"`
	UniqueItems          bool               `json:"uniqueItems,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

// MarshalJSON emits "required" for object schemas even when empty. Strict-mode
// providers reject object schemas that omit the required array.
func (s *Schema) MarshalJSON() ([]byte, error) {
	type alias Schema
	if s.Type != "object" {
		return json.Marshal((*alias)(s))
	}

	required := s.Required
	if required == nil {
		required = []string{}
	}
	return json.Marshal(struct {
		*alias
		Required []string `json:"required"`
	}{(*alias)(s), required})
}

// Object builds an object schema with additionalProperties:false.
func Object(properties map[string]*Schema, required ...string) *Schema {
	f := false
	if required == nil {
		required = []string{}
	}
	return &Schema{
		Type:                 "object",
		Properties:           properties,
		Required:             required,
		AdditionalProperties: &f,
	}
}

// String builds a string property with a description.
func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

// StringEnum builds a string property constrained to the given values.
func StringEnum(description string, values ...string) *Schema {
	return &Schema{Type: "string", Description: description, Enum: values}
}

// Integer builds an integer property with a description.
func Integer(description string) *Schema {
	return &Schema{Type: "integer", Description: description}
}

// Boolean builds a boolean property with a description.
func Boolean(description string) *Schema {
	return &Schema{Type: "boolean", Description: description}
}

// Array builds an array property with the given item schema.
func Array(description string, items *Schema) *Schema {
	return &Schema{Type: "array", Description: description, Items: items}
}

// IsStrict reports whether a schema qualifies for the provider's strict mode:
// every declared property is listed as required, at every nesting level
// (including array-of-object items). This is computed from the schema shape
// rather than declared so the two can never drift apart.
func IsStrict(s *Schema) bool {
	if s == nil {
		return true
	}

	if s.Type == "object" {
		if len(s.Required) != len(s.Properties) {
			return false
		}
		required := make(map[string]bool, len(s.Required))
		for _, name := range s.Required {
			required[name] = true
		}
		for name, prop := range s.Properties {
			if !required[name] {
				return false
			}
			if !IsStrict(prop) {
				return false
			}
		}
		return true
	}

	if s.Type == "array" {
		return IsStrict(s.Items)
	}

	return true
}

// AsMap converts a schema tree into the generic map form expected by provider
// SDKs. The conversion round-trips through JSON so custom marshaling applies.
func AsMap(s *Schema) (map[string]any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
