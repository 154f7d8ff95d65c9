package apigateway

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled JSON Schema for a call's result field.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// CompileSchema compiles a JSON Schema document. Format keywords such as
// uuid and date-time are asserted.
func CompileSchema(name, document string) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	url := name + ".json"
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompileSchema is like CompileSchema but panics on error. It is meant
// for package-level schema variables.
func MustCompileSchema(name, document string) *Schema {
	s, err := CompileSchema(name, document)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// Validate checks v, a value decoded with jsonschema.UnmarshalJSON.
func (s *Schema) Validate(v any) error {
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

// ArrayOf returns a schema document for an array whose items match item.
func ArrayOf(item string) string {
	return `{"type": "array", "items": ` + item + `}`
}

// envelopeSchema is the v4 envelope. result is left open; per-call schemas
// validate it. Unknown fields are tolerated.
var envelopeSchema = MustCompileSchema("v4_envelope", `{
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"},
		"errors": {"type": "array", "items": {"$ref": "#/$defs/message"}},
		"messages": {"type": "array", "items": {"$ref": "#/$defs/message"}},
		"result_info": {
			"type": ["object", "null"],
			"properties": {
				"page": {"type": "integer"},
				"per_page": {"type": "integer"},
				"count": {"type": "integer"},
				"total_count": {"type": "integer"},
				"total_pages": {"type": "integer"}
			}
		}
	},
	"$defs": {
		"message": {
			"type": ["object", "string"],
			"properties": {
				"code": {"type": "integer"},
				"message": {"type": "string"}
			}
		}
	}
}`)

// errorEnvelopeSchema is the subset of the envelope needed to report an API
// error.
var errorEnvelopeSchema = MustCompileSchema("v4_error_envelope", `{
	"type": "object",
	"required": ["success", "errors"],
	"properties": {
		"success": {"const": false},
		"errors": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["message"],
				"properties": {
					"code": {"type": "integer"},
					"message": {"type": "string"}
				}
			}
		}
	}
}`)
