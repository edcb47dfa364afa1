// Package schemas provides JSON Schema validation for LLM-generated payloads.
// Validation is advisory: the generation layer logs problems and falls back
// rather than failing hard on schema mismatches.
package schemas

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Known schema names.
const (
	SchemaAnalysis = "analysis"
	SchemaEmail    = "email"
)

// Validate checks a JSON document against a named schema and returns a list
// of human-readable problems. An empty list means the document conforms.
func Validate(schemaName, jsonDoc string) ([]string, error) {
	data, err := schemaFiles.ReadFile(schemaName + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", schemaName, err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(data)
	documentLoader := gojsonschema.NewStringLoader(jsonDoc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems, nil
}
