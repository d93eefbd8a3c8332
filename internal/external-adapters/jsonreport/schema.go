package jsonreport

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed report.schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Schema returns the raw JSON Schema document for reports
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		compiledSchema, schemaErr = compiler.Compile(schemaJSON)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Validate checks an encoded report against the embedded schema
func Validate(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}
