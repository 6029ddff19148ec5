package codec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/risor-io/shparse/ast"
)

// Schema is the JSON Schema (draft 2020-12) describing the JSON encoding of
// a syntax tree.
//
//go:embed schema.json
var Schema string

const schemaURL = "schema://shparse/script.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, strings.NewReader(Schema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Validate checks a JSON document against Schema. A document that passes can
// be decoded with ast.Script.UnmarshalJSON. The returned error is a
// *jsonschema.ValidationError when the document is well-formed JSON but does
// not match the schema.
func Validate(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("schema compilation failed: %w", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return schema.Validate(doc)
}

// ValidateScript checks that the JSON encoding of script matches Schema.
func ValidateScript(script *ast.Script) error {
	data, err := json.Marshal(script)
	if err != nil {
		return err
	}
	return Validate(data)
}
