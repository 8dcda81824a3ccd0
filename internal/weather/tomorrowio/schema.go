package tomorrowio

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	realtimeSchema  = mustCompileSchema("schemas/realtime.json")
	timelinesSchema = mustCompileSchema("schemas/timelines.json")
)

// payloadSchema checks a raw provider body before it is decoded into Go types.
type payloadSchema struct {
	name   string
	schema *jsonschema.Schema
}

func mustCompileSchema(path string) *payloadSchema {
	data, err := schemaFS.ReadFile(path)
	if err != nil {
		panic("tomorrowio: reading " + path + ": " + err.Error())
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(path, bytes.NewReader(data)); err != nil {
		panic("tomorrowio: loading " + path + ": " + err.Error())
	}

	schema, err := compiler.Compile(path)
	if err != nil {
		panic("tomorrowio: compiling " + path + ": " + err.Error())
	}

	return &payloadSchema{name: path, schema: schema}
}

func (s *payloadSchema) validate(body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("body is not valid JSON: %w", err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return fmt.Errorf("body does not match %s: %w", s.name, err)
	}
	return nil
}
