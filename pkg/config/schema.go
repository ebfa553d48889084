package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed fixture.schema.json
var fixtureSchemaJSON []byte

const fixtureSchemaURL = "fixture.schema.json"

var compileFixtureSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(fixtureSchemaURL, bytes.NewReader(fixtureSchemaJSON)); err != nil {
		return nil, fmt.Errorf("adding fixture schema: %w", err)
	}
	return compiler.Compile(fixtureSchemaURL)
})

// SchemaValidationError represents a single fixture validation error.
type SchemaValidationError struct {
	Path    string // JSON pointer into the document, e.g. "/0/response/status"
	Message string
}

func (e SchemaValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// SchemaValidationResult contains all validation errors for a document.
type SchemaValidationResult struct {
	Errors []SchemaValidationError
}

// IsValid returns true if there are no validation errors.
func (r *SchemaValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error message.
func (r *SchemaValidationResult) Error() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// AddError adds a validation error.
func (r *SchemaValidationResult) AddError(path, message string) {
	r.Errors = append(r.Errors, SchemaValidationError{Path: path, Message: message})
}

// ValidateFixtureDocument validates a decoded YAML document against the
// fixture schema. The returned result is never nil.
func ValidateFixtureDocument(doc any) (*SchemaValidationResult, error) {
	result := &SchemaValidationResult{}

	schema, err := compileFixtureSchema()
	if err != nil {
		return result, err
	}

	// Round-trip through encoding/json so the validator sees JSON types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return result, fmt.Errorf("converting fixture to JSON: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return result, fmt.Errorf("converting fixture to JSON: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return result, err
		}
		collectSchemaErrors(ve, result)
	}
	return result, nil
}

// collectSchemaErrors flattens the leaves of a validation error tree.
func collectSchemaErrors(err *jsonschema.ValidationError, result *SchemaValidationResult) {
	if len(err.Causes) == 0 {
		result.AddError(err.InstanceLocation, err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, result)
	}
}
