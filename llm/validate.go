package llm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

// validate is the shared validator instance used across the package.
var validate = validator.New()

// Validate checks a struct against its validate tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// GenerateJSONSchema reflects a JSON schema from v's type. Definitions are
// inlined so the document can be sent to APIs that reject $ref.
func GenerateJSONSchema(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot generate schema for nil")
	}
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(v)
	schema.Version = ""
	out, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return out, nil
}

// DecodeAndValidate strips a surrounding code fence from raw, unmarshals it
// into target and runs struct validation.
func DecodeAndValidate(raw string, target any) error {
	cleaned := StripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), target); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	if reflect.Indirect(reflect.ValueOf(target)).Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// StripCodeFence removes a ```json ... ``` wrapper that models like to add.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ValidateAgainstSchema checks response against schema and returns the JSON
// with any code fence removed. A Go value schema decodes into a fresh value
// of the same type and is struct-validated; a JSON document schema checks
// that the required top-level properties are present.
func ValidateAgainstSchema(response string, schema any) (string, error) {
	cleaned := StripCodeFence(response)
	if !json.Valid([]byte(cleaned)) {
		return "", fmt.Errorf("response is not valid JSON")
	}

	if doc, ok := rawSchema(schema); ok {
		return cleaned, checkRequired(cleaned, doc)
	}

	t := reflect.TypeOf(schema)
	if t == nil {
		return cleaned, nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	target := reflect.New(t).Interface()
	if err := DecodeAndValidate(cleaned, target); err != nil {
		return "", err
	}
	return cleaned, nil
}

func rawSchema(schema any) (json.RawMessage, bool) {
	switch s := schema.(type) {
	case json.RawMessage:
		return s, true
	case []byte:
		return s, true
	case string:
		return json.RawMessage(s), true
	}
	return nil, false
}

// schemaDocument returns the JSON schema document for schema.
func schemaDocument(schema any) (json.RawMessage, error) {
	if doc, ok := rawSchema(schema); ok {
		if !json.Valid(doc) {
			return nil, fmt.Errorf("schema is not valid JSON")
		}
		return doc, nil
	}
	return GenerateJSONSchema(schema)
}

func checkRequired(response string, doc json.RawMessage) error {
	var schema struct {
		Type     string   `json:"type"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(doc, &schema); err != nil {
		return fmt.Errorf("failed to parse schema JSON: %w", err)
	}
	if schema.Type != "object" {
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(response), &obj); err != nil {
		return fmt.Errorf("expected a JSON object: %w", err)
	}
	for _, field := range schema.Required {
		if _, ok := obj[field]; !ok {
			return fmt.Errorf("missing required field: %s", field)
		}
	}
	return nil
}
