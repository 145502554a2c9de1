package storage

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// MessagesSchema describes an experiment's messages file.
const MessagesSchema = `{
  "type": "object",
  "required": ["messages", "categories"],
  "properties": {
    "messages":   {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "categories": {"type": "array", "minItems": 1, "items": {"type": "string"}}
  }
}`

// ShotExamplesSchema describes an experiment's worked examples file.
const ShotExamplesSchema = `{
  "type": "object",
  "required": ["examples"],
  "properties": {
    "examples": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["message", "categories"],
        "properties": {
          "message":    {"type": "string"},
          "categories": {"type": "string"}
        }
      }
    }
  }
}`

// Validate checks doc against schema and returns one description per
// violation. An empty result means the document is valid.
func Validate(schema string, doc Document) []string {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return []string{fmt.Sprintf("schema validation error: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return details
}
