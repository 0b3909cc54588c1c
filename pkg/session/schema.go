package session

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// MetadataSchema is the JSON Schema for session metadata records. A record
// that parses as JSON but violates this schema is treated as corrupt.
const MetadataSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "description": {
      "type": "string"
    },
    "message_count": {
      "type": "integer",
      "minimum": 0
    },
    "total_tokens": {
      "type": ["integer", "null"]
    },
    "input_tokens": {
      "type": ["integer", "null"]
    },
    "output_tokens": {
      "type": ["integer", "null"]
    },
    "accumulated_total_tokens": {
      "type": ["integer", "null"]
    },
    "accumulated_input_tokens": {
      "type": ["integer", "null"]
    },
    "accumulated_output_tokens": {
      "type": ["integer", "null"]
    },
    "working_dir": {
      "type": "string"
    },
    "schedule_id": {
      "type": ["string", "null"]
    },
    "project_id": {
      "type": ["string", "null"]
    },
    "is_title_customized": {
      "type": "boolean"
    }
  }
}`

var metadataSchemaLoader = gojsonschema.NewStringLoader(MetadataSchema)

// validateMetadataSchema validates raw metadata bytes against MetadataSchema.
func validateMetadataSchema(data []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(metadataSchemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var sb strings.Builder
		for i, verr := range result.Errors() {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(verr.String())
		}
		return fmt.Errorf("schema validation failed: %s", sb.String())
	}

	return nil
}
