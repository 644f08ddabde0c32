package letters

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const storeSchema = `{
  "type": "object",
  "required": ["letters", "metadata"],
  "properties": {
    "letters": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "letter": {"type": "string"},
          "name": {"type": "string"},
          "developer_meanings": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "meaning": {"type": "string"},
                "opposite": {"type": ["string", "null"]},
                "examples": {"type": "array", "items": {"type": "string"}},
                "strength": {"type": "number"},
                "relations": {"type": "object"}
              }
            }
          }
        }
      }
    },
    "metadata": {
      "type": "object",
      "properties": {
        "letters_count": {"type": "integer"},
        "last_updated": {"type": "string"},
        "version": {"type": ["string", "number"]},
        "notes": {"type": "string"}
      }
    }
  }
}`

const supplementSchema = `{
  "type": "object",
  "required": ["letters"],
  "properties": {
    "letters": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["meanings"],
        "properties": {
          "name": {"type": "string"},
          "meanings": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["meaning"],
              "properties": {
                "meaning": {"type": "string"},
                "type": {"type": "string"},
                "opposite": {"type": ["string", "null"]}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	compiledStoreSchema      = sync.OnceValues(func() (*gojsonschema.Schema, error) { return compile(storeSchema) })
	compiledSupplementSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) { return compile(supplementSchema) })
)

func compile(src string) (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
}

// ValidateStoreDocument checks raw JSON against the letter-store schema.
// path is only used in error messages.
func ValidateStoreDocument(path string, data []byte) error {
	return validateDocument(path, data, compiledStoreSchema)
}

// ValidateSupplementDocument checks raw JSON against the supplement schema.
func ValidateSupplementDocument(path string, data []byte) error {
	return validateDocument(path, data, compiledSupplementSchema)
}

func validateDocument(path string, data []byte, schema func() (*gojsonschema.Schema, error)) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return inputError(path, "invalid JSON", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return schemaError(path, strings.Join(msgs, "; "), nil)
}
