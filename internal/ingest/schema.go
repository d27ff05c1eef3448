package ingest

import (
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// documentSchema only pins the envelope. Field level checks are done per
// entry so the error can name the offending index.
const documentSchema = `{
  "type": "object",
  "required": ["packages"],
  "properties": {
    "packages": {
      "type": "array",
      "items": {"type": "object"}
    }
  }
}`

var loadSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

func validateDocument(raw []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(raw)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidDocument, result.Errors)
}
