package presets

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/wr-burden-mcp-server/internal/domain"
)

const catalogSchema = `{
  "type": "object",
  "required": ["presets"],
  "properties": {
    "version": {"type": "string"},
    "lastUpdated": {"type": "string"},
    "presets": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "jobName", "weight", "squatting"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "jobName": {"type": "string", "minLength": 1},
          "category": {"type": "string"},
          "weight": {"type": "number", "minimum": 0},
          "squatting": {"type": "number", "minimum": 0},
          "source": {"type": "string"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(catalogSchema)

// ValidateCatalog checks a raw catalog document against the catalog schema.
// The returned error wraps domain.ErrInvalidCatalog.
func ValidateCatalog(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidCatalog, strings.Join(errs, "; "))
	}

	return nil
}
