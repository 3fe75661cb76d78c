package llm

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildPlanJSONSchema returns the minimum contract a remote reply must meet:
// a non-empty rooms array and an integer floor count of at least 1. Wall
// mode additionally requires the wall sections. Other top-level keys are
// allowed and kept.
func BuildPlanJSONSchema(mode string) map[string]any {
	room := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"roomType":  map[string]any{"type": "string", "minLength": 1},
			"room_name": map[string]any{"type": "string"},
			"length":    decimalProp(),
			"width":     decimalProp(),
			"height":    decimalProp(),
			"thickness": decimalProp(),
			"doors":     map[string]any{"type": "array"},
			"windows":   map[string]any{"type": "array"},
		},
		"required": []string{"roomType", "length", "width"},
	}
	props := map[string]any{
		"rooms":  map[string]any{"type": "array", "minItems": 1, "items": room},
		"floors": map[string]any{"type": "integer", "minimum": 1},
	}
	required := []string{"rooms", "floors"}

	if mode == "walls" {
		props["wallDimensions"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"externalWallPerimiter": map[string]any{"type": "number", "minimum": 0},
				"internalWallPerimiter": map[string]any{"type": "number", "minimum": 0},
				"externalWallHeight":    map[string]any{"type": "number", "minimum": 0},
				"internalWallHeight":    map[string]any{"type": "number", "minimum": 0},
			},
			"required": []string{"externalWallPerimiter", "externalWallHeight"},
		}
		props["wallProperties"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"blockType": map[string]any{"type": "string"},
				"thickness": map[string]any{"type": "number", "minimum": 0},
				"plaster":   map[string]any{"type": "string"},
			},
		}
		required = append(required, "wallDimensions", "wallProperties")
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d+(\.\d+)?$`,
	}
}

// SchemaGate validates sanitized replies against a schema compiled once.
type SchemaGate struct {
	mode   string
	schema *jsonschema.Schema
}

func NewSchemaGate(mode string) (*SchemaGate, error) {
	s, err := CompileSchema(BuildPlanJSONSchema(mode))
	if err != nil {
		return nil, fmt.Errorf("plan schema (%s): %w", mode, err)
	}
	return &SchemaGate{mode: mode, schema: s}, nil
}

// Check returns nil when doc satisfies the contract.
func (g *SchemaGate) Check(doc []byte) error {
	return validateCompiled(g.schema, doc)
}
