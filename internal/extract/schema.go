package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/deepread-extract/constants"
)

// BuildExtractedInformationSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map for the first page's extractedInformation of the given layout.
func BuildExtractedInformationSchema(layout Layout) map[string]any {
	if layout == LayoutForm {
		return map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"key"},
				"properties": map[string]any{
					"key": regionProp(),
					"value": map[string]any{
						"oneOf": []any{
							map[string]any{"type": "null"},
							regionProp(),
						},
					},
				},
			},
		}
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"fields"},
		"properties": map[string]any{
			"fields": map[string]any{
				"type":                 "object",
				"additionalProperties": regionProp(),
			},
		},
	}
}

func regionProp() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"bounding_box"},
		"properties": map[string]any{
			"bounding_box": map[string]any{
				"type":     "array",
				"minItems": 4,
				"maxItems": 4,
				"items":    map[string]any{"type": "number"},
			},
		},
	}
}

var (
	compileOnce sync.Once
	compiled    map[Layout]*jsonschema.Schema
	compileErr  error
)

func schemaFor(layout Layout) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[Layout]*jsonschema.Schema, 2)
		for _, l := range []Layout{LayoutForm, LayoutPreset} {
			s, err := compileSchema(l.String()+".json", BuildExtractedInformationSchema(l))
			if err != nil {
				compileErr = err
				return
			}
			compiled[l] = s
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	return compiled[layout], nil
}

func compileSchema(url string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateShape checks that data's first page matches the layout pt implies.
func ValidateShape(pt constants.ProcessType, data json.RawMessage) error {
	return validateLayout(LayoutFor(pt), data)
}

func validateLayout(layout Layout, data json.RawMessage) error {
	info, err := FirstPageInformation(data)
	if err != nil {
		return err
	}
	schema, err := schemaFor(layout)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(info, &v); err != nil {
		return fmt.Errorf("unmarshal extractedInformation: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("extractedInformation does not match %s layout: %w", layout, err)
	}
	return nil
}
