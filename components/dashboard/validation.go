package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// PayloadValidator checks that a widget payload matches its visualization kind.
type PayloadValidator interface {
	Validate(w Widget) error
}

// JSONSchemaValidator compiles one schema per VizKind and validates payloads.
// It checks structure only; totals that disagree with segment sums pass.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[VizKind]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[VizKind]*jsonschema.Schema),
	}
}

// Validate ensures the widget payload satisfies the schema of its kind.
func (v *JSONSchemaValidator) Validate(w Widget) error {
	if !w.Kind.Valid() {
		return fmt.Errorf("dashboard: widget %s has unsupported kind %q", w.ID, w.Kind)
	}
	schema, err := v.schemaFor(w.Kind)
	if err != nil {
		return err
	}
	data, err := json.Marshal(w.Payload)
	if err != nil {
		return fmt.Errorf("dashboard: marshal payload for %s: %w", w.ID, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("dashboard: normalize payload for %s: %w", w.ID, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: payload for %s failed validation: %w", w.ID, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(kind VizKind) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[kind]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(payloadSchema(kind))
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", kind, err)
	}
	compiler := jsonschema.NewCompiler()
	name := string(kind) + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", kind, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", kind, err)
	}
	v.mu.Lock()
	v.compiled[kind] = compiled
	v.mu.Unlock()
	return compiled, nil
}

func segmentsSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"label", "value"},
			"properties": map[string]any{
				"label": map[string]any{"type": "string", "minLength": 1},
				"value": map[string]any{"type": "number", "minimum": 0},
				"color": map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
	}
}

func payloadSchema(kind VizKind) map[string]any {
	switch kind {
	case VizEmpty:
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				"placeholder_text": map[string]any{"type": "string"},
			},
		}
	case VizProgress:
		return map[string]any{
			"type":     "object",
			"required": []string{"total"},
			"properties": map[string]any{
				"segments": segmentsSchema(),
				"total":    map[string]any{"type": "number", "minimum": 0},
				"subtitle": map[string]any{"type": "string"},
			},
		}
	default:
		return map[string]any{
			"type":     "object",
			"required": []string{"total"},
			"properties": map[string]any{
				"segments": segmentsSchema(),
				"total":    map[string]any{"type": "number", "minimum": 0},
			},
		}
	}
}

// TotalMismatches lists widgets whose Total differs from the sum of their
// segments. Rendering still works; proportions will look off.
func TotalMismatches(widgets []Widget) []string {
	var ids []string
	for _, w := range widgets {
		if w.Kind == VizEmpty || len(w.Payload.Segments) == 0 {
			continue
		}
		if w.Payload.SegmentSum() != w.Payload.Total {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

type noopPayloadValidator struct{}

func (noopPayloadValidator) Validate(Widget) error { return nil }
