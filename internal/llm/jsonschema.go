package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/schema"
)

// BuildRecordJSONSchema derives a JSON-Schema (draft 2020-12 subset) from the
// compiled record type, as a generic map. We pass it to the model as a
// structured output constraint and also use it locally to validate the raw
// response before normalization.
func BuildRecordJSONSchema(rt *schema.RecordType) map[string]any {
	props := make(map[string]any, len(rt.Fields()))
	var required []string

	for _, rule := range rt.Fields() {
		props[rule.Name] = fieldProp(rule, rt.Scale())
		if rule.Required {
			required = append(required, rule.Name)
		}
	}

	out := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func fieldProp(rule schema.FieldRule, scale constants.PercentScale) map[string]any {
	var p map[string]any
	switch rule.Kind {
	case constants.KindString:
		p = map[string]any{"type": "string"}
	case constants.KindBool:
		p = map[string]any{"type": "boolean"}
	case constants.KindInteger:
		p = map[string]any{"type": "integer"}
	case constants.KindFloat:
		p = map[string]any{"type": "number"}
	case constants.KindDecimal:
		p = decimalProp()
	case constants.KindDate:
		p = map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
	case constants.KindDateTime:
		p = map[string]any{"type": "string", "format": "date-time"}
	case constants.KindPercent:
		upper := 1.0
		if scale == constants.ScaleHundred {
			upper = 100.0
		}
		p = map[string]any{"type": "number", "minimum": 0.0, "maximum": upper}
	case constants.KindEnum:
		p = map[string]any{"type": "string", "enum": rule.EnumValues}
	case constants.KindMoney:
		// with a currency hint configured the model may omit the currency
		moneyRequired := []string{"amount", "currency"}
		if rule.Currency != "" {
			moneyRequired = []string{"amount"}
		}
		p = map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"amount":   decimalProp(),
				"currency": map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			},
			"required": moneyRequired,
		}
	default:
		p = map[string]any{"type": "string"}
	}
	if rule.Description != "" {
		p["description"] = rule.Description
	}
	return p
}

func decimalProp() map[string]any {
	// number or decimal text; the normalizer parses either exactly
	return map[string]any{
		"type": []any{"number", "string"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
