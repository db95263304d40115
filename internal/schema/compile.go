package schema

import (
	"strings"

	"github.com/olamide-oso/docfields/constants"
)

// FieldRule is the compiled validation/normalization rule for one field.
type FieldRule struct {
	Name        string
	Description string
	Kind        constants.FieldKind
	Required    bool

	// kind-specific parameters
	EnumValues []string // kind == enum only
	Currency   string   // kind == money only, optional ISO 4217 hint
}

// RecordType is the closed record type compiled from a declaration sequence.
// It is immutable after Compile and safe for concurrent use by multiple
// goroutines.
type RecordType struct {
	fields []FieldRule
	index  map[string]int
	scale  constants.PercentScale
}

// Fields returns the rules in declaration order.
func (rt *RecordType) Fields() []FieldRule {
	return rt.fields
}

// Rule returns the rule for a field name.
func (rt *RecordType) Rule(name string) (FieldRule, bool) {
	i, ok := rt.index[name]
	if !ok {
		return FieldRule{}, false
	}
	return rt.fields[i], true
}

// Scale returns the percent scale the type was compiled with.
func (rt *RecordType) Scale() constants.PercentScale {
	return rt.scale
}

// Compile builds a RecordType from field declarations. Auxiliary declaration
// data that does not apply to a field's kind (enum values on a non-enum,
// currency hint on a non-money) is discarded rather than rejected; structural
// problems are SchemaErrors.
func Compile(decls []FieldDeclaration, scale constants.PercentScale) (*RecordType, error) {
	if !constants.ValidScale(scale) {
		return nil, schemaErrorf("", "unsupported percent scale %q", scale)
	}

	rt := &RecordType{
		fields: make([]FieldRule, 0, len(decls)),
		index:  make(map[string]int, len(decls)),
		scale:  scale,
	}

	for _, d := range decls {
		if !ValidName(d.Name) {
			return nil, schemaErrorf(d.Name, "invalid field name")
		}
		if _, dup := rt.index[d.Name]; dup {
			return nil, schemaErrorf(d.Name, "duplicate field name")
		}

		kind, ok := constants.ParseKind(string(d.Kind))
		if !ok {
			return nil, schemaErrorf(d.Name, "unsupported field type %q", d.Kind)
		}

		rule := FieldRule{
			Name:        d.Name,
			Description: d.Description,
			Kind:        kind,
			Required:    d.Required,
		}

		switch kind {
		case constants.KindEnum:
			if len(d.EnumValues) == 0 {
				return nil, schemaErrorf(d.Name, "enum declared without values")
			}
			values := make([]string, len(d.EnumValues))
			for i, v := range d.EnumValues {
				if strings.TrimSpace(v) == "" {
					return nil, schemaErrorf(d.Name, "enum values cannot be empty")
				}
				values[i] = v
			}
			rule.EnumValues = values
		case constants.KindMoney:
			rule.Currency = strings.ToUpper(strings.TrimSpace(d.CurrencyHint))
		}

		rt.index[d.Name] = len(rt.fields)
		rt.fields = append(rt.fields, rule)
	}

	return rt, nil
}
