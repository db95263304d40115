package constants

import "strings"

// FieldKind is the closed set of value kinds a declared field may have.
type FieldKind string

const (
	KindString   FieldKind = "string"
	KindBool     FieldKind = "bool"
	KindInteger  FieldKind = "integer"
	KindFloat    FieldKind = "float"
	KindDecimal  FieldKind = "decimal"
	KindDate     FieldKind = "date"
	KindDateTime FieldKind = "datetime"
	KindPercent  FieldKind = "percent"
	KindEnum     FieldKind = "enum"
	KindMoney    FieldKind = "money"
)

var allKinds = []FieldKind{
	KindString,
	KindBool,
	KindInteger,
	KindFloat,
	KindDecimal,
	KindDate,
	KindDateTime,
	KindPercent,
	KindEnum,
	KindMoney,
}

// AllKinds returns the supported kinds as strings, in stable order.
func AllKinds() []string {
	result := make([]string, len(allKinds))
	for i, k := range allKinds {
		result[i] = string(k)
	}
	return result
}

// ParseKind maps free-form input to a FieldKind. Common synonyms from
// schema-inference output ("str", "int", "number", ...) are accepted.
func ParseKind(input string) (FieldKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]FieldKind{
		"str":       KindString,
		"text":      KindString,
		"boolean":   KindBool,
		"int":       KindInteger,
		"number":    KindFloat,
		"double":    KindFloat,
		"timestamp": KindDateTime,
		"currency":  KindMoney,
	}
	if k, ok := synonyms[normalized]; ok {
		return k, true
	}

	for _, k := range allKinds {
		if normalized == string(k) {
			return k, true
		}
	}
	return "", false
}
