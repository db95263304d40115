package schema

import (
	"regexp"

	"github.com/olamide-oso/docfields/constants"
)

// FieldDeclaration is one user-requested field, as produced by schema
// inference (or a schema file), before compilation.
type FieldDeclaration struct {
	Name         string              `json:"name" yaml:"name"`
	Description  string              `json:"description" yaml:"description"`
	Kind         constants.FieldKind `json:"type" yaml:"type"`
	Required     bool                `json:"required" yaml:"required"`
	EnumValues   []string            `json:"enum_values,omitempty" yaml:"enum_values,omitempty"`
	CurrencyHint string              `json:"currency_hint,omitempty" yaml:"currency_hint,omitempty"`
}

// Field names are identifiers: start with a letter, then letters/digits/underscore.
var nameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidName reports whether name is a legal field identifier.
func ValidName(name string) bool {
	return nameRE.MatchString(name)
}
