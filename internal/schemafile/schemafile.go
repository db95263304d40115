// Package schemafile loads field declarations from a YAML file, bypassing
// LLM schema inference for users who already know exactly what they want.
package schemafile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/olamide-oso/docfields/internal/schema"
)

// File is the on-disk shape:
//
//	fields:
//	  - name: invoice_total
//	    description: Grand total including tax
//	    type: money
//	    required: true
//	    currency_hint: USD
type File struct {
	Fields []schema.FieldDeclaration `yaml:"fields"`
}

// Inferrer implements llm.SchemaInferrer from a fixed file; the instructions
// argument is ignored.
type Inferrer struct {
	Path string
}

func (f Inferrer) Infer(_ context.Context, _ string) ([]schema.FieldDeclaration, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML declarations document. Structural validation beyond
// "has at least one field" belongs to the compiler.
func Parse(b []byte) ([]schema.FieldDeclaration, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}
	if len(f.Fields) == 0 {
		return nil, fmt.Errorf("schema file declares no fields")
	}
	return f.Fields, nil
}
