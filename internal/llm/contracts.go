package llm

import (
	"context"

	"github.com/olamide-oso/docfields/internal/preprocess"
	"github.com/olamide-oso/docfields/internal/schema"
)

// SchemaInferrer turns free-text user instructions into field declarations.
// A failure here is fatal to the whole run: there is no record type to
// validate against.
type SchemaInferrer interface {
	Infer(ctx context.Context, instructions string) ([]schema.FieldDeclaration, error)
}

// FieldExtractor fills a raw value set for one document against the compiled
// record type. It may return null for fields it is uncertain about; the
// validator decides whether that is acceptable. Numbers in the returned map
// are json.Number.
type FieldExtractor interface {
	Extract(ctx context.Context, rt *schema.RecordType, doc preprocess.Document, instructions string) (map[string]any, error)
}
