package llm

import (
	"strings"

	"github.com/olamide-oso/docfields/internal/preprocess"
	"github.com/olamide-oso/docfields/internal/schema"
)

// BuildInferSystemPrompt composes the system message for the schema agent:
// map user-described fields onto the closed kind set, nothing invented.
func BuildInferSystemPrompt() string {
	parts := []string{
		"You map user-described fields to a strict schema using only allowed types.",
		"Allowed types: string, bool, integer, float, decimal, date (YYYY-MM-DD), datetime (ISO 8601),",
		"percent (as a number), enum (with enum_values), money (amount + currency).",
		"Rules:",
		"1) Do not invent fields.",
		"2) Field names must start with a letter and contain only letters, numbers, underscore.",
		"3) For enum, provide enum_values explicitly.",
		"4) For money, you may include currency_hint if the user gave one (ISO 4217).",
		"5) Output only JSON matching the expected schema.",
	}
	return strings.Join(parts, " ")
}

// BuildExtractSystemPrompt composes the system message for the extraction
// agent. Evidence-only answers; uncertain fields stay null.
func BuildExtractSystemPrompt(schemaJSON string) string {
	parts := []string{
		"You are a careful information extraction assistant.",
		"Fill the provided schema using only evidence from the document text and images.",
		"If a value is missing or unclear, use null. Do not invent data.",
		"Return ONLY JSON that matches this JSON Schema:",
		schemaJSON,
	}
	return strings.Join(parts, "\n")
}

// BuildExtractUserPrompt assembles instructions, metadata, and document text
// for one extraction call. Page images travel separately as message parts.
func BuildExtractUserPrompt(rt *schema.RecordType, doc preprocess.Document, instructions string) string {
	var b strings.Builder
	b.WriteString(instructions)

	if len(doc.Metadata) > 0 {
		b.WriteString("\n\nMetadata:")
		for _, k := range []string{"file", "type"} {
			if v, ok := doc.Metadata[k]; ok {
				b.WriteString(" " + k + "=" + v)
			}
		}
	}

	if len(doc.TextBlocks) > 0 {
		b.WriteString("\n\nDocument text:\n")
		b.WriteString(strings.Join(doc.TextBlocks, "\n\n"))
	}

	if len(doc.Images) > 0 {
		b.WriteString("\n\nPage images attached.")
	}

	return b.String()
}
