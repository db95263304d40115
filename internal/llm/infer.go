package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	llmdomain "github.com/lexlapax/go-llms/pkg/llm/domain"
	schemadomain "github.com/lexlapax/go-llms/pkg/schema/domain"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/common"
	"github.com/olamide-oso/docfields/internal/schema"
)

// Inferrer implements SchemaInferrer on top of a go-llms provider.
type Inferrer struct {
	provider    llmdomain.Provider
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
}

func NewInferrer(p llmdomain.Provider, cfg common.LLMConfig, logger *slog.Logger) *Inferrer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inferrer{provider: p, temperature: cfg.Temperature, timeout: cfg.Timeout, logger: logger}
}

type inferResponse struct {
	Fields []schema.FieldDeclaration `json:"fields"`
}

// Infer asks the model to translate user instructions into field
// declarations. Structural validation of the result is the compiler's job;
// this only gets the shape right.
func (a *Inferrer) Infer(ctx context.Context, instructions string) ([]schema.FieldDeclaration, error) {
	rid := uuid.New().String()
	start := time.Now()

	a.logger.Info("llm.infer.start", "req_id", rid, "instructions_len", len(instructions))

	prompt := BuildInferSystemPrompt() + "\n\nUser field descriptions:\n" + instructions

	ctx, cancel := callContext(ctx, a.timeout)
	defer cancel()

	result, err := a.provider.GenerateWithSchema(ctx, prompt, inferSchema(),
		llmdomain.WithTemperature(a.temperature))
	if err != nil {
		a.logger.Error("llm.infer.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewAppError(common.CodeInfer, "schema inference", err)
	}

	// GenerateWithSchema returns generic JSON; round-trip into declarations.
	b, err := json.Marshal(result)
	if err != nil {
		return nil, common.NewAppError(common.CodeInfer, "encode inference result", err)
	}
	var resp inferResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, common.NewAppError(common.CodeInfer, "decode inference result", err)
	}
	if len(resp.Fields) == 0 {
		return nil, common.NewAppError(common.CodeInfer, "no fields inferred",
			fmt.Errorf("empty field list for instructions"))
	}

	a.logger.Info("llm.infer.ok",
		"req_id", rid,
		"fields", len(resp.Fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp.Fields, nil
}

func inferSchema() *schemadomain.Schema {
	return &schemadomain.Schema{
		Type: "object",
		Properties: map[string]schemadomain.Property{
			"fields": {
				Type: "array",
				Items: &schemadomain.Property{
					Type: "object",
					Properties: map[string]schemadomain.Property{
						"name": {
							Type:        "string",
							Pattern:     `^[A-Za-z][A-Za-z0-9_]*$`,
							Description: "Safe identifier, letters/numbers/underscore, starting with a letter",
						},
						"description": {Type: "string"},
						"type":        {Type: "string", Enum: constants.AllKinds()},
						"required":    {Type: "boolean"},
						"enum_values": {
							Type:  "array",
							Items: &schemadomain.Property{Type: "string"},
						},
						"currency_hint": {Type: "string"},
					},
					Required: []string{"name", "description", "type", "required"},
				},
			},
		},
		Required: []string{"fields"},
	}
}
