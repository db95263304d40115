package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	llmdomain "github.com/lexlapax/go-llms/pkg/llm/domain"

	"github.com/olamide-oso/docfields/internal/common"
	"github.com/olamide-oso/docfields/internal/preprocess"
	"github.com/olamide-oso/docfields/internal/schema"
)

// Extractor implements FieldExtractor on top of a go-llms provider, sending
// the document text plus rendered page images in one multimodal message.
type Extractor struct {
	provider    llmdomain.Provider
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
}

func NewExtractor(p llmdomain.Provider, cfg common.LLMConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{provider: p, temperature: cfg.Temperature, timeout: cfg.Timeout, logger: logger}
}

// callContext bounds one provider call; zero timeout means the caller's
// context rules.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (a *Extractor) Extract(ctx context.Context, rt *schema.RecordType, doc preprocess.Document, instructions string) (map[string]any, error) {
	rid := uuid.New().String()
	start := time.Now()

	schemaMap := BuildRecordJSONSchema(rt)
	schemaJSON, err := json.MarshalIndent(schemaMap, "", "  ")
	if err != nil {
		return nil, common.NewAppError(common.CodeExtract, "encode schema", err)
	}

	a.logger.Info("llm.extract.start",
		"req_id", rid,
		"path", doc.Path,
		"fields", len(rt.Fields()),
		"text_blocks", len(doc.TextBlocks),
		"images", len(doc.Images),
	)

	messages := []llmdomain.Message{
		llmdomain.NewTextMessage(llmdomain.RoleSystem, BuildExtractSystemPrompt(string(schemaJSON))),
		buildUserMessage(rt, doc, instructions),
	}

	callCtx, cancel := callContext(ctx, a.timeout)
	defer cancel()

	resp, err := a.provider.GenerateMessage(callCtx, messages, llmdomain.WithTemperature(a.temperature))
	if err != nil {
		a.logger.Error("llm.extract.failed",
			"req_id", rid, "path", doc.Path, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewAppError(common.CodeExtract, "extraction call", err)
	}

	raw := extractJSON(resp.Content)
	if raw == "" {
		a.logger.Error("llm.extract.no_json",
			"req_id", rid, "path", doc.Path, "content_len", len(resp.Content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewAppError(common.CodeExtract, "no JSON object in response",
			fmt.Errorf("content: %s", truncate(resp.Content, 256)))
	}

	cleaned, _, err := SanitizeRawJSON([]byte(raw), rt, a.logger)
	if err != nil {
		return nil, common.NewAppError(common.CodeExtract, "sanitize response", err)
	}

	if err := ValidateJSONAgainstSchema(schemaMap, cleaned); err != nil {
		a.logger.Warn("llm.extract.schema_mismatch",
			"req_id", rid, "path", doc.Path, "error", err,
		)
		// let the record validator produce the per-field reasons; schema
		// mismatch alone does not discard the raw values
	}

	var out map[string]any
	dec := json.NewDecoder(strings.NewReader(string(cleaned)))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, common.NewAppError(common.CodeExtract, "decode response", err)
	}

	a.logger.Info("llm.extract.ok",
		"req_id", rid,
		"path", doc.Path,
		"keys", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func buildUserMessage(rt *schema.RecordType, doc preprocess.Document, instructions string) llmdomain.Message {
	parts := []llmdomain.ContentPart{
		{
			Type: llmdomain.ContentTypeText,
			Text: BuildExtractUserPrompt(rt, doc, instructions),
		},
	}
	for _, img := range doc.Images {
		parts = append(parts, llmdomain.ContentPart{
			Type: llmdomain.ContentTypeImage,
			Image: &llmdomain.ImageContent{
				Source: llmdomain.SourceInfo{
					Type:      llmdomain.SourceTypeBase64,
					MediaType: http.DetectContentType(img),
					Data:      base64.StdEncoding.EncodeToString(img),
				},
			},
		})
	}
	return llmdomain.Message{Role: llmdomain.RoleUser, Content: parts}
}

// extractJSON pulls the outermost JSON object out of a model response that
// may carry prose or markdown fences around it.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
