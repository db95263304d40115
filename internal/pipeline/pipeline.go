package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/common"
	"github.com/olamide-oso/docfields/internal/llm"
	"github.com/olamide-oso/docfields/internal/preprocess"
	"github.com/olamide-oso/docfields/internal/schema"
)

// DefaultInstructions is the extraction instruction used when the caller has
// nothing more specific to say.
const DefaultInstructions = "Extract the requested fields from the document."

// Outcome is one document's result: a normalized record or a failure reason.
type Outcome struct {
	Document string
	Status   constants.OutcomeStatus
	Fields   schema.Record // nil unless Status == ok
	Err      string        // empty when Status == ok
}

// Result is a whole run: the compiled record type (nil if schema resolution
// failed) plus one outcome per input document, in input order.
type Result struct {
	RunID    uuid.UUID
	Type     *schema.RecordType
	Outcomes []Outcome
}

// Options are per-run knobs.
type Options struct {
	PercentScale constants.PercentScale
	Workers      int    // concurrent document workers, min 1
	Instructions string // extraction instruction, DefaultInstructions if empty
}

// Pipeline coordinates schema inference, compilation, and per-document
// extraction/validation.
type Pipeline struct {
	inferrer  llm.SchemaInferrer
	loader    preprocess.Preprocessor
	extractor llm.FieldExtractor
	logger    *slog.Logger
}

func New(inferrer llm.SchemaInferrer, loader preprocess.Preprocessor, extractor llm.FieldExtractor, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{inferrer: inferrer, loader: loader, extractor: extractor, logger: logger}
}

// Run resolves and compiles the schema once, then processes every document
// independently. A schema-level failure short-circuits: every document gets
// the same failure outcome and no document work starts. A single document's
// failure never disturbs the others; Run always returns one outcome per
// input, in input order.
func (p *Pipeline) Run(ctx context.Context, docs []string, schemaInstructions string, opts Options) Result {
	runID := uuid.New()
	start := time.Now()

	if opts.PercentScale == "" {
		opts.PercentScale = constants.ScaleUnit
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Instructions == "" {
		opts.Instructions = DefaultInstructions
	}

	p.logger.Info("pipeline.run.start",
		"run_id", runID.String(),
		"documents", len(docs),
		"percent_scale", string(opts.PercentScale),
		"workers", opts.Workers,
	)

	decls, err := p.inferrer.Infer(ctx, schemaInstructions)
	if err != nil {
		p.logger.Error("pipeline.infer.failed", "run_id", runID.String(), "error", err)
		return Result{RunID: runID, Outcomes: failAll(docs, "schema inference: "+err.Error())}
	}

	rt, err := schema.Compile(decls, opts.PercentScale)
	if err != nil {
		p.logger.Error("pipeline.compile.failed", "run_id", runID.String(), "error", err)
		return Result{RunID: runID, Outcomes: failAll(docs, "schema compile: "+err.Error())}
	}
	p.logger.Info("pipeline.compile.ok", "run_id", runID.String(), "fields", len(rt.Fields()))

	outcomes := make([]Outcome, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, path := range docs {
		g.Go(func() error {
			outcomes[i] = p.processDocument(gctx, rt, path, opts.Instructions)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures live in outcomes

	ok, failed, skipped := 0, 0, 0
	for _, o := range outcomes {
		switch o.Status {
		case constants.StatusOK:
			ok++
		case constants.StatusSkipped:
			skipped++
		default:
			failed++
		}
	}
	p.logger.Info("pipeline.run.done",
		"run_id", runID.String(),
		"ok", ok,
		"failed", failed,
		"skipped", skipped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{RunID: runID, Type: rt, Outcomes: outcomes}
}

func (p *Pipeline) processDocument(ctx context.Context, rt *schema.RecordType, path, instructions string) Outcome {
	start := time.Now()

	doc, err := p.loader.Load(ctx, path)
	if err != nil {
		if errors.Is(err, common.ErrUnsupported) {
			p.logger.Warn("pipeline.document.skipped", "path", path, "error", err)
			return Outcome{Document: path, Status: constants.StatusSkipped, Err: err.Error()}
		}
		p.logger.Error("pipeline.preprocess.failed", "path", path, "error", err)
		return Outcome{Document: path, Status: constants.StatusError, Err: err.Error()}
	}

	raw, err := p.extractor.Extract(ctx, rt, doc, instructions)
	if err != nil {
		p.logger.Error("pipeline.extract.failed", "path", path, "error", err)
		return Outcome{Document: path, Status: constants.StatusError, Err: err.Error()}
	}

	record, err := rt.Normalize(raw)
	if err != nil {
		p.logger.Error("pipeline.validate.failed", "path", path, "error", err)
		return Outcome{Document: path, Status: constants.StatusError, Err: err.Error()}
	}

	p.logger.Info("pipeline.document.ok",
		"path", path,
		"fields", len(record),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Outcome{Document: path, Status: constants.StatusOK, Fields: record}
}

func failAll(docs []string, reason string) []Outcome {
	outcomes := make([]Outcome, len(docs))
	for i, d := range docs {
		outcomes[i] = Outcome{Document: d, Status: constants.StatusError, Err: reason}
	}
	return outcomes
}
