package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/common"
	"github.com/olamide-oso/docfields/internal/export"
	"github.com/olamide-oso/docfields/internal/llm"
	"github.com/olamide-oso/docfields/internal/pipeline"
	"github.com/olamide-oso/docfields/internal/preprocess"
	"github.com/olamide-oso/docfields/internal/repository"
	"github.com/olamide-oso/docfields/internal/schemafile"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		schemaText = flag.String("schema", "", "user instructions describing fields to extract")
		schemaFile = flag.String("schema-file", "", "YAML file declaring fields (bypasses schema inference)")
		dir        = flag.String("dir", "", "directory to scan for documents (alternative to positional paths)")
		out        = flag.String("out", "extractions.xlsx", "output XLSX file path")
		scaleStr   = flag.String("percent-scale", "", "percent normalization scale ('0-1' or '0-100')")
		workers    = flag.Int("workers", 0, "concurrent document workers (default from PIPELINE_WORKERS)")
		store      = flag.Bool("store", false, "persist outcomes to the run-history database")
		logLevel   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))
	slog.SetDefault(logger)

	if *schemaText == "" && *schemaFile == "" {
		printError("Error: --schema or --schema-file is required\n")
		os.Exit(1)
	}

	docs := flag.Args()
	if *dir != "" {
		scanned, err := scanDirectory(*dir)
		if err != nil {
			printError("Error: scan %s: %v\n", *dir, err)
			os.Exit(1)
		}
		docs = append(docs, scanned...)
	}
	if len(docs) == 0 {
		printError("Error: no documents given (positional paths or --dir)\n")
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := common.LoadConfig()
	if *scaleStr != "" {
		cfg.Pipeline.PercentScale = constants.PercentScale(*scaleStr)
	}
	if *workers > 0 {
		cfg.Pipeline.Workers = *workers
	}

	// A schema file needs no LLM key unless we also extract; extraction
	// always needs one, so config validation stays unconditional.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		logger.Error("failed to create LLM provider", "error", err)
		os.Exit(1)
	}

	var inferrer llm.SchemaInferrer
	if *schemaFile != "" {
		inferrer = schemafile.Inferrer{Path: *schemaFile}
		logger.Info("using schema file", "path", *schemaFile)
	} else {
		inferrer = llm.NewInferrer(provider, cfg.LLM, logger)
	}

	loader := preprocess.NewLoader(preprocess.Config{
		Pdftotext: cfg.Preprocess.Pdftotext,
		Pdftoppm:  cfg.Preprocess.Pdftoppm,
		DPI:       cfg.Preprocess.DPI,
		MaxPages:  cfg.Preprocess.MaxPages,
	}, logger)
	extractor := llm.NewExtractor(provider, cfg.LLM, logger)

	p := pipeline.New(inferrer, loader, extractor, logger)
	result := p.Run(ctx, docs, *schemaText, pipeline.Options{
		PercentScale: cfg.Pipeline.PercentScale,
		Workers:      cfg.Pipeline.Workers,
	})

	if *store {
		db, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to open run-history store", "error", err)
			os.Exit(1)
		}
		defer repository.Close(db, logger)

		runs := repository.NewRunStore(db, logger)
		if err := runs.Migrate(ctx); err != nil {
			logger.Error("failed to migrate run-history store", "error", err)
			os.Exit(1)
		}
		if err := runs.SaveRun(ctx, result, *schemaText, cfg.Pipeline.PercentScale); err != nil {
			logger.Error("failed to save run", "error", err)
			os.Exit(1)
		}
	}

	exporter := export.NewService(logger)
	xlsxBytes, err := exporter.WriteXLSX(result.Type, result.Outcomes)
	if err != nil {
		logger.Error("failed to build workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	for _, o := range result.Outcomes {
		reason := o.Err
		if reason == "" {
			reason = "ok"
		}
		fmt.Printf("%s: %s (%s)\n", filepath.Base(o.Document), o.Status, reason)
	}
	fmt.Printf("Wrote results to %s\n", *out)
}

// scanDirectory walks root and returns supported document paths, sorted for a
// deterministic processing order. Hidden files and directories are skipped.
func scanDirectory(root string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(docs)
	return docs, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
