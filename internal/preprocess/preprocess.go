package preprocess

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/common"
)

// Document is the preprocessed content of one input file: page text plus
// rendered page images (PNG) for the vision model.
type Document struct {
	Path       string
	Format     string // constants.PDF | constants.IMAGE
	TextBlocks []string
	Images     [][]byte // PNG bytes, one per page
	Pages      int
	Metadata   map[string]string
}

// Preprocessor is the document-loading collaborator the pipeline depends on.
type Preprocessor interface {
	Load(ctx context.Context, path string) (Document, error)
}

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	DPI       int    // rasterization DPI for page images, default 150
	MaxPages  int    // 0 = no limit
}

type Loader struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewLoader(cfg Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	return &Loader{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Load reads a document from disk. Unsupported extensions return an error
// wrapping common.ErrUnsupported so callers can mark the document skipped
// instead of failed.
func (l *Loader) Load(ctx context.Context, path string) (Document, error) {
	start := time.Now()

	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return Document{}, fmt.Errorf("%w: %s", common.ErrUnsupported, filepath.Ext(path))
	}

	var (
		doc Document
		err error
	)
	switch format {
	case constants.PDF:
		doc, err = l.loadPDF(ctx, path)
	case constants.IMAGE:
		doc, err = l.loadImage(path)
	}
	if err != nil {
		return Document{}, common.NewAppError(common.CodePreprocess, "load "+filepath.Base(path), err)
	}

	doc.Path = path
	doc.Format = format
	doc.Metadata = map[string]string{
		"file": filepath.Base(path),
		"type": format,
	}

	l.logger.Info("preprocess.load.ok",
		"path", path,
		"format", format,
		"pages", doc.Pages,
		"text_blocks", len(doc.TextBlocks),
		"images", len(doc.Images),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

func (l *Loader) loadImage(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Images: [][]byte{b},
		Pages:  1,
	}, nil
}
