package preprocess

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (l *Loader) loadPDF(ctx context.Context, path string) (Document, error) {
	text, pages, err := l.pdfToText(ctx, path)
	if err != nil {
		return Document{}, err
	}
	images, err := l.pdfToImages(ctx, path)
	if err != nil {
		return Document{}, err
	}

	// pdftotext separates pages with form-feeds; one text block per page.
	blocks := strings.Split(text, "\f")
	for len(blocks) > 0 && strings.TrimSpace(blocks[len(blocks)-1]) == "" {
		blocks = blocks[:len(blocks)-1]
	}
	if l.cfg.MaxPages > 0 && len(blocks) > l.cfg.MaxPages {
		blocks = blocks[:l.cfg.MaxPages]
	}

	return Document{
		TextBlocks: blocks,
		Images:     images,
		Pages:      pages,
	}, nil
}

func (l *Loader) pdfToText(ctx context.Context, path string) (text string, pages int, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := l.runner.Run(ctx, l.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	text = string(out)
	pages = 1 + strings.Count(text, "\f")
	return text, pages, nil
}

func (l *Loader) pdfToImages(ctx context.Context, path string) ([][]byte, error) {
	tmpDir, err := os.MkdirTemp("", "df-pp-*")
	if err != nil {
		return nil, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			fmt.Printf("warning: failed to remove temp dir %q: %v\n", dir, err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := l.runner.Run(ctx, l.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", l.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if l.cfg.MaxPages > 0 && len(matches) > l.cfg.MaxPages {
		matches = matches[:l.cfg.MaxPages]
	}

	images := make([][]byte, 0, len(matches))
	for _, img := range matches {
		b, err := os.ReadFile(img)
		if err != nil {
			return nil, err
		}
		images = append(images, b)
	}
	return images, nil
}
