// Package convert turns pipeline inputs into something Go's image decoders can
// read: the first page of a PDF, or a PNG copy of a HEIC photo.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/deepread-extract/constants"
)

type Config struct {
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	DPI           int    // default constants.PDFRenderDPI
	HeicConverter string // heif-convert | magick | sips; default "magick"
}

type Converter struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewConverter(cfg Config, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = constants.PDFRenderDPI
	}
	if cfg.HeicConverter == "" {
		cfg.HeicConverter = "magick"
	}
	return &Converter{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner (tests).
func (c *Converter) WithRunner(r Runner) *Converter {
	c.runner = r
	return c
}

// Renderable returns a path to a decodable image for path. Converted files
// are written next to the source, which is left untouched; other inputs are
// returned as is.
func (c *Converter) Renderable(ctx context.Context, path string) (string, error) {
	ext := filepath.Ext(path)
	switch {
	case constants.MapExtToFormat(ext) == constants.PDF:
		return c.pdfFirstPage(ctx, path)
	case constants.IsHEICExt(ext):
		return c.heicToPNG(ctx, path)
	default:
		return path, nil
	}
}

// pdfFirstPage renders page 1 to <name>.jpg beside the PDF.
func (c *Converter) pdfFirstPage(ctx context.Context, path string) (string, error) {
	if n, err := pageCount(path); err != nil {
		c.logger.Warn("convert.pdf_unreadable", "path", path, "error", err)
	} else if n > 1 {
		c.logger.Warn("convert.pdf_multi_page", "path", path, "pages", n, "hint", "only page 1 is visualised")
	}

	prefix := strings.TrimSuffix(path, filepath.Ext(path))
	out := prefix + ".jpg"

	// pdftoppm -r 250 -jpeg -singlefile -f 1 -l 1 <in.pdf> <prefix>  -> <prefix>.jpg
	err := c.runner.Run(ctx, c.cfg.Pdftoppm,
		"-r", strconv.Itoa(c.cfg.DPI), "-jpeg", "-singlefile", "-f", "1", "-l", "1", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w", err)
	}
	if _, statErr := os.Stat(out); statErr != nil {
		return "", fmt.Errorf("pdftoppm produced no output: %w", statErr)
	}
	c.logger.Debug("convert.pdf_ok", "path", path, "out", out, "dpi", c.cfg.DPI)
	return out, nil
}

// heicToPNG writes <name>.png beside the HEIC/HEIF file using the configured converter.
func (c *Converter) heicToPNG(ctx context.Context, path string) (string, error) {
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".png"

	var err error
	switch c.cfg.HeicConverter {
	case "heif-convert":
		err = c.runner.Run(ctx, "heif-convert", path, out)
	case "magick":
		err = c.runner.Run(ctx, "magick", path, out)
	case "sips":
		err = c.runner.Run(ctx, "sips", "-s", "format", "png", path, "--out", out)
	default:
		return "", fmt.Errorf("HEIC not supported: set HEIC_CONVERTER to one of: heif-convert | magick | sips")
	}
	if err != nil {
		return "", fmt.Errorf("HEIC conversion failed: %w", err)
	}
	if _, statErr := os.Stat(out); statErr != nil {
		return "", fmt.Errorf("HEIC conversion produced no output: %w", statErr)
	}
	return out, nil
}

func pageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}
