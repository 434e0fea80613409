package nb2pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-nb2pdf/internal/assets"
	"github.com/alnah/go-nb2pdf/internal/dateutil"
	"github.com/alnah/go-nb2pdf/internal/report"
)

// Converter orchestrates the notebook-to-PDF conversion: load and execute,
// render the document, then typeset it with a page engine.
// Create with NewConverter, use Convert for conversion, and Close when done.
// A Converter is not safe for concurrent use; use a ConverterPool.
type Converter struct {
	cfg         converterConfig
	executor    Executor
	executorSet bool
	logger      *log.Logger
	htmlWriter  *report.HTMLWriter
	engine      pdfEngine
}

// NewConverter creates a Converter with default configuration: native
// engine, Jupyter execution, one millimeter per image pixel and a
// discard logger.
// Returns an error for unknown engines, invalid DPI or unreadable assets.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			engine:  EngineNative,
			dpi:     defaultDPI,
		},
		logger: discardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if !isValidEngine(c.cfg.engine) {
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrInvalidEngine, c.cfg.engine, EngineNative, EngineChrome)
	}
	c.cfg.engine = strings.ToLower(c.cfg.engine)

	if c.cfg.dpi <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidDPI, c.cfg.dpi)
	}

	if !c.executorSet {
		c.executor = NewJupyterExecutor()
	}

	resolver, err := assets.NewAssetResolver(c.cfg.assetsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	tmpl, css, err := resolver.LoadReport()
	if err != nil {
		return nil, fmt.Errorf("loading report assets: %w", err)
	}
	if resolver.HasCustomLoader() {
		c.logger.Debug("Using custom report assets", "dir", c.cfg.assetsDir)
	}
	c.htmlWriter, err = report.NewHTMLWriter(tmpl, css)
	if err != nil {
		return nil, fmt.Errorf("initializing HTML writer: %w", err)
	}

	// Tests may inject an engine
	if c.engine == nil {
		c.engine = c.newEngine()
	}

	return c, nil
}

func (c *Converter) newEngine() pdfEngine {
	if c.cfg.engine == EngineChrome {
		return newChromeEngine(c.htmlWriter, c.cfg.timeout, c.cfg.highlight)
	}
	return newNativeEngine()
}

// Convert loads, executes and renders one notebook.
// Execution failures never fail the conversion: the saved outputs are
// rendered instead and ConvertResult.Executed is false.
// If input.HTMLOnly is true, PDF generation is skipped.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := input.Page.Validate(); err != nil {
		return nil, err
	}
	page := input.Page.orDefault()

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	date, err := dateutil.ResolveTimestamp(input.Date, now)
	if err != nil {
		return nil, err
	}

	loaded, err := LoadNotebook(ctx, Source{Path: input.Path, Reader: input.Reader}, LoadOptions{
		SkipExecution: input.SkipExecution,
		Executor:      c.executor,
		Logger:        c.logger,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := report.Header{
		Title:      c.cfg.title,
		Student:    input.StudentName,
		Assignment: input.AssignmentName,
		Date:       date,
	}
	doc := report.Render(loaded.Notebook, header, page.geometry(c.cfg.dpi))
	c.logger.Debug("Document rendered", "cells", doc.Cells(), "blocks", len(doc.Blocks))

	res := &ConvertResult{
		Cells:    doc.Cells(),
		Executed: loaded.Executed,
		ExecErr:  loaded.ExecErr,
		WorkDir:  loaded.WorkDir,
	}

	if input.HTML || input.HTMLOnly {
		htmlContent, err := c.htmlWriter.HTML(ctx, doc, report.HTMLOptions{
			Page:      page.pageBox(),
			Highlight: c.cfg.highlight,
		})
		if err != nil {
			return nil, fmt.Errorf("serializing HTML: %w", err)
		}
		res.HTML = []byte(htmlContent)
	}

	if input.HTMLOnly {
		return res, nil
	}

	pdf, pages, err := c.engine.Render(ctx, doc, &renderOptions{Page: page, Created: now})
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	c.logger.Debug("PDF generated", "engine", c.cfg.engine, "bytes", len(pdf), "pages", pages)

	res.PDF = pdf
	res.Pages = pages
	return res, nil
}

// Engine returns the name of the configured page engine.
func (c *Converter) Engine() string {
	return c.cfg.engine
}

// Close releases engine resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.engine != nil {
		return c.engine.Close()
	}
	return nil
}
