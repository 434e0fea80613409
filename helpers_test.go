package nb2pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/go-nb2pdf/internal/report"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// testNow pins header timestamps.
var testNow = time.Date(2024, 3, 15, 9, 5, 0, 0, time.UTC)

// savedNotebook has one cell of each kind and a saved stream output.
const savedNotebook = `{
  "nbformat": 4,
  "nbformat_minor": 5,
  "metadata": {"kernelspec": {"name": "python3", "language": "python"}},
  "cells": [
    {"cell_type": "markdown", "metadata": {}, "source": ["# Title\n", "Intro"]},
    {"cell_type": "code", "metadata": {}, "execution_count": 1, "source": "print(1)",
     "outputs": [{"output_type": "stream", "name": "stdout", "text": ["saved\n"]}]},
    {"cell_type": "raw", "metadata": {"format": "text/latex"}, "source": "\\LaTeX"}
  ]
}`

// executedNotebook is savedNotebook after a fresh run.
const executedNotebook = `{
  "nbformat": 4,
  "nbformat_minor": 5,
  "metadata": {"kernelspec": {"name": "python3", "language": "python"}},
  "cells": [
    {"cell_type": "markdown", "metadata": {}, "source": ["# Title\n", "Intro"]},
    {"cell_type": "code", "metadata": {}, "execution_count": 1, "source": "print(1)",
     "outputs": [{"output_type": "stream", "name": "stdout", "text": ["fresh\n"]}]},
    {"cell_type": "raw", "metadata": {"format": "text/latex"}, "source": "\\LaTeX"}
  ]
}`

// writeNotebook writes content to dir/name and returns the path.
func writeNotebook(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing notebook: %v", err)
	}
	return path
}

// pngBytes returns an encoded RGBA PNG of the given pixel size.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func pngPayload(t *testing.T, w, h int) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(pngBytes(t, w, h))
}

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type mockExecutor struct {
	called  bool
	input   []byte
	workDir string
	output  []byte
	err     error
}

func (m *mockExecutor) Execute(ctx context.Context, nb []byte, workDir string) ([]byte, error) {
	m.called = true
	m.input = nb
	m.workDir = workDir
	if m.err != nil {
		return nil, m.err
	}
	return m.output, nil
}

type mockEngine struct {
	called bool
	doc    *report.Document
	opts   *renderOptions
	output []byte
	pages  int
	err    error
	panics bool
	closed bool
}

func (m *mockEngine) Render(ctx context.Context, doc *report.Document, opts *renderOptions) ([]byte, int, error) {
	if m.panics {
		panic("engine exploded")
	}
	m.called = true
	m.doc = doc
	m.opts = opts
	if m.err != nil {
		return nil, 0, m.err
	}
	if m.output != nil {
		return m.output, m.pages, nil
	}
	return []byte("%PDF-1.4 mock"), 1, nil
}

func (m *mockEngine) Close() error {
	m.closed = true
	return nil
}

type mockRenderer struct {
	called  bool
	html    string
	page    *PageSettings
	existed bool
	path    string
	err     error
}

func (m *mockRenderer) RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error) {
	m.called = true
	m.path = filePath
	m.page = page
	data, err := os.ReadFile(filePath)
	m.existed = err == nil
	m.html = string(data)
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.7 chrome"), nil
}

func (m *mockRenderer) Close() error {
	return nil
}

// ---------------------------------------------------------------------------
// Test Options (Internal Dependency Injection)
// ---------------------------------------------------------------------------

func withPDFEngine(e pdfEngine) Option {
	return func(c *Converter) {
		c.engine = e
	}
}
