package nb2pdf

// Notes:
// - Tests Converter.Convert with a mocked executor and page engine
// - withPDFEngine injects the engine; WithExecutor injects the executor
// - The native engine is exercised end to end in pdf_native_test.go

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-nb2pdf/internal/dateutil"
	"github.com/alnah/go-nb2pdf/internal/report"
)

func newTestConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	conv, err := NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })
	return conv
}

// ---------------------------------------------------------------------------
// TestNewConverter - Option validation
// ---------------------------------------------------------------------------

func TestNewConverter_Defaults(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)

	if conv.Engine() != EngineNative {
		t.Errorf("Engine() = %q, want %q", conv.Engine(), EngineNative)
	}
	if _, ok := conv.engine.(*nativeEngine); !ok {
		t.Errorf("engine = %T, want *nativeEngine", conv.engine)
	}
	if _, ok := conv.executor.(*JupyterExecutor); !ok {
		t.Errorf("executor = %T, want *JupyterExecutor", conv.executor)
	}
	if conv.cfg.dpi != defaultDPI {
		t.Errorf("dpi = %g, want %g", conv.cfg.dpi, defaultDPI)
	}
}

func TestNewConverter_Options(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"chrome engine", []Option{WithEngine("Chrome")}, nil},
		{"unknown engine", []Option{WithEngine("latex")}, ErrInvalidEngine},
		{"zero dpi", []Option{WithDPI(0)}, ErrInvalidDPI},
		{"negative dpi", []Option{WithDPI(-72)}, ErrInvalidDPI},
		{"missing assets dir", []Option{WithAssetsDir("/no/such/assets/dir")}, ErrInvalidAssetPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv, err := NewConverter(tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewConverter() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConverter() unexpected error: %v", err)
			}
			defer conv.Close()
		})
	}
}

func TestNewConverter_ChromeEngineIsLazy(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, WithEngine(EngineChrome))

	engine, ok := conv.engine.(*chromeEngine)
	if !ok {
		t.Fatalf("engine = %T, want *chromeEngine", conv.engine)
	}
	if r, ok := engine.renderer.(*rodRenderer); !ok || r.browser != nil {
		t.Error("browser should not be launched before the first conversion")
	}
}

func TestNewConverter_NilExecutor(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, WithExecutor(nil))
	if conv.executor != nil {
		t.Errorf("executor = %T, want nil", conv.executor)
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) should panic")
		}
	}()
	WithTimeout(0)
}

// ---------------------------------------------------------------------------
// TestConvert - Pipeline flow
// ---------------------------------------------------------------------------

func TestConvert_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeNotebook(t, dir, "hw1.ipynb", savedNotebook)
	exec := &mockExecutor{output: []byte(executedNotebook)}
	engine := &mockEngine{output: []byte("%PDF-1.4 test"), pages: 2}

	conv := newTestConverter(t, WithExecutor(exec), withPDFEngine(engine))

	result, err := conv.Convert(context.Background(), Input{
		Path:           path,
		StudentName:    "Ada Lovelace",
		AssignmentName: "Homework 1",
		Now:            testNow,
	})
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}

	if string(result.PDF) != "%PDF-1.4 test" {
		t.Errorf("PDF = %q, want %q", result.PDF, "%PDF-1.4 test")
	}
	if result.Pages != 2 {
		t.Errorf("Pages = %d, want 2", result.Pages)
	}
	if result.Cells != 3 {
		t.Errorf("Cells = %d, want 3", result.Cells)
	}
	if !result.Executed {
		t.Error("Executed = false, want true")
	}
	if result.WorkDir != dir {
		t.Errorf("WorkDir = %q, want %q", result.WorkDir, dir)
	}
	if result.HTML != nil {
		t.Error("HTML should be nil when not requested")
	}

	if exec.workDir != dir {
		t.Errorf("executor workDir = %q, want %q", exec.workDir, dir)
	}
	if string(exec.input) != savedNotebook {
		t.Error("executor should receive the notebook bytes unchanged")
	}

	h := engine.doc.Header
	if h.Title != report.DefaultTitle || h.Student != "Ada Lovelace" || h.Assignment != "Homework 1" || h.Date != "2024-03-15 09:05" {
		t.Errorf("header = %+v", h)
	}
	if !engine.opts.Created.Equal(testNow) {
		t.Errorf("Created = %v, want %v", engine.opts.Created, testNow)
	}
	if engine.opts.Page.Size != PageSizeA4 {
		t.Errorf("page size = %q, want default %q", engine.opts.Page.Size, PageSizeA4)
	}

	var outputs []string
	for _, b := range engine.doc.Blocks {
		if b.Kind == report.KindOutput {
			outputs = append(outputs, b.Text)
		}
	}
	if len(outputs) != 1 || outputs[0] != "stdout: fresh\n" {
		t.Errorf("outputs = %q, want the executed output", outputs)
	}
}

func TestConvert_ExecutionFailureUsesSavedOutputs(t *testing.T) {
	t.Parallel()

	path := writeNotebook(t, t.TempDir(), "hw.ipynb", savedNotebook)
	exec := &mockExecutor{err: ErrExecution}
	engine := &mockEngine{}

	conv := newTestConverter(t, WithExecutor(exec), withPDFEngine(engine))

	result, err := conv.Convert(context.Background(), Input{Path: path, Now: testNow})
	if err != nil {
		t.Fatalf("Convert() should absorb execution failures, got %v", err)
	}
	if result.Executed {
		t.Error("Executed = true, want false")
	}
	if !errors.Is(result.ExecErr, ErrExecution) {
		t.Errorf("ExecErr = %v, want ErrExecution", result.ExecErr)
	}
	if result.Cells != 3 {
		t.Errorf("Cells = %d, want 3", result.Cells)
	}

	found := false
	for _, b := range engine.doc.Blocks {
		if b.Kind == report.KindOutput && b.Text == "stdout: saved\n" {
			found = true
		}
	}
	if !found {
		t.Error("saved output missing from document")
	}
}

func TestConvert_SkipExecution(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{output: []byte(executedNotebook)}
	conv := newTestConverter(t, WithExecutor(exec), withPDFEngine(&mockEngine{}))

	result, err := conv.Convert(context.Background(), Input{
		Reader:        strings.NewReader(savedNotebook),
		SkipExecution: true,
	})
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}
	if exec.called {
		t.Error("executor should not run with SkipExecution")
	}
	if result.Executed {
		t.Error("Executed = true, want false")
	}
}

func TestConvert_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{
			name:    "invalid page size",
			input:   Input{Reader: strings.NewReader(savedNotebook), Page: &PageSettings{Size: "a5", Orientation: "portrait", Margin: 0.5}},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "invalid margin",
			input:   Input{Reader: strings.NewReader(savedNotebook), Page: &PageSettings{Size: "a4", Orientation: "portrait", Margin: 5}},
			wantErr: ErrInvalidMargin,
		},
		{
			name:    "invalid date layout",
			input:   Input{Reader: strings.NewReader(savedNotebook), Date: "auto:[oops"},
			wantErr: dateutil.ErrInvalidDateFormat,
		},
		{
			name:    "no source",
			input:   Input{},
			wantErr: ErrNoNotebookSource,
		},
		{
			name:    "not a notebook",
			input:   Input{Reader: strings.NewReader("not json")},
			wantErr: ErrNotebookLoad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exec := &mockExecutor{output: []byte(executedNotebook)}
			engine := &mockEngine{}
			conv := newTestConverter(t, WithExecutor(exec), withPDFEngine(engine))

			_, err := conv.Convert(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Convert() error = %v, want %v", err, tt.wantErr)
			}
			if engine.called {
				t.Error("engine should not run after a validation error")
			}
		})
	}
}

func TestConvert_InvalidPageRejectedBeforeExecution(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{output: []byte(executedNotebook)}
	conv := newTestConverter(t, WithExecutor(exec), withPDFEngine(&mockEngine{}))

	_, err := conv.Convert(context.Background(), Input{
		Reader: strings.NewReader(savedNotebook),
		Page:   &PageSettings{Size: "a4", Orientation: "sideways", Margin: 0.5},
	})
	if !errors.Is(err, ErrInvalidOrientation) {
		t.Fatalf("Convert() error = %v, want ErrInvalidOrientation", err)
	}
	if exec.called {
		t.Error("executor should not run for invalid page settings")
	}
}

func TestConvert_Date(t *testing.T) {
	t.Parallel()

	tests := []struct {
		date string
		want string
	}{
		{"", "2024-03-15 09:05"},
		{"auto", "2024-03-15 09:05"},
		{"auto:DD/MM/YYYY", "15/03/2024"},
		{"auto:long", "March 15, 2024 09:05"},
		{"Spring term", "Spring term"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			t.Parallel()

			engine := &mockEngine{}
			conv := newTestConverter(t, WithExecutor(nil), withPDFEngine(engine))

			_, err := conv.Convert(context.Background(), Input{
				Reader: strings.NewReader(savedNotebook),
				Date:   tt.date,
				Now:    testNow,
			})
			if err != nil {
				t.Fatalf("Convert() unexpected error: %v", err)
			}
			if got := engine.doc.Header.Date; got != tt.want {
				t.Errorf("Date = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvert_Title(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	conv := newTestConverter(t, WithExecutor(nil), WithTitle("Lab Report"), withPDFEngine(engine))

	if _, err := conv.Convert(context.Background(), Input{Reader: strings.NewReader(savedNotebook)}); err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}
	if got := engine.doc.Header.Title; got != "Lab Report" {
		t.Errorf("Title = %q, want %q", got, "Lab Report")
	}
}

func TestConvert_PageGeometry(t *testing.T) {
	t.Parallel()

	// 960 px is 960 mm at the default DPI, wider than any usable width
	nb := `{"nbformat": 4, "cells": [{"cell_type": "code", "source": "plot()", "outputs": [
	  {"output_type": "display_data", "data": {"image/png": "` + pngPayload(t, 960, 96) + `"}}]}]}`

	engine := &mockEngine{}
	conv := newTestConverter(t, WithExecutor(nil), withPDFEngine(engine))

	page := &PageSettings{Size: PageSizeLetter, Orientation: OrientationLandscape, Margin: 1}
	if _, err := conv.Convert(context.Background(), Input{Reader: strings.NewReader(nb), Page: page}); err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}

	var img *report.Image
	for _, b := range engine.doc.Blocks {
		if b.Kind == report.KindImage {
			img = b.Image
		}
	}
	if img == nil {
		t.Fatal("image block missing")
	}

	wantWidth := 279.4 - 2*25.4
	if diff := img.Width - wantWidth; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("image width = %g, want %g", img.Width, wantWidth)
	}
	if img.X != 25.4 {
		t.Errorf("image x = %g, want 25.4", img.X)
	}
}

func TestConvert_HTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		html       bool
		htmlOnly   bool
		wantPDF    bool
		wantEngine bool
	}{
		{"html alongside pdf", true, false, true, true},
		{"html only", false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &mockEngine{}
			conv := newTestConverter(t, WithExecutor(nil), withPDFEngine(engine))

			result, err := conv.Convert(context.Background(), Input{
				Reader:         strings.NewReader(savedNotebook),
				StudentName:    "Ada",
				AssignmentName: "HW1",
				HTML:           tt.html,
				HTMLOnly:       tt.htmlOnly,
			})
			if err != nil {
				t.Fatalf("Convert() unexpected error: %v", err)
			}

			for _, want := range []string{"<!DOCTYPE html>", "Student: Ada", "Cell 1 (markdown)", "Format: text/latex", "@page"} {
				if !bytes.Contains(result.HTML, []byte(want)) {
					t.Errorf("HTML missing %q", want)
				}
			}
			if (result.PDF != nil) != tt.wantPDF {
				t.Errorf("PDF present = %v, want %v", result.PDF != nil, tt.wantPDF)
			}
			if engine.called != tt.wantEngine {
				t.Errorf("engine called = %v, want %v", engine.called, tt.wantEngine)
			}
		})
	}
}

func TestConvert_Highlight(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, WithExecutor(nil), WithSyntaxHighlighting(true), withPDFEngine(&mockEngine{}))

	result, err := conv.Convert(context.Background(), Input{
		Reader:   strings.NewReader(savedNotebook),
		HTMLOnly: true,
	})
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}
	if !bytes.Contains(result.HTML, []byte("<span")) {
		t.Error("highlighted HTML should contain chroma spans")
	}
}

func TestConvert_EngineError(t *testing.T) {
	t.Parallel()

	engineErr := errors.New("disk full")
	conv := newTestConverter(t, WithExecutor(nil), withPDFEngine(&mockEngine{err: engineErr}))

	_, err := conv.Convert(context.Background(), Input{Reader: strings.NewReader(savedNotebook)})
	if !errors.Is(err, engineErr) {
		t.Errorf("Convert() error = %v, want wrapped %v", err, engineErr)
	}
	if !strings.Contains(err.Error(), "converting to PDF") {
		t.Errorf("Convert() error = %q, want context prefix", err)
	}
}

func TestConvert_RecoversPanic(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, WithExecutor(nil), withPDFEngine(&mockEngine{panics: true}))

	_, err := conv.Convert(context.Background(), Input{Reader: strings.NewReader(savedNotebook)})
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Errorf("Convert() error = %v, want internal error", err)
	}
}

func TestConvert_CanceledContext(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	conv := newTestConverter(t, WithExecutor(nil), withPDFEngine(engine))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conv.Convert(ctx, Input{Reader: strings.NewReader(savedNotebook)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
	if engine.called {
		t.Error("engine should not run after cancellation")
	}
}

func TestConverter_Close(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	conv, err := NewConverter(withPDFEngine(engine))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	if err := conv.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !engine.closed {
		t.Error("Close() should close the engine")
	}
}
