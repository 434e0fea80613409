package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	nb2pdf "github.com/alnah/go-nb2pdf"
	"github.com/alnah/go-nb2pdf/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrNoInput         = errors.New("no input specified")
	ErrNoNotebooks     = errors.New("no notebooks found")
	ErrWritePDF        = errors.New("failed to write PDF file")
	ErrWriteHTML       = errors.New("failed to write HTML file")
	ErrCreateOutputDir = errors.New("failed to create output directory")
)

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	student    string
	assignment string
	date       string
	page       *nb2pdf.PageSettings
	execute    bool
	html       bool
	htmlOnly   bool
	now        time.Time
}

// input builds the conversion input for one notebook.
func (p *conversionParams) input(path string) nb2pdf.Input {
	return nb2pdf.Input{
		Path:           path,
		StudentName:    p.student,
		AssignmentName: p.assignment,
		Date:           p.date,
		Page:           p.page,
		SkipExecution:  !p.execute,
		HTML:           p.html,
		HTMLOnly:       p.htmlOnly,
		Now:            p.now,
	}
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
	Cells      int
	Pages      int
	Executed   bool
}

// convertBatch processes files concurrently using the converter pool.
// Results keep the order of files.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams, logger *log.Logger) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark the jobs this worker takes as failed
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       err,
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params, logger)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile converts a single notebook and writes its outputs.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams, logger *log.Logger) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	done := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return done(fmt.Errorf("%w: %v", ErrCreateOutputDir, err))
	}

	res, err := conv.Convert(ctx, params.input(f.InputPath))
	if err != nil {
		return done(err)
	}
	result.Cells, result.Pages, result.Executed = res.Cells, res.Pages, res.Executed

	if params.execute && !res.Executed {
		logger.Warn("Notebook not executed, rendered saved outputs"+executionHint(res.ExecErr), "file", f.InputPath, "err", res.ExecErr)
	}

	// Write HTML output if requested (--html or --html-only)
	if params.htmlOnly || params.html {
		htmlPath := htmlOutputPath(f.OutputPath)
		// #nosec G306 -- HTML files are meant to be readable
		if err := os.WriteFile(htmlPath, res.HTML, filePermissions); err != nil {
			return done(fmt.Errorf("%w: %v", ErrWriteHTML, err))
		}
		if params.htmlOnly {
			result.OutputPath = htmlPath
			return done(nil)
		}
	}

	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(f.OutputPath, res.PDF, filePermissions); err != nil {
		return done(fmt.Errorf("%w: %v", ErrWritePDF, err))
	}
	return done(nil)
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns the failure count.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d cells, %s)\n",
				r.InputPath, r.OutputPath, r.Cells, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// executionHint picks the hint matching why execution failed.
func executionHint(err error) string {
	switch {
	case errors.Is(err, nb2pdf.ErrCellTimeout), errors.Is(err, context.DeadlineExceeded):
		return hints.ForExecutionTimeout()
	case errors.Is(err, nb2pdf.ErrKernelNotFound):
		return hints.ForKernelNotFound()
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return hints.ForJupyterNotFound()
	default:
		return hints.ForExecutionFailure()
	}
}

// batchError reports failed conversions. It unwraps to the first
// failure so the exit code reflects its category.
type batchError struct {
	failed int
	total  int
	first  error
}

func newBatchError(results []ConversionResult, failed int) *batchError {
	e := &batchError{failed: failed, total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			e.first = r.Err
			break
		}
	}
	return e
}

func (e *batchError) Error() string {
	if e.total == 1 {
		return "conversion failed"
	}
	return fmt.Sprintf("%d of %d conversion(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }
