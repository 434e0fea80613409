package nb2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-nb2pdf/internal/notebook"
)

// maxNotebookSize bounds how much of a notebook source is read.
const maxNotebookSize = 256 << 20

var errNotebookTooLarge = errors.New("notebook exceeds 256 MiB")

// Source identifies a notebook: a file path or an open stream.
type Source struct {
	Path   string
	Reader io.Reader
}

// LoadOptions controls LoadNotebook.
type LoadOptions struct {
	SkipExecution bool        // return the notebook as saved
	Executor      Executor    // nil disables execution
	Logger        *log.Logger // nil discards
}

// LoadedNotebook is the notebook handed to the renderer.
type LoadedNotebook struct {
	Notebook *notebook.Notebook
	WorkDir  string // directory the notebook was executed in
	Executed bool   // outputs come from a successful execution
	ExecErr  error  // why execution failed, nil when executed or skipped
}

// LoadNotebook reads and parses a notebook, then tries to execute it.
//
// Read and parse failures are fatal (ErrReadNotebook, ErrNotebookLoad).
// Execution is all-or-nothing: any failure is logged and the notebook is
// returned exactly as it was saved.
func LoadNotebook(ctx context.Context, src Source, opts LoadOptions) (*LoadedNotebook, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	data, workDir, err := readSource(src, maxNotebookSize)
	if err != nil {
		return nil, err
	}

	nb, err := notebook.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotebookLoad, err)
	}

	loaded := &LoadedNotebook{Notebook: nb, WorkDir: workDir}
	if opts.SkipExecution || opts.Executor == nil {
		logger.Debug("Execution skipped", "cells", nb.Len())
		return loaded, nil
	}

	executed, err := execute(ctx, opts.Executor, data, workDir)
	if err != nil {
		logger.Warn("Execution failed, rendering saved outputs", "err", err)
		loaded.ExecErr = err
		return loaded, nil
	}

	logger.Info("Notebook executed", "cells", executed.Len())
	loaded.Notebook = executed
	loaded.Executed = true
	return loaded, nil
}

// execute runs the notebook and parses the result.
func execute(ctx context.Context, e Executor, data []byte, workDir string) (*notebook.Notebook, error) {
	out, err := e.Execute(ctx, data, workDir)
	if err != nil {
		return nil, err
	}
	nb, err := notebook.Parse(out)
	if err != nil {
		return nil, fmt.Errorf("%w: reading executed notebook: %w", ErrExecution, err)
	}
	return nb, nil
}

// readSource returns the notebook bytes and the working directory:
// the notebook's directory for files, the process directory for streams.
// Sources larger than limit bytes are rejected.
func readSource(src Source, limit int64) ([]byte, string, error) {
	switch {
	case src.Path != "":
		abs, err := filepath.Abs(src.Path)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrReadNotebook, err)
		}
		f, err := os.Open(abs) // #nosec G304 -- user-provided notebook path
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrReadNotebook, err)
		}
		defer func() { _ = f.Close() }()
		data, err := readLimited(f, limit)
		if err != nil {
			return nil, "", err
		}
		return data, filepath.Dir(abs), nil

	case src.Reader != nil:
		data, err := readLimited(src.Reader, limit)
		if err != nil {
			return nil, "", err
		}
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("%w: resolving working directory: %w", ErrReadNotebook, err)
		}
		return data, wd, nil

	default:
		return nil, "", ErrNoNotebookSource
	}
}

// readLimited reads r, failing instead of truncating past limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(r, limit+1)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadNotebook, err)
	}
	if int64(buf.Len()) > limit {
		return nil, fmt.Errorf("%w: %w (limit %d bytes)", ErrReadNotebook, errNotebookTooLarge, limit)
	}
	return buf.Bytes(), nil
}
