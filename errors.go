package nb2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrNotebookLoad     = errors.New("notebook could not be loaded")
	ErrReadNotebook     = errors.New("failed to read notebook")
	ErrNoNotebookSource = errors.New("no notebook source: set Path or Reader")
	ErrExecution        = errors.New("notebook execution failed")
	ErrCellTimeout      = errors.New("cell execution timed out")
	ErrKernelNotFound   = errors.New("kernel not found")
	ErrPDFGeneration    = errors.New("PDF generation failed")
	ErrBrowserConnect   = errors.New("failed to connect to browser")
	ErrPageCreate       = errors.New("failed to create browser page")
	ErrPageLoad         = errors.New("failed to load page")
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Converter option errors.
	ErrInvalidEngine = errors.New("invalid engine")
	ErrInvalidDPI    = errors.New("invalid image DPI")

	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("converter pool is closed")
)
