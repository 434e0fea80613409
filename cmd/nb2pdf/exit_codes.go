package main

import (
	"errors"
	"os"

	nb2pdf "github.com/alnah/go-nb2pdf"
	"github.com/alnah/go-nb2pdf/internal/config"
)

// Exit codes for nb2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, unreadable notebook
	ExitBrowser = 4 // Browser or PDF generation errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser and PDF errors (exit 4)
	if errors.Is(err, nb2pdf.ErrBrowserConnect) ||
		errors.Is(err, nb2pdf.ErrPageCreate) ||
		errors.Is(err, nb2pdf.ErrPageLoad) ||
		errors.Is(err, nb2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, nb2pdf.ErrReadNotebook) ||
		errors.Is(err, nb2pdf.ErrNotebookLoad) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrWriteHTML) ||
		errors.Is(err, ErrCreateOutputDir) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoNotebooks) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, nb2pdf.ErrInvalidPageSize) ||
		errors.Is(err, nb2pdf.ErrInvalidOrientation) ||
		errors.Is(err, nb2pdf.ErrInvalidMargin) ||
		errors.Is(err, nb2pdf.ErrInvalidEngine) ||
		errors.Is(err, nb2pdf.ErrInvalidDPI) ||
		errors.Is(err, nb2pdf.ErrInvalidAssetPath) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrInvalidDate) {
		return ExitUsage
	}

	return ExitGeneral
}
