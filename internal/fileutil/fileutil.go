// Package fileutil provides file and path helpers shared by the converter
// and the CLI.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NotebookExt is the extension of Jupyter notebook files.
const NotebookExt = ".ipynb"

// CheckpointDir is the directory Jupyter uses for autosaved copies.
const CheckpointDir = ".ipynb_checkpoints"

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// WriteTempFile creates a temporary file with the given content and extension.
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp("", "nb2pdf-*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsNotebook reports whether path names a notebook file (case-insensitive).
func IsNotebook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), NotebookExt)
}

// ReplaceExt swaps the extension of path for ext (with leading dot).
// When outDir is set the file is placed there instead of next to path.
//
// Examples:
//   - ("hw/lab1.ipynb", "", ".pdf") -> "hw/lab1.pdf"
//   - ("hw/lab1.ipynb", "out", ".html") -> "out/lab1.html"
//   - ("notes", "", ".pdf") -> "notes.pdf"
func ReplaceExt(path, outDir, ext string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ext
	if outDir != "" {
		return filepath.Join(outDir, base)
	}
	return filepath.Join(filepath.Dir(path), base)
}
