package main

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Quiet keeps errors only; verbose
// adds debug output such as pool size and per-notebook timings.
func newLogger(w io.Writer, quiet, verbose bool) *log.Logger {
	level := log.InfoLevel
	switch {
	case quiet:
		level = log.ErrorLevel
	case verbose:
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
