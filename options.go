package nb2pdf

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-nb2pdf/internal/report"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout   time.Duration
	engine    string
	highlight bool
	dpi       float64
	title     string
	assetsDir string
}

// Defaults used when no option overrides them.
const (
	defaultTimeout = 2 * time.Minute
	defaultDPI     = report.DefaultDPI
)

// WithTimeout sets the page engine timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("nb2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithEngine selects the page engine: EngineNative (default) or EngineChrome.
// NewConverter rejects unknown names with ErrInvalidEngine.
func WithEngine(name string) Option {
	return func(c *Converter) {
		c.cfg.engine = name
	}
}

// WithExecutor replaces the notebook executor. Pass nil to never execute.
func WithExecutor(e Executor) Option {
	return func(c *Converter) {
		c.executor = e
		c.executorSet = true
	}
}

// WithLogger attaches a logger for progress and diagnostics.
// The default logger discards everything.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSyntaxHighlighting colors code cells in HTML output.
// The native engine always prints code as plain monospace text.
func WithSyntaxHighlighting(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.highlight = enabled
	}
}

// WithDPI sets the resolution used to convert image pixels to page units.
func WithDPI(dpi float64) Option {
	return func(c *Converter) {
		c.cfg.dpi = dpi
	}
}

// WithTitle overrides the report title.
func WithTitle(title string) Option {
	return func(c *Converter) {
		c.cfg.title = title
	}
}

// WithAssetsDir loads the HTML template and stylesheet from dir, falling
// back to the built-in ones for files it does not contain.
func WithAssetsDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetsDir = dir
	}
}

// discardLogger returns a logger that writes nothing.
func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
