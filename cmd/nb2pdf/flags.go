package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// reportFlags holds the header fields of the report.
type reportFlags struct {
	student    string
	assignment string
	title      string
	date       string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// execFlags holds notebook execution flags.
type execFlags struct {
	disabled bool
	kernel   string
	timeout  int // seconds per cell
}

// renderFlags holds page engine flags.
type renderFlags struct {
	engine    string
	highlight bool
	dpi       float64
	assetsDir string
}

// outputFlags holds output mode flags for debugging.
type outputFlags struct {
	html     bool // Output HTML alongside PDF
	htmlOnly bool // Output HTML only, skip PDF
}

// convertFlags holds all flags of the conversion command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	timeout    string
	version    bool
	report     reportFlags
	page       pageFlags
	exec       execFlags
	render     renderFlags
	outputMode outputFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// addReportFlags adds report header flags to a FlagSet.
func addReportFlags(fs *flag.FlagSet, f *reportFlags) {
	fs.StringVar(&f.student, "student", "", "student name")
	fs.StringVar(&f.assignment, "assignment", "", "assignment name")
	fs.StringVar(&f.title, "title", "", "report title")
	fs.StringVar(&f.date, "date", "", "header date (\"auto\" = now)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addExecFlags adds notebook execution flags to a FlagSet.
func addExecFlags(fs *flag.FlagSet, f *execFlags) {
	fs.BoolVar(&f.disabled, "no-exec", false, "render saved outputs without running notebooks")
	fs.StringVar(&f.kernel, "kernel", "", "Jupyter kernel name (default: python3)")
	fs.IntVar(&f.timeout, "exec-timeout", 0, "per-cell execution timeout in seconds")
}

// addRenderFlags adds page engine flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.engine, "engine", "", "page engine: native, chrome")
	fs.BoolVar(&f.highlight, "highlight", false, "syntax highlighting (chrome engine and HTML)")
	fs.Float64Var(&f.dpi, "dpi", 0, "image resolution in dots per inch")
	fs.StringVar(&f.assetsDir, "assets", "", "directory with custom template and style")
}

// addOutputFlags adds output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.html, "html", false, "output HTML alongside PDF")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "output HTML only, skip PDF")
}

// parseConvertFlags parses conversion flags and returns positional args.
// Usage goes to w when -h or a parse error occurs.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("nb2pdf", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.version, "version", false, "show version information")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addReportFlags(fs, &f.report)
	addPageFlags(fs, &f.page)
	addExecFlags(fs, &f.exec)
	addRenderFlags(fs, &f.render)
	addOutputFlags(fs, &f.outputMode)

	fs.Usage = func() { printUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
