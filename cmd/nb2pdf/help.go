package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nb2pdf [flags] <notebook|directory>")
	fmt.Fprintln(w, "       nb2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Execute Jupyter notebooks and render them as PDF reports.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Notebook file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <dur>       PDF generation timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Report:")
	fmt.Fprintln(w, "      --student <s>         Student name")
	fmt.Fprintln(w, "      --assignment <s>      Assignment name")
	fmt.Fprintln(w, "      --title <s>           Report title")
	fmt.Fprintln(w, "      --date <s>            Date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets (case-insensitive): iso, european, us, long")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Execution:")
	fmt.Fprintln(w, "      --no-exec             Render saved outputs without running notebooks")
	fmt.Fprintln(w, "      --kernel <s>          Jupyter kernel name (default: python3)")
	fmt.Fprintln(w, "      --exec-timeout <n>    Per-cell timeout in seconds (default: 600)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --engine <s>          Page engine: native (default), chrome")
	fmt.Fprintln(w, "      --highlight           Syntax highlighting (chrome engine and HTML)")
	fmt.Fprintln(w, "      --dpi <f>             Image resolution (default: 25.4, 1 px = 1 mm)")
	fmt.Fprintln(w, "      --assets <dir>        Custom template and style directory")
	fmt.Fprintln(w, "      --html                Output HTML alongside PDF")
	fmt.Fprintln(w, "      --html-only           Output HTML only, skip PDF")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed progress")
	fmt.Fprintln(w, "      --version             Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  NB2PDF_CONFIG, NB2PDF_STUDENT, NB2PDF_ASSIGNMENT, NB2PDF_ENGINE,")
	fmt.Fprintln(w, "  NB2PDF_PAGE_SIZE, NB2PDF_TIMEOUT, NB2PDF_WORKERS, NB2PDF_INPUT_DIR,")
	fmt.Fprintln(w, "  NB2PDF_OUTPUT_DIR, NB2PDF_KERNEL, NB2PDF_JUPYTER_BIN")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN, ROD_NO_SANDBOX=1 (chrome engine)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  nb2pdf lab1.ipynb --student \"Ada Lovelace\" --assignment \"Lab 1\"")
	fmt.Fprintln(w, "  nb2pdf ./submissions -o ./reports --no-exec -w 4")
	fmt.Fprintln(w, "  nb2pdf lab1.ipynb --engine chrome --highlight")
}
