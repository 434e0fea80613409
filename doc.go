// Package nb2pdf converts Jupyter notebooks to paginated PDF reports.
//
// # Quick Start
//
// Create a converter, convert a notebook, and close when done:
//
//	conv, err := nb2pdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, nb2pdf.Input{
//	    Path:           "homework1.ipynb",
//	    StudentName:    "Ada Lovelace",
//	    AssignmentName: "Homework 1",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("homework1.pdf", result.PDF, 0644)
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Loading: the notebook JSON (nbformat v3 or v4) is parsed permissively
//  2. Execution: the notebook is re-run with Jupyter in its own directory;
//     on any failure the saved outputs are used instead
//  3. Rendering: every cell becomes a section marker followed by styled
//     content blocks (code, markdown, raw, outputs, images, errors)
//  4. Typesetting: a page engine turns the blocks into PDF bytes
//
// The report header carries a title, the student and assignment names and
// a timestamp. Set Input.Now to pin the timestamp: the native engine then
// produces byte-identical output for the same notebook.
//
// # Page Engines
//
// Two engines are available:
//
//   - EngineNative (default) typesets with go-pdf/fpdf using core PDF fonts.
//     It needs no external program.
//   - EngineChrome serializes the report to HTML and prints it with headless
//     Chrome (go-rod). It supports syntax highlighting of code cells.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := nb2pdf.NewConverter(
//	    nb2pdf.WithEngine(nb2pdf.EngineChrome),
//	    nb2pdf.WithSyntaxHighlighting(true),
//	    nb2pdf.WithTimeout(2 * time.Minute),
//	    nb2pdf.WithExecutor(&nb2pdf.JupyterExecutor{Kernel: "ir"}),
//	)
//
// Pass WithExecutor(nil), or set Input.SkipExecution, to render the
// notebook exactly as saved.
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to bound the number of converters:
//
//	pool := nb2pdf.NewConverterPool(4)
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
//
// A single notebook is always rendered sequentially.
//
// # Custom Assets
//
// The Chrome engine and HTML output use an embedded template and stylesheet.
// Override them with WithAssetsDir:
//
//	assets/
//	├── styles/
//	│   └── default.css
//	└── templates/
//	    └── report.html
//
// Files missing from the directory fall back to the embedded ones.
//
// # External Programs
//
// Execution runs "jupyter nbconvert"; set NB2PDF_JUPYTER_BIN to use another
// binary. The Chrome engine downloads a managed Chromium on first run
// (~/.cache/rod/browser/) unless ROD_BROWSER_BIN names one. In containers
// and CI, set ROD_NO_SANDBOX=1 to disable the Chrome sandbox.
package nb2pdf
