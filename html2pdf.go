package nb2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-nb2pdf/internal/fileutil"
	"github.com/alnah/go-nb2pdf/internal/process"
	"github.com/alnah/go-nb2pdf/internal/report"
)

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error)
	Close() error
}

var _ pdfRenderer = (*rodRenderer)(nil)

// Browser environment variables.
const (
	browserBinEnv  = "ROD_BROWSER_BIN"
	noSandboxEnv   = "ROD_NO_SANDBOX"
	ciEnv          = "CI"
	htmlFileSuffix = "html"
)

// rodRenderer implements pdfRenderer using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRenderer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	bin := os.Getenv(browserBinEnv)
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox is required in CI and most containers
	if envEnabled(ciEnv) || envEnabled(noSandboxEnv) || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.browser = browser
	return nil
}

// Close shuts the browser down and reaps its child processes.
func (r *rodRenderer) Close() error {
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil

	if r.launcher != nil {
		process.KillProcessGroup(r.launcher.PID())
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	p, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer p.Close()

	// Context deadline wins over the configured timeout
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := p.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := p.PDF(buildPDFOptions(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// buildPDFOptions converts page settings to Chrome print options (inches).
func buildPDFOptions(page *PageSettings) *proto.PagePrintToPDF {
	w, h := page.dimensionsMM()
	m := page.Margin
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(w / mmPerInch),
		PaperHeight:     floatPtr(h / mmPerInch),
		MarginTop:       floatPtr(m),
		MarginBottom:    floatPtr(m),
		MarginLeft:      floatPtr(m),
		MarginRight:     floatPtr(m),
		PrintBackground: true,
	}
}

// envEnabled reports whether an environment variable holds a true value
// ("1", "true", ...).
func envEnabled(name string) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && v
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// chromeEngine prints the HTML form of a document with headless Chrome.
type chromeEngine struct {
	renderer  pdfRenderer
	writer    *report.HTMLWriter
	highlight bool
}

func newChromeEngine(writer *report.HTMLWriter, timeout time.Duration, highlight bool) *chromeEngine {
	return &chromeEngine{
		renderer:  newRodRenderer(timeout),
		writer:    writer,
		highlight: highlight,
	}
}

// Render serializes doc to a temporary HTML file and prints it.
// Chrome does not report a page count, so pages is always 0.
func (e *chromeEngine) Render(ctx context.Context, doc *report.Document, opts *renderOptions) ([]byte, int, error) {
	htmlContent, err := e.writer.HTML(ctx, doc, report.HTMLOptions{
		Page:      opts.Page.pageBox(),
		Highlight: e.highlight,
	})
	if err != nil {
		return nil, 0, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, htmlFileSuffix)
	if err != nil {
		return nil, 0, err
	}
	defer cleanup()

	pdf, err := e.renderer.RenderFromFile(ctx, tmpPath, opts.Page)
	if err != nil {
		return nil, 0, err
	}
	return pdf, 0, nil
}

// Close releases browser resources.
func (e *chromeEngine) Close() error {
	if e.renderer != nil {
		return e.renderer.Close()
	}
	return nil
}
