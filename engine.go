package nb2pdf

import (
	"context"
	"time"

	"github.com/alnah/go-nb2pdf/internal/report"
)

// pdfEngine turns a rendered document into PDF bytes.
type pdfEngine interface {
	Render(ctx context.Context, doc *report.Document, opts *renderOptions) (pdf []byte, pages int, err error)
	Close() error
}

// renderOptions holds per-document engine settings.
type renderOptions struct {
	Page    *PageSettings // never nil
	Created time.Time     // document timestamp, recorded in PDF metadata
}

// Compile-time interface checks.
var (
	_ pdfEngine = (*nativeEngine)(nil)
	_ pdfEngine = (*chromeEngine)(nil)
)
