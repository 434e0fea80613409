package nb2pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/alnah/go-nb2pdf/internal/report"
)

// Native engine layout constants, in millimeters.
const (
	pageBreakMargin = 15.0
	labelLineHeight = 5.0
)

// Core PDF fonts used for the report font families.
var coreFonts = map[string]string{
	report.FamilySans: "Helvetica",
	report.FamilyMono: "Courier",
}

// nativeEngine typesets documents directly with fpdf.
// It keeps no state between documents.
type nativeEngine struct{}

func newNativeEngine() *nativeEngine {
	return &nativeEngine{}
}

// Render replays doc block by block. Output is byte-identical for the same
// document, page settings and timestamp.
func (e *nativeEngine) Render(ctx context.Context, doc *report.Document, opts *renderOptions) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	w := &nativeWriter{pdf: newFpdf(doc, opts), tr: toCP1252}
	w.pdf.AddPage()

	for i, b := range doc.Blocks {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		w.block(i, b)
		if err := w.pdf.Error(); err != nil {
			return nil, 0, fmt.Errorf("%w: block %d (%s): %v", ErrPDFGeneration, i, b.Kind, err)
		}
	}

	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), w.pdf.PageCount(), nil
}

// Close is a no-op: the native engine holds no resources.
func (e *nativeEngine) Close() error {
	return nil
}

func newFpdf(doc *report.Document, opts *renderOptions) *fpdf.Fpdf {
	page := opts.Page
	size := pageSizesMM[strings.ToLower(page.Size)]
	orientation := "P"
	if strings.EqualFold(page.Orientation, OrientationLandscape) {
		orientation = "L"
	}

	// fpdf expects portrait dimensions and swaps them for "L"
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: size[0], Ht: size[1]},
	})

	m := page.marginMM()
	pdf.SetMargins(m, m, m)
	pdf.SetAutoPageBreak(true, pageBreakMargin)

	pdf.SetCreationDate(opts.Created)
	pdf.SetModificationDate(opts.Created)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(doc.Header.Title, true)
	pdf.SetAuthor(doc.Header.Student, true)
	pdf.SetSubject(doc.Header.Assignment, true)
	pdf.SetCreator("nb2pdf", false)
	return pdf
}

// nativeWriter draws blocks on one fpdf document.
type nativeWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *nativeWriter) block(i int, b report.Block) {
	switch b.Kind {
	case report.KindHeader:
		w.header(b)
	case report.KindImage:
		w.image(i, b)
	case report.KindError:
		w.alert(b)
	default:
		w.text(b)
	}
}

func (w *nativeWriter) header(b report.Block) {
	h := b.Header
	w.setFont(report.Font{Family: report.FamilySans, Style: report.StyleBold, Size: report.HeaderTitleSize})
	w.setTextColor(b.Style.TextColor)
	w.pdf.CellFormat(0, report.HeaderLineHeight, w.tr(h.Title), "", 1, "C", false, 0, "")

	w.setFont(b.Style.Font)
	for _, line := range h.Lines() {
		w.pdf.CellFormat(0, report.HeaderLineHeight, w.tr(line), "", 1, "L", false, 0, "")
	}
	w.pdf.Ln(b.Style.SpaceAfter)
}

// text draws markers and content blocks. Markers are single filled lines;
// everything else wraps at the right margin.
func (w *nativeWriter) text(b report.Block) {
	s := b.Style
	w.setTextColor(s.TextColor)

	if b.Label != "" {
		w.setFont(s.LabelFont)
		w.pdf.CellFormat(0, labelLineHeight, w.tr(b.Label), "", 1, "L", false, 0, "")
	}

	w.setFont(s.Font)
	fill := w.setFill(s.Fill)
	if b.Kind == report.KindSectionMarker {
		w.pdf.CellFormat(0, s.LineHeight, w.tr(b.Text), "", 1, "L", fill, 0, "")
	} else {
		w.pdf.MultiCell(0, s.LineHeight, w.tr(b.Text), "", "L", fill)
	}
	w.pdf.Ln(s.SpaceAfter)
}

// alert draws an error block and restores the default text color.
func (w *nativeWriter) alert(b report.Block) {
	defer w.setTextColor(report.DefaultTextColor)
	w.text(b)
}

// image places an image block. fpdf is stricter than the Go decoders
// (interlaced or 16-bit PNGs), so a rejected image is re-encoded once;
// if it still fails an error line replaces it.
func (w *nativeWriter) image(i int, b report.Block) {
	img := b.Image
	name := "img" + strconv.Itoa(i)
	imgType := strings.ToUpper(img.Format)
	if imgType == "JPEG" {
		imgType = "JPG"
	}

	w.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: imgType}, bytes.NewReader(img.Data))
	if err := w.pdf.Error(); err != nil {
		w.pdf.ClearError()
		data, encErr := reencodePNG(img.Data)
		if encErr != nil {
			w.imageError(b, err)
			return
		}
		name += "r"
		w.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
		if err := w.pdf.Error(); err != nil {
			w.pdf.ClearError()
			w.imageError(b, err)
			return
		}
	}

	w.pdf.ImageOptions(name, img.X, 0, img.Width, img.Height, true, fpdf.ImageOptions{}, 0, "")
	w.pdf.Ln(b.Style.SpaceAfter)
}

func (w *nativeWriter) imageError(b report.Block, err error) {
	w.alert(report.Block{
		Kind: report.KindError,
		Cell: b.Cell,
		Text: "Error displaying image: " + err.Error(),
		Style: report.Style{
			Font:       report.Font{Family: report.FamilyMono, Size: 10},
			TextColor:  report.AlertTextColor,
			LineHeight: labelLineHeight,
			SpaceAfter: b.Style.SpaceAfter,
		},
	})
}

func (w *nativeWriter) setFont(f report.Font) {
	family, ok := coreFonts[f.Family]
	if !ok {
		family = coreFonts[report.FamilySans]
	}
	w.pdf.SetFont(family, f.Style, f.Size)
}

func (w *nativeWriter) setTextColor(c report.Color) {
	w.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}

// setFill sets the fill color and reports whether the block is filled.
func (w *nativeWriter) setFill(c *report.Color) bool {
	if c == nil {
		return false
	}
	w.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	return true
}

// toCP1252 encodes s for the core fonts. Runes outside Windows-1252
// become '.'.
func toCP1252(s string) string {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '.'
		}
		buf = append(buf, b)
	}
	return string(buf)
}

// reencodePNG converts any decodable image to an 8-bit, non-interlaced PNG.
func reencodePNG(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
