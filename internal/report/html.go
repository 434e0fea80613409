package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Sentinel errors for HTML serialization.
var (
	ErrHTMLTemplate = errors.New("invalid report template")
	ErrHTMLRender   = errors.New("HTML rendering failed")
)

// highlightStyle is the chroma style used for code cells.
const highlightStyle = "github"

// PageBox describes the printed page for the @page rule, in millimeters.
type PageBox struct {
	Width  float64
	Height float64
	Margin float64
}

// HTMLOptions configures HTML serialization.
type HTMLOptions struct {
	Page      PageBox
	Highlight bool // color code cells with chroma
}

// HTMLWriter serializes documents with a report template and stylesheet.
type HTMLWriter struct {
	tmpl *template.Template
	css  string
}

// NewHTMLWriter parses the report template once for reuse.
func NewHTMLWriter(tmplContent, css string) (*HTMLWriter, error) {
	tmpl, err := template.New("report").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLTemplate, err)
	}
	return &HTMLWriter{tmpl: tmpl, css: css}, nil
}

// htmlPage is the template input.
type htmlPage struct {
	Title   string
	CSS     template.CSS
	PageCSS template.CSS
	Header  Header
	Blocks  []htmlBlock
}

// htmlBlock is one document block prepared for the template.
type htmlBlock struct {
	Kind       string
	Style      template.CSS
	LabelStyle template.CSS
	Text       string
	Label      string
	Code       template.HTML // highlighted code, replaces Text when set
	ImageSrc   template.URL
	ImageStyle template.CSS
}

// Write serializes doc as a standalone HTML5 document.
func (hw *HTMLWriter) Write(ctx context.Context, w io.Writer, doc *Document, opts HTMLOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	page := htmlPage{
		Title:   doc.Header.Title,
		CSS:     template.CSS(sanitizeCSS(hw.css)),
		PageCSS: template.CSS(pageRule(opts.Page)),
		Header:  doc.Header,
		Blocks:  make([]htmlBlock, 0, len(doc.Blocks)),
	}

	for _, b := range doc.Blocks {
		if b.Kind == KindHeader {
			continue
		}
		hb, err := toHTMLBlock(b, doc.Language, opts)
		if err != nil {
			return err
		}
		page.Blocks = append(page.Blocks, hb)
	}

	var buf bytes.Buffer
	if err := hw.tmpl.Execute(&buf, page); err != nil {
		return fmt.Errorf("%w: %v", ErrHTMLRender, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// HTML serializes doc and returns the markup as a string.
func (hw *HTMLWriter) HTML(ctx context.Context, doc *Document, opts HTMLOptions) (string, error) {
	var sb strings.Builder
	if err := hw.Write(ctx, &sb, doc, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func toHTMLBlock(b Block, language string, opts HTMLOptions) (htmlBlock, error) {
	hb := htmlBlock{
		Kind:  b.Kind.String(),
		Style: template.CSS(blockCSS(b.Style)),
		Text:  b.Text,
		Label: b.Label,
	}
	if b.Label != "" {
		hb.LabelStyle = template.CSS(fontCSS(b.Style.LabelFont))
	}

	switch b.Kind {
	case KindCode:
		if opts.Highlight {
			code, err := highlight(language, b.Text)
			if err != nil {
				return htmlBlock{}, err
			}
			hb.Code = code
		}
	case KindImage:
		img := b.Image
		hb.ImageSrc = template.URL("data:image/" + img.Format + ";base64," + base64.StdEncoding.EncodeToString(img.Data))
		hb.ImageStyle = template.CSS(fmt.Sprintf("width:%.2fmm;height:%.2fmm", img.Width, img.Height))
	}
	return hb, nil
}

// highlight colors source with chroma using inline styles.
// Unknown languages fall back to plain text.
func highlight(language, source string) (template.HTML, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("%w: tokenising code: %v", ErrHTMLRender, err)
	}

	formatter := chromahtml.New(
		chromahtml.WithClasses(false),
		chromahtml.PreventSurroundingPre(true),
	)

	var buf bytes.Buffer
	if err := formatter.Format(&buf, styles.Get(highlightStyle), it); err != nil {
		return "", fmt.Errorf("%w: formatting code: %v", ErrHTMLRender, err)
	}
	return template.HTML(buf.String()), nil // #nosec G203 -- chroma escapes token text
}

// pageRule builds the @page rule for printing.
func pageRule(p PageBox) string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("@page { size: %.2fmm %.2fmm; margin: %.2fmm; }", p.Width, p.Height, p.Margin)
}

// blockCSS translates a block style into inline CSS.
func blockCSS(s Style) string {
	parts := []string{
		fontCSS(s.Font),
		"color:" + rgb(s.TextColor),
		fmt.Sprintf("margin-bottom:%.2fmm", s.SpaceAfter),
	}
	if s.LineHeight > 0 {
		parts = append(parts, fmt.Sprintf("line-height:%.2fmm", s.LineHeight))
	}
	if s.Fill != nil {
		parts = append(parts, "background:"+rgb(*s.Fill))
	}
	return strings.Join(parts, ";")
}

func fontCSS(f Font) string {
	if f.Size == 0 {
		return ""
	}
	family := "Helvetica, Arial, sans-serif"
	if f.Family == FamilyMono {
		family = "Courier, 'Courier New', monospace"
	}
	weight, style := "normal", "normal"
	if strings.Contains(f.Style, StyleBold) {
		weight = "bold"
	}
	if strings.Contains(f.Style, StyleItalic) {
		style = "italic"
	}
	return fmt.Sprintf("font-family:%s;font-size:%gpt;font-weight:%s;font-style:%s", family, f.Size, weight, style)
}

func rgb(c Color) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
