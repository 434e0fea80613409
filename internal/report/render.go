// Package report maps notebooks to an ordered, styled block document.
//
// The renderer is the decision layer of the conversion: for every cell it
// emits a section marker followed by the content blocks of that cell, in
// notebook order. Page engines consume the resulting Document and never
// interpret notebook data themselves.
//
// Rendering is sequential and deterministic: the same notebook, header and
// geometry always produce the same Document. The only mutable state is the
// current text color, which is switched to the alert color around error
// blocks and restored immediately after.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/alnah/go-nb2pdf/internal/notebook"
)

// DefaultTitle is the header title used when none is configured.
const DefaultTitle = "Jupyter Notebook Assignment Report"

// imageErrorPrefix starts the text of a block replacing an undecodable image.
const imageErrorPrefix = "Error displaying image: "

// Renderer builds a Document from a notebook.
// A Renderer is not safe for concurrent use.
type Renderer struct {
	geo       Geometry
	doc       *Document
	textColor Color
}

// NewRenderer creates a renderer and emits the header block.
// Zero geometry fields fall back to DefaultGeometry.
func NewRenderer(h Header, geo Geometry) *Renderer {
	if h.Title == "" {
		h.Title = DefaultTitle
	}
	r := &Renderer{
		geo:       geo.withDefaults(),
		doc:       &Document{Header: h},
		textColor: DefaultTextColor,
	}
	header := h
	r.emit(Block{Kind: KindHeader, Header: &header, Style: headerStyle})
	return r
}

// Render renders every cell of nb in order and returns the document.
func Render(nb *notebook.Notebook, h Header, geo Geometry) *Document {
	r := NewRenderer(h, geo)
	r.RenderNotebook(nb)
	return r.Document()
}

// RenderNotebook appends the blocks of every cell of nb.
func (r *Renderer) RenderNotebook(nb *notebook.Notebook) {
	if nb == nil {
		return
	}
	if r.doc.Language == "" {
		r.doc.Language = nb.Language
	}
	for i, cell := range nb.Cells {
		r.RenderCell(i+1, cell)
	}
}

// RenderCell appends the section marker and content blocks of one cell.
// n is the 1-based cell number.
func (r *Renderer) RenderCell(n int, cell notebook.Cell) {
	r.emit(Block{
		Kind:  KindSectionMarker,
		Cell:  n,
		Text:  fmt.Sprintf("Cell %d (%s)", n, cell.TypeName),
		Style: markerStyle,
	})

	switch cell.Type {
	case notebook.CellCode:
		r.emit(Block{Kind: KindCode, Cell: n, Text: cell.Source, Style: codeStyle})
		for _, out := range cell.Outputs {
			r.renderOutput(n, out)
		}
	case notebook.CellMarkdown:
		r.emit(Block{Kind: KindMarkdown, Cell: n, Text: cell.Source, Style: markdownStyle})
	case notebook.CellRaw:
		r.renderRaw(n, cell)
	case notebook.CellUnknown:
		// section marker only
	}
}

func (r *Renderer) renderRaw(n int, cell notebook.Cell) {
	if cell.Format == "" {
		r.emit(Block{Kind: KindRaw, Cell: n, Text: cell.Source, Style: rawStyle})
		return
	}
	r.emit(Block{
		Kind:  KindRaw,
		Cell:  n,
		Text:  cell.Source,
		Label: "Format: " + cell.Format,
		Style: rawLabeledStyle,
	})
}

func (r *Renderer) renderOutput(n int, out notebook.Output) {
	switch out.Type {
	case notebook.OutputStream:
		r.emit(Block{
			Kind:  KindOutput,
			Cell:  n,
			Text:  out.Name + ": " + ansi.Strip(out.Text),
			Style: outputStyle,
		})
	case notebook.OutputDisplayData, notebook.OutputExecuteResult:
		if out.Data.HasPlainText {
			r.emit(Block{Kind: KindOutput, Cell: n, Text: ansi.Strip(out.Data.PlainText), Style: outputStyle})
		}
		if out.Data.HasPNG {
			r.renderImage(n, out.Data.PNG)
		}
	case notebook.OutputError:
		text := out.EName + ": " + out.EValue + "\n" + strings.Join(out.Traceback, "\n")
		r.emitAlert(Block{Kind: KindError, Cell: n, Text: ansi.Strip(text), Style: outputStyle})
	case notebook.OutputOther:
		// unrecognized output types produce no block
	}
}

// renderImage emits an image block, or a single alert line when the
// payload cannot be decoded. Decode failures never escape this call.
func (r *Renderer) renderImage(n int, payload string) {
	img, err := decodeImage(payload, r.geo)
	if err != nil {
		r.emitAlert(Block{
			Kind:  KindError,
			Cell:  n,
			Text:  imageErrorPrefix + err.Error(),
			Style: outputStyle,
			Err:   fmt.Errorf("%w: %w", ErrImageDecode, err),
		})
		return
	}
	r.emit(Block{Kind: KindImage, Cell: n, Image: img, Style: imageStyle})
}

// emitAlert emits b in the alert color and restores the default color.
func (r *Renderer) emitAlert(b Block) {
	r.setTextColor(AlertTextColor)
	defer r.setTextColor(DefaultTextColor)
	r.emit(b)
}

func (r *Renderer) setTextColor(c Color) {
	r.textColor = c
}

// emit appends b, stamping it with the current text color.
func (r *Renderer) emit(b Block) {
	b.Style.TextColor = r.textColor
	r.doc.Blocks = append(r.doc.Blocks, b)
}

// TextColor returns the color the next block will be emitted with.
func (r *Renderer) TextColor() Color {
	return r.textColor
}

// Document returns the document built so far.
func (r *Renderer) Document() *Document {
	return r.doc
}
