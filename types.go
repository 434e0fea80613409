package nb2pdf

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alnah/go-nb2pdf/internal/report"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 10 / mmPerInch // 10 mm
)

const mmPerInch = 25.4

// pageSizesMM maps page sizes to portrait width and height in millimeters.
var pageSizesMM = map[string][2]float64{
	PageSizeLetter: {215.9, 279.4},
	PageSizeA4:     {210, 297},
	PageSizeLegal:  {215.9, 355.6},
}

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns A4 portrait with 10 mm margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if _, ok := pageSizesMM[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// orDefault returns p, or the default settings when p is nil.
func (p *PageSettings) orDefault() *PageSettings {
	if p == nil {
		return DefaultPageSettings()
	}
	return p
}

// dimensionsMM returns the oriented page width and height in millimeters.
// Settings must be valid.
func (p *PageSettings) dimensionsMM() (w, h float64) {
	size := pageSizesMM[strings.ToLower(p.Size)]
	w, h = size[0], size[1]
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		w, h = h, w
	}
	return w, h
}

// marginMM returns the page margin in millimeters.
func (p *PageSettings) marginMM() float64 {
	return p.Margin * mmPerInch
}

// geometry returns the frame the renderer fits images into.
func (p *PageSettings) geometry(dpi float64) report.Geometry {
	w, _ := p.dimensionsMM()
	m := p.marginMM()
	return report.Geometry{PageWidth: w, LeftMargin: m, RightMargin: m, DPI: dpi}
}

// pageBox returns the @page box used for HTML output.
func (p *PageSettings) pageBox() report.PageBox {
	w, h := p.dimensionsMM()
	return report.PageBox{Width: w, Height: h, Margin: p.marginMM()}
}

// Input contains conversion parameters.
// Exactly one of Path or Reader must be set; Path wins when both are.
type Input struct {
	Path           string        // notebook file
	Reader         io.Reader     // already-open notebook stream
	StudentName    string        // may be empty
	AssignmentName string        // may be empty
	Date           string        // "", "auto", "auto:<format>" or literal text
	Page           *PageSettings // nil = defaults
	SkipExecution  bool          // render saved outputs without running the notebook
	HTML           bool          // also serialize the document as HTML
	HTMLOnly       bool          // produce HTML and skip PDF generation
	Now            time.Time     // header timestamp, zero = time.Now()
}

// ConvertResult holds the output of a conversion.
type ConvertResult struct {
	PDF      []byte // nil when HTMLOnly
	HTML     []byte // set when HTML was requested or HTMLOnly
	Cells    int    // number of cells rendered
	Pages    int    // number of PDF pages, 0 when unknown
	Executed bool   // outputs come from a successful execution
	ExecErr  error  // execution failure that was recovered, nil otherwise
	WorkDir  string // working directory the notebook ran in
}

// Engine names.
const (
	EngineNative = "native"
	EngineChrome = "chrome"
)

// isValidEngine checks if name is a known engine (case-insensitive).
func isValidEngine(name string) bool {
	switch strings.ToLower(name) {
	case EngineNative, EngineChrome:
		return true
	}
	return false
}
