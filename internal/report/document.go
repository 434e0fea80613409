package report

// BlockKind identifies the role of a block in the document.
type BlockKind int

// Block kinds, in the order they are introduced by the renderer.
const (
	KindHeader BlockKind = iota
	KindSectionMarker
	KindCode
	KindMarkdown
	KindRaw
	KindOutput
	KindImage
	KindError
)

// String returns a short name for the block kind.
func (k BlockKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindSectionMarker:
		return "section-marker"
	case KindCode:
		return "code"
	case KindMarkdown:
		return "markdown"
	case KindRaw:
		return "raw"
	case KindOutput:
		return "output"
	case KindImage:
		return "image"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Header carries the report header lines.
type Header struct {
	Title      string
	Student    string
	Assignment string
	Date       string // already formatted
}

// Lines returns the labeled lines printed under the title.
func (h Header) Lines() []string {
	return []string{
		"Student: " + h.Student,
		"Assignment: " + h.Assignment,
		"Date: " + h.Date,
	}
}

// Image is a decoded image placed on the page.
// X, Width and Height are in millimeters.
type Image struct {
	Data        []byte // original encoded bytes
	Format      string // "png" or "jpeg"
	PixelWidth  int
	PixelHeight int
	X           float64
	Width       float64
	Height      float64
}

// Block is one styled visual unit of the document.
type Block struct {
	Kind   BlockKind
	Cell   int    // 1-based cell number, 0 for the header
	Text   string // body text
	Label  string // raw cell format label line, "" when absent
	Style  Style
	Header *Header // KindHeader only
	Image  *Image  // KindImage only
	Err    error   // cause of an image error block
}

// Document is the append-only result of rendering a notebook.
// Blocks[0] is always the header block.
type Document struct {
	Header   Header
	Language string // kernel language, used for optional highlighting
	Blocks   []Block
}

// Count returns the number of blocks of the given kind.
func (d *Document) Count(kind BlockKind) int {
	n := 0
	for _, b := range d.Blocks {
		if b.Kind == kind {
			n++
		}
	}
	return n
}

// Cells returns the number of cells announced by section markers.
func (d *Document) Cells() int {
	return d.Count(KindSectionMarker)
}
