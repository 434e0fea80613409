package report

// Color is an RGB color with 8-bit channels.
type Color struct {
	R, G, B uint8
}

// Font families understood by every page engine.
const (
	FamilySans = "sans"
	FamilyMono = "mono"
)

// Font style flags, combinable ("BI").
const (
	StyleRegular = ""
	StyleBold    = "B"
	StyleItalic  = "I"
)

// Font selects a family, style and point size.
type Font struct {
	Family string
	Style  string
	Size   float64
}

// Style is the complete visual description of a block. Every block carries
// its own style, so engines never depend on state left by a previous block.
type Style struct {
	Font       Font
	LabelFont  Font   // raw format label; zero when the block has no label
	Fill       *Color // nil means no background
	TextColor  Color
	LineHeight float64 // mm per line
	SpaceAfter float64 // mm of vertical space after the block
}

// Text colors.
var (
	DefaultTextColor = Color{0, 0, 0}
	AlertTextColor   = Color{255, 0, 0}
)

// Background fills.
var (
	markerFill   = Color{220, 220, 220}
	codeFill     = Color{240, 240, 240}
	markdownFill = Color{245, 245, 250}
	rawFill      = Color{255, 245, 230}
)

// Header layout.
const (
	HeaderTitleSize  = 16
	HeaderLineSize   = 12
	HeaderLineHeight = 10
	HeaderSpaceAfter = 10
)

// Style table. TextColor is filled in by the renderer at emission time.
var (
	headerStyle = Style{
		Font:       Font{Family: FamilySans, Style: StyleRegular, Size: HeaderLineSize},
		LineHeight: HeaderLineHeight,
		SpaceAfter: HeaderSpaceAfter,
	}
	markerStyle = Style{
		Font:       Font{Family: FamilySans, Style: StyleBold, Size: 12},
		Fill:       &markerFill,
		LineHeight: 10,
		SpaceAfter: 5,
	}
	codeStyle = Style{
		Font:       Font{Family: FamilyMono, Style: StyleRegular, Size: 10},
		Fill:       &codeFill,
		LineHeight: 5,
		SpaceAfter: 5,
	}
	markdownStyle = Style{
		Font:       Font{Family: FamilySans, Style: StyleBold, Size: 12},
		Fill:       &markdownFill,
		LineHeight: 5,
		SpaceAfter: 5,
	}
	rawStyle = Style{
		Font:       Font{Family: FamilySans, Style: StyleBold, Size: 10},
		Fill:       &rawFill,
		LineHeight: 5,
		SpaceAfter: 5,
	}
	rawLabeledStyle = Style{
		Font:       Font{Family: FamilyMono, Style: StyleRegular, Size: 10},
		LabelFont:  Font{Family: FamilySans, Style: StyleItalic, Size: 10},
		Fill:       &rawFill,
		LineHeight: 5,
		SpaceAfter: 5,
	}
	outputStyle = Style{
		Font:       Font{Family: FamilyMono, Style: StyleRegular, Size: 10},
		LineHeight: 5,
		SpaceAfter: 5,
	}
	imageStyle = Style{
		SpaceAfter: 5,
	}
)

// Geometry describes the horizontal page frame images are fitted into.
// Lengths are in millimeters.
type Geometry struct {
	PageWidth   float64
	LeftMargin  float64
	RightMargin float64
	DPI         float64 // pixels per inch used to size images
}

// Default geometry: A4 portrait with 10 mm side margins. At DefaultDPI
// one image pixel is one millimeter.
const (
	DefaultPageWidth = 210.0
	DefaultMargin    = 10.0
	DefaultDPI       = mmPerInch
	mmPerInch        = 25.4
)

// DefaultGeometry returns the A4 portrait frame.
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:   DefaultPageWidth,
		LeftMargin:  DefaultMargin,
		RightMargin: DefaultMargin,
		DPI:         DefaultDPI,
	}
}

// UsableWidth returns the width between the side margins.
func (g Geometry) UsableWidth() float64 {
	return g.PageWidth - g.LeftMargin - g.RightMargin
}

// withDefaults fills zero fields from DefaultGeometry.
func (g Geometry) withDefaults() Geometry {
	def := DefaultGeometry()
	if g.PageWidth <= 0 {
		g.PageWidth = def.PageWidth
		g.LeftMargin = def.LeftMargin
		g.RightMargin = def.RightMargin
	}
	if g.DPI <= 0 {
		g.DPI = def.DPI
	}
	return g
}
