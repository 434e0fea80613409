// Package notebook models Jupyter notebooks and parses nbformat documents.
//
// Cells and outputs are closed tagged unions: every cell_type and
// output_type string maps to exactly one variant, with CellUnknown and
// OutputOther as explicit fallthrough arms. Optional fields are resolved to
// their documented defaults once, during parsing, so consumers never deal
// with missing keys.
package notebook

// CellType identifies the kind of a notebook cell.
type CellType int

// Cell variants.
const (
	CellUnknown CellType = iota
	CellCode
	CellMarkdown
	CellRaw
)

// String returns the nbformat name of the cell type.
func (t CellType) String() string {
	switch t {
	case CellCode:
		return "code"
	case CellMarkdown:
		return "markdown"
	case CellRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// cellTypeOf maps a declared cell_type to its variant.
func cellTypeOf(name string) CellType {
	switch name {
	case "code":
		return CellCode
	case "markdown":
		return CellMarkdown
	case "raw":
		return CellRaw
	default:
		return CellUnknown
	}
}

// OutputType identifies the kind of a code cell output.
type OutputType int

// Output variants.
const (
	OutputOther OutputType = iota
	OutputStream
	OutputDisplayData
	OutputExecuteResult
	OutputError
)

// String returns the nbformat name of the output type.
func (t OutputType) String() string {
	switch t {
	case OutputStream:
		return "stream"
	case OutputDisplayData:
		return "display_data"
	case OutputExecuteResult:
		return "execute_result"
	case OutputError:
		return "error"
	default:
		return "other"
	}
}

// outputTypeOf maps a declared output_type to its variant.
func outputTypeOf(name string) OutputType {
	switch name {
	case "stream":
		return OutputStream
	case "display_data":
		return OutputDisplayData
	case "execute_result":
		return OutputExecuteResult
	case "error":
		return OutputError
	default:
		return OutputOther
	}
}

// Default field values applied during parsing.
const (
	DefaultCellTypeName = "unknown"
	DefaultStreamName   = "output"
	DefaultErrorName    = "Error"
)

// MIME keys recognized in display_data and execute_result bundles.
const (
	MIMEPlainText = "text/plain"
	MIMEPNG       = "image/png"
)

// Notebook is an ordered sequence of cells.
// Cell numbering is 1-based and equals the position in Cells.
type Notebook struct {
	Format   int            // nbformat major version of the source document
	Language string         // kernel language, "" when unknown
	Metadata map[string]any // top-level notebook metadata
	Cells    []Cell
}

// Cell is one unit of a notebook.
type Cell struct {
	Type     CellType
	TypeName string // declared cell_type, DefaultCellTypeName when absent
	Source   string // fragments joined in order, no separator
	Metadata map[string]any
	Format   string   // raw cell format label, "" when absent
	Outputs  []Output // code cells only
}

// Output is a result attached to a code cell after execution.
type Output struct {
	Type     OutputType
	TypeName string

	// Stream fields.
	Name string // DefaultStreamName when absent
	Text string

	// Display data and execute result fields.
	Data MimeBundle

	// Error fields.
	EName     string // DefaultErrorName when absent
	EValue    string
	Traceback []string
}

// MimeBundle holds the recognized representations of a rich output.
type MimeBundle struct {
	PlainText    string
	HasPlainText bool
	PNG          string // base64 encoded
	HasPNG       bool
}

// Len returns the number of cells.
func (nb *Notebook) Len() int {
	if nb == nil {
		return 0
	}
	return len(nb.Cells)
}
