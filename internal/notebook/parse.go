package notebook

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Sentinel errors for notebook parsing.
var (
	ErrEmptyInput        = errors.New("notebook input is empty")
	ErrInvalidJSON       = errors.New("notebook is not valid JSON")
	ErrNotObject         = errors.New("notebook must be a JSON object")
	ErrUnsupportedFormat = errors.New("unsupported nbformat version")
)

// Supported nbformat major versions.
const (
	formatV3 = 3
	formatV4 = 4
)

// Parse decodes an nbformat document into a Notebook.
// Version 4 documents (and later majors) are read as is; version 3
// documents are normalized to the version 4 cell and output model.
// Structurally incomplete cells are accepted with defaults applied.
func Parse(data []byte) (*Notebook, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrNotObject
	}

	major := formatV4
	if v := root.Get("nbformat"); v.Exists() {
		major = int(v.Int())
	}

	switch {
	case major >= formatV4:
		return parseV4(root, major), nil
	case major == formatV3:
		return parseV3(root), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, major)
	}
}

func parseV4(root gjson.Result, major int) *Notebook {
	meta := root.Get("metadata")
	nb := &Notebook{
		Format:   major,
		Language: languageOf(meta),
		Metadata: toMap(meta),
	}

	cells := arrayOf(root.Get("cells"))
	nb.Cells = make([]Cell, 0, len(cells))
	for _, c := range cells {
		nb.Cells = append(nb.Cells, parseCellV4(c))
	}
	return nb
}

func parseCellV4(c gjson.Result) Cell {
	name := stringOr(c.Get("cell_type"), DefaultCellTypeName)
	meta := c.Get("metadata")

	cell := Cell{
		Type:     cellTypeOf(name),
		TypeName: name,
		Source:   joinText(c.Get("source")),
		Metadata: toMap(meta),
	}

	switch cell.Type {
	case CellCode:
		outs := arrayOf(c.Get("outputs"))
		cell.Outputs = make([]Output, 0, len(outs))
		for _, o := range outs {
			cell.Outputs = append(cell.Outputs, parseOutputV4(o))
		}
	case CellRaw:
		cell.Format = formatOf(meta)
	case CellMarkdown, CellUnknown:
	}
	return cell
}

func parseOutputV4(o gjson.Result) Output {
	name := o.Get("output_type").String()
	out := Output{Type: outputTypeOf(name), TypeName: name}

	switch out.Type {
	case OutputStream:
		out.Name = stringOr(o.Get("name"), DefaultStreamName)
		out.Text = joinText(o.Get("text"))
	case OutputDisplayData, OutputExecuteResult:
		out.Data = bundleOf(o.Get("data").Map(), MIMEPlainText, MIMEPNG)
	case OutputError:
		out.EName = stringOr(o.Get("ename"), DefaultErrorName)
		out.EValue = o.Get("evalue").String()
		out.Traceback = stringsOf(o.Get("traceback"))
	case OutputOther:
	}
	return out
}

// parseV3 flattens worksheets and maps the version 3 field names onto the
// version 4 model, the same way nbformat's v3 to v4 upgrade does.
func parseV3(root gjson.Result) *Notebook {
	meta := root.Get("metadata")
	nb := &Notebook{
		Format:   formatV3,
		Metadata: toMap(meta),
	}

	for _, ws := range arrayOf(root.Get("worksheets")) {
		for _, c := range arrayOf(ws.Get("cells")) {
			cell := parseCellV3(c)
			if nb.Language == "" && cell.Type == CellCode {
				nb.Language = c.Get("language").String()
			}
			nb.Cells = append(nb.Cells, cell)
		}
	}
	if nb.Cells == nil {
		nb.Cells = []Cell{}
	}
	return nb
}

func parseCellV3(c gjson.Result) Cell {
	name := stringOr(c.Get("cell_type"), DefaultCellTypeName)
	meta := c.Get("metadata")

	switch name {
	case "code":
		outs := arrayOf(c.Get("outputs"))
		cell := Cell{
			Type:     CellCode,
			TypeName: name,
			Source:   joinText(c.Get("input")),
			Metadata: toMap(meta),
			Outputs:  make([]Output, 0, len(outs)),
		}
		for _, o := range outs {
			cell.Outputs = append(cell.Outputs, parseOutputV3(o))
		}
		return cell
	case "heading":
		level := int(c.Get("level").Int())
		if level < 1 {
			level = 1
		}
		return Cell{
			Type:     CellMarkdown,
			TypeName: CellMarkdown.String(),
			Source:   strings.Repeat("#", level) + " " + joinText(c.Get("source")),
			Metadata: toMap(meta),
		}
	default:
		cell := Cell{
			Type:     cellTypeOf(name),
			TypeName: name,
			Source:   joinText(c.Get("source")),
			Metadata: toMap(meta),
		}
		if cell.Type == CellRaw {
			cell.Format = formatOf(meta)
		}
		return cell
	}
}

func parseOutputV3(o gjson.Result) Output {
	name := o.Get("output_type").String()
	switch name {
	case "pyout":
		name = OutputExecuteResult.String()
	case "pyerr":
		name = OutputError.String()
	}

	out := Output{Type: outputTypeOf(name), TypeName: name}
	switch out.Type {
	case OutputStream:
		out.Name = stringOr(o.Get("stream"), DefaultStreamName)
		out.Text = joinText(o.Get("text"))
	case OutputDisplayData, OutputExecuteResult:
		// v3 stores short mime keys on the output record itself
		out.Data = bundleOf(o.Map(), "text", "png")
	case OutputError:
		out.EName = stringOr(o.Get("ename"), DefaultErrorName)
		out.EValue = o.Get("evalue").String()
		out.Traceback = stringsOf(o.Get("traceback"))
	case OutputOther:
	}
	return out
}

// bundleOf extracts the plain text and PNG representations from a mime map.
func bundleOf(data map[string]gjson.Result, textKey, pngKey string) MimeBundle {
	var b MimeBundle
	if v, ok := data[textKey]; ok {
		b.HasPlainText = true
		b.PlainText = joinText(v)
	}
	if v, ok := data[pngKey]; ok {
		b.HasPNG = true
		b.PNG = joinText(v)
	}
	return b
}

// languageOf resolves the kernel language from notebook metadata.
func languageOf(meta gjson.Result) string {
	if name := meta.Get("language_info.name").String(); name != "" {
		return name
	}
	return meta.Get("kernelspec.language").String()
}

// formatOf resolves a raw cell format label: a string is used as is,
// a list of strings is joined with ", ".
func formatOf(meta gjson.Result) string {
	f := meta.Get("format")
	switch {
	case f.IsArray():
		return strings.Join(stringsOf(f), ", ")
	case f.Type == gjson.String:
		return f.String()
	default:
		return ""
	}
}

// joinText concatenates a string or a list of string fragments.
func joinText(r gjson.Result) string {
	if r.IsArray() {
		var b strings.Builder
		for _, frag := range r.Array() {
			b.WriteString(frag.String())
		}
		return b.String()
	}
	if r.Type == gjson.Null {
		return ""
	}
	return r.String()
}

// stringsOf returns the elements of a list as strings; a scalar becomes a
// one-element list and a missing value an empty list.
func stringsOf(r gjson.Result) []string {
	if !r.Exists() || r.Type == gjson.Null {
		return []string{}
	}
	if !r.IsArray() {
		return []string{r.String()}
	}
	items := r.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

// arrayOf returns the elements of r, or nil when r is not a list.
func arrayOf(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

func stringOr(r gjson.Result, def string) string {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.String()
}

func toMap(r gjson.Result) map[string]any {
	if r.IsObject() {
		if m, ok := r.Value().(map[string]any); ok {
			return m
		}
	}
	return map[string]any{}
}
