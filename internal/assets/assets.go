package assets

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "default"

// DefaultTemplateName is the name of the built-in report template.
const DefaultTemplateName = "report"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
// Returns ErrStyleNotFound if the style does not exist.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an HTML template by name using the default embedded loader.
// Returns ErrTemplateNotFound if the template does not exist.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
