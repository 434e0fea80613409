package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*.css templates/*.html
var embedded embed.FS

// EmbeddedLoader loads the report assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads styles/{name}.css.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.read("styles/", name, ".css", ErrStyleNotFound)
}

// LoadTemplate loads templates/{name}.html.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.read("templates/", name, ".html", ErrTemplateNotFound)
}

func (e *EmbeddedLoader) read(dir, name, ext string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := embedded.ReadFile(dir + name + ext)
	if err != nil {
		return "", fmt.Errorf("%w: %q", notFound, name)
	}
	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
