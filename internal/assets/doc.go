// Package assets provides the HTML template and CSS styles used when a
// report is serialized to HTML.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in report)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the converter. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when the asset
// is not found, so a directory may override only the stylesheet.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css      # report stylesheet (default.css)
//	└── templates/
//	    └── {name}.html     # report template (report.html)
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
