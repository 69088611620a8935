package web

import (
	"embed"
	"io/fs"
)

// TemplatePattern matches the page templates inside Templates().
const TemplatePattern = "*.html"

//go:embed templates/*.html
var templateFiles embed.FS

// staticFiles bundles the scripts and styles referenced by the pages.
//
//go:embed static
var staticFiles embed.FS

// Templates returns a filesystem rooted at the bundled page templates.
func Templates() (fs.FS, error) {
	return fs.Sub(templateFiles, "templates")
}

// Static returns a filesystem rooted at the bundled static assets.
func Static() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}
