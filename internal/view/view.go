package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
)

// Template names served by the router.
const (
	Index       = "index"
	Interactive = "interactive"
	NotFound    = "404"
	Internal    = "500"
)

// ErrNotFound is wrapped by RenderError when no template has the name.
var ErrNotFound = errors.New("template not found")

// RenderError reports a template that is missing or failed to execute.
type RenderError struct {
	Name string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.Name, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer turns a view name into markup.
type Renderer interface {
	Render(name string, data any) ([]byte, error)
}

// ErrorPage is the data handed to the status code views.
type ErrorPage struct {
	Status int
	Text   string
}

// NewErrorPage describes an HTTP status for the error views.
func NewErrorPage(status int) ErrorPage {
	return ErrorPage{Status: status, Text: http.StatusText(status)}
}

// StatusView maps a status code to its view name.
func StatusView(status int) string {
	return strconv.Itoa(status)
}

// Templates renders "<name>.html" templates parsed once from a filesystem.
// The parsed set is read-only, so Render is safe for concurrent use.
type Templates struct {
	set *template.Template
}

// New parses every template in fsys matching pattern. References to
// missing map keys fail at render time instead of printing "<no value>".
func New(fsys fs.FS, pattern string) (*Templates, error) {
	set, err := template.New("").Option("missingkey=error").ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("error parsing templates %s: %w", pattern, err)
	}
	return &Templates{set: set}, nil
}

// Render executes the named view into memory so nothing reaches the client
// when execution fails halfway.
func (t *Templates) Render(name string, data any) ([]byte, error) {
	tmpl := t.set.Lookup(name + ".html")
	if tmpl == nil {
		return nil, &RenderError{Name: name, Err: ErrNotFound}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, &RenderError{Name: name, Err: err}
	}
	return buf.Bytes(), nil
}
