package view

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
)

func newTestTemplates(t *testing.T) *Templates {
	t.Helper()

	fsys := fstest.MapFS{
		"index.html":  {Data: []byte(`<h1>index</h1>`)},
		"broken.html": {Data: []byte(`{{template "missing-partial"}}`)},
		"keyed.html":  {Data: []byte(`{{.title}}`)},
		"404.html":    {Data: []byte(`<h1>{{.Status}} {{.Text}}</h1>`)},
	}
	tmpl, err := New(fsys, "*.html")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return tmpl
}

func TestRenderReturnsMarkup(t *testing.T) {
	t.Parallel()

	body, err := newTestTemplates(t).Render("index", nil)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if string(body) != "<h1>index</h1>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestRenderErrorView(t *testing.T) {
	t.Parallel()

	body, err := newTestTemplates(t).Render(StatusView(http.StatusNotFound), NewErrorPage(http.StatusNotFound))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if string(body) != "<h1>404 Not Found</h1>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestRenderFailures(t *testing.T) {
	t.Parallel()

	tmpl := newTestTemplates(t)
	cases := []struct {
		name     string
		view     string
		data     any
		notFound bool
	}{
		{name: "missing template", view: "interactive", notFound: true},
		{name: "unresolved partial", view: "broken"},
		{name: "missing key", view: "keyed", data: map[string]string{}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			body, err := tmpl.Render(tc.view, tc.data)
			if err == nil {
				t.Fatalf("expected error, got body %q", body)
			}
			var renderErr *RenderError
			if !errors.As(err, &renderErr) {
				t.Fatalf("expected *RenderError, got %T", err)
			}
			if renderErr.Name != tc.view {
				t.Fatalf("expected view name %q, got %q", tc.view, renderErr.Name)
			}
			if errors.Is(err, ErrNotFound) != tc.notFound {
				t.Fatalf("unexpected ErrNotFound match for %v", err)
			}
		})
	}
}

func TestNewRejectsUnparsableTemplates(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"bad.html": {Data: []byte(`{{ if }}`)}}
	if _, err := New(fsys, "*.html"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRenderErrorMessageNamesView(t *testing.T) {
	t.Parallel()

	err := &RenderError{Name: "index", Err: ErrNotFound}
	if !strings.Contains(err.Error(), "index") {
		t.Fatalf("expected view name in %q", err.Error())
	}
}
