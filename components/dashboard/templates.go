package dashboard

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	template "github.com/goliatone/go-template"
)

// Renderer executes a named page template with the layout payload.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

//go:embed templates/*.html
var pageTemplates embed.FS

// NewTemplateRenderer loads the dashboard page and its partials from the
// binary. Only the embedded FS is consulted, so the working directory does
// not matter.
func NewTemplateRenderer() (Renderer, error) {
	pages, err := fs.Sub(pageTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("dashboard: embedded templates: %w", err)
	}
	return template.NewRenderer(
		template.WithFS(pages),
		template.WithExtension(".html"),
	)
}
