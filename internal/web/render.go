package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/harborpoint/customerd/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Each page is parsed together with the shared layout so pages can
// define their own title and content blocks.
var pageFiles = []string{
	"login.html",
	"customers.html",
	"customer_form.html",
}

type renderer struct {
	templates map[string]*template.Template
}

func newRenderer() *renderer {
	templates := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		templates[page] = template.Must(template.ParseFS(templateFS,
			"templates/layout.html", "templates/"+page))
	}
	return &renderer{templates: templates}
}

func (r *renderer) render(w io.Writer, page string, data viewData) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("web: unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// viewData is the template context shared by every page. Pages ignore
// the fields they don't use.
type viewData struct {
	Username string
	Role     string
	IsAdmin  bool
	Flashes  []Flash

	Customers []domain.Customer
	Filter    domain.CustomerFilter
	Customer  domain.Customer
}
