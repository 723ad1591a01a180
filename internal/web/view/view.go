package view

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"time"
)

const (
	layoutFile   = "layout.html"
	pagesDir     = "pages"
	partialsGlob = "partials/*.html"
)

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"isoDate": func(t time.Time) string {
		return t.Format(time.DateOnly)
	},
}

// View is a page rendered inside the layout. A view combines:
// - layout.html (required)
// - pages/{name}.html (required, defines "content")
// - partials/*.html (optional)
type View struct {
	name     string
	template *template.Template
}

// Parse parses the page with the given name together with the layout
// and all partials.
func Parse(viewFS fs.FS, name string) (*View, error) {
	// Names are hardcoded by handlers, but never let one reach outside pages/.
	if err := validateName(name); err != nil {
		return nil, err
	}

	partials, err := fs.Glob(viewFS, partialsGlob)
	if err != nil {
		return nil, fmt.Errorf("failed to glob for partials: %w", err)
	}

	files := append([]string{layoutFile, pagePath(name)}, partials...)

	t, err := template.New(layoutFile).Funcs(funcs).ParseFS(viewFS, files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse view %q: %w", name, err)
	}

	return &View{
		name:     name,
		template: t,
	}, nil
}

// Render executes the layout with data.
func (v *View) Render(w io.Writer, data any) error {
	return v.template.Execute(w, data)
}

func pagePath(name string) string {
	return path.Join(pagesDir, name+".html")
}

// validateName checks if all characters are alphanumeric, dashes or underscores.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty view name")
	}

	for _, c := range name {
		if !validViewRune(c) {
			return fmt.Errorf("invalid character %q in view name: %s", c, name)
		}
	}
	return nil
}

func validViewRune(r rune) bool {
	return r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
