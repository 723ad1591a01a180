package view

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/donatewisely/donatewisely/internal/email"
)

// FSRenderer parses the template on every render, handy while editing templates.
type FSRenderer struct {
	fsys fs.FS
}

func NewFSRenderer(fsys fs.FS) *FSRenderer {
	return &FSRenderer{fsys: fsys}
}

func (r *FSRenderer) Render(w io.Writer, name string, element email.TemplateElement, data any) error {
	v, err := Parse(r.fsys, name)
	if err != nil {
		return err
	}

	return v.Render(w, element, data)
}

// MemRenderer parses all templates once.
type MemRenderer struct {
	views map[string]*View
}

// NewMemRenderer parses every *.tmpl file in the root of fsys.
func NewMemRenderer(fsys fs.FS) (*MemRenderer, error) {
	files, err := fs.Glob(fsys, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to glob for email templates: %w", err)
	}

	views := make(map[string]*View, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(file, ".tmpl")
		v, err := Parse(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse email template %q: %w", name, err)
		}

		views[name] = v
	}

	return &MemRenderer{views: views}, nil
}

func (r *MemRenderer) Render(w io.Writer, name string, element email.TemplateElement, data any) error {
	v, ok := r.views[name]
	if !ok {
		return fmt.Errorf("email template %q not found", name)
	}

	return v.Render(w, element, data)
}
