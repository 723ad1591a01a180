package view

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// FSRenderer parses views on every render, so template changes show up
// without a restart.
type FSRenderer struct {
	fsys fs.FS
}

func NewFSRenderer(fsys fs.FS) *FSRenderer {
	return &FSRenderer{fsys: fsys}
}

func (r *FSRenderer) Render(w io.Writer, name string, data any) error {
	v, err := Parse(r.fsys, name)
	if err != nil {
		return err
	}

	return render(w, v, data)
}

// MemRenderer parses every page once.
type MemRenderer struct {
	views map[string]*View
}

// NewMemRenderer parses all pages in the pages directory of viewFS.
func NewMemRenderer(viewFS fs.FS) (*MemRenderer, error) {
	files, err := fs.Glob(viewFS, pagePath("*"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob for pages: %w", err)
	}

	views := make(map[string]*View, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(file, pagesDir+"/"), ".html")
		v, err := Parse(viewFS, name)
		if err != nil {
			return nil, err
		}

		views[name] = v
	}

	return &MemRenderer{views: views}, nil
}

func (r *MemRenderer) Render(w io.Writer, name string, data any) error {
	v, ok := r.views[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}

	return render(w, v, data)
}

// render buffers the output, a failing template never writes half a page.
func render(w io.Writer, v *View, data any) error {
	var buf bytes.Buffer
	err := v.Render(&buf, data)
	if err != nil {
		return fmt.Errorf("failed to render view %q: %w", v.name, err)
	}

	_, err = buf.WriteTo(w)
	return err
}
