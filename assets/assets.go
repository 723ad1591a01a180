// Package assets embeds the templates, email templates and static files.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templateFS embed.FS

//go:embed emails/*.tmpl
var emailFS embed.FS

//go:embed dist/*
var distFS embed.FS

var (
	TemplateFS = mustSub(templateFS, "templates")
	EmailFS    = mustSub(emailFS, "emails")
	DistFS     = mustSub(distFS, "dist")
)

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("failed to subtree " + dir + " FS: " + err.Error())
	}
	return sub
}
