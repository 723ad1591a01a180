package view_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/donatewisely/donatewisely/internal/web/view"
)

func Test_View_ParseAndRender(t *testing.T) {
	okTests := map[string]struct {
		files fstest.MapFS
		name  string
		data  any
		want  string
	}{
		"ok, layout and page": {
			files: fstest.MapFS{
				"layout.html":     file(`<html>{{ template "content" . }}</html>`),
				"pages/home.html": file(`{{ define "content" }}<h1>Hello {{ . }}</h1>{{ end }}`),
			},
			name: "home",
			data: "World!",
			want: `<html><h1>Hello World!</h1></html>`,
		},
		"ok, layout, page and partial": {
			files: fstest.MapFS{
				"layout.html":            file(`<html>{{ template "content" . }}</html>`),
				"pages/home.html":        file(`{{ define "content" }}<h1>{{ template "greeting" . }}</h1>{{ end }}`),
				"partials/greeting.html": file(`{{ define "greeting" }}Hello {{ . }}{{ end }}`),
			},
			name: "home",
			data: "World!",
			want: `<html><h1>Hello World!</h1></html>`,
		},
		"ok, other pages are not included": {
			files: fstest.MapFS{
				"layout.html":      file(`<html>{{ template "content" . }}</html>`),
				"pages/home.html":  file(`{{ define "content" }}home{{ end }}`),
				"pages/other.html": file(`{{ define "content" }}other{{ end }}`),
			},
			name: "other",
			want: `<html>other</html>`,
		},
		"ok, date funcs": {
			files: fstest.MapFS{
				"layout.html":     file(`{{ template "content" . }}`),
				"pages/card.html": file(`{{ define "content" }}{{ date . }}|{{ isoDate . }}{{ end }}`),
			},
			name: "card",
			data: time.Date(2020, 3, 9, 0, 0, 0, 0, time.UTC),
			want: `March 9, 2020|2020-03-09`,
		},
		"ok, data is escaped": {
			files: fstest.MapFS{
				"layout.html":     file(`<p>{{ template "content" . }}</p>`),
				"pages/home.html": file(`{{ define "content" }}{{ . }}{{ end }}`),
			},
			name: "home",
			data: "<script>alert('xss')</script>",
			want: `<p>&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;</p>`,
		},
	}

	for name, tc := range okTests {
		t.Run(name, func(t *testing.T) {
			v, err := view.Parse(tc.files, tc.name)
			if err != nil {
				t.Fatalf("unexpected error parsing view: %v", err)
			}

			buf := &bytes.Buffer{}
			err = v.Render(buf, tc.data)
			if err != nil {
				t.Fatalf("unexpected error rendering view: %v", err)
			}

			if got := buf.String(); got != tc.want {
				t.Errorf("got\n%s\nwant\n%s", got, tc.want)
			}
		})
	}

	failTests := map[string]struct {
		files fstest.MapFS
		name  string
	}{
		"fail, no files": {
			files: fstest.MapFS{},
			name:  "home",
		},
		"fail, no layout": {
			files: fstest.MapFS{
				"pages/home.html": file(`{{ define "content" }}home{{ end }}`),
			},
			name: "home",
		},
		"fail, no page": {
			files: fstest.MapFS{
				"layout.html":      file(`<html>{{ template "content" . }}</html>`),
				"pages/other.html": file(`{{ define "content" }}other{{ end }}`),
			},
			name: "home",
		},
		"fail, empty name": {
			files: fstest.MapFS{
				"layout.html": file(`<html></html>`),
			},
			name: "",
		},
		"fail, name escapes pages dir": {
			files: fstest.MapFS{
				"layout.html": file(`<html>{{ template "content" . }}</html>`),
				"secret.html": file(`{{ define "content" }}secret{{ end }}`),
			},
			name: "../secret",
		},
	}

	for name, tc := range failTests {
		t.Run(name, func(t *testing.T) {
			_, err := view.Parse(tc.files, tc.name)
			if err == nil {
				t.Fatalf("expected error, got <nil>")
			}
		})
	}
}

func Test_Renderers(t *testing.T) {
	files := fstest.MapFS{
		"layout.html":            file(`<main>{{ template "content" . }}</main>`),
		"pages/home.html":        file(`{{ define "content" }}{{ template "hi" . }}{{ end }}`),
		"pages/broken.html":      file(`{{ define "content" }}{{ .Missing.Field }}{{ end }}`),
		"partials/greeting.html": file(`{{ define "hi" }}hi {{ . }}{{ end }}`),
	}

	mem, err := view.NewMemRenderer(files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	renderers := map[string]interface {
		Render(w io.Writer, name string, data any) error
	}{
		"mem": mem,
		"fs":  view.NewFSRenderer(files),
	}

	for name, r := range renderers {
		t.Run("ok, "+name+" renders page", func(t *testing.T) {
			buf := &bytes.Buffer{}
			err := r.Render(buf, "home", "there")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := `<main>hi there</main>`
			if got := buf.String(); got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})

		t.Run("fail, "+name+" unknown page", func(t *testing.T) {
			err := r.Render(&bytes.Buffer{}, "unknown", nil)
			if err == nil {
				t.Fatalf("expected error, got <nil>")
			}
		})

		t.Run("fail, "+name+" writes nothing when rendering fails", func(t *testing.T) {
			buf := &bytes.Buffer{}
			err := r.Render(buf, "broken", "a string has no fields")
			if err == nil {
				t.Fatalf("expected error, got <nil>")
			}

			if strings.Contains(buf.String(), "<main>") {
				t.Errorf("expected empty output, got %q", buf.String())
			}
		})
	}
}

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}
