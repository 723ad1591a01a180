package view_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/donatewisely/donatewisely/internal/email/view"
)

const verificationTmpl = `{{ define "subject" }}Confirm your address, {{ .FirstName }}{{ end }}
{{ define "body" }}Open {{ .Link }} to confirm.{{ end }}`

type linkData struct {
	FirstName string
	Link      string
}

func Test_Parse(t *testing.T) {
	okTests := map[string]struct {
		files       fstest.MapFS
		name        string
		data        any
		wantSubject string
		wantBody    string
	}{
		"ok, verification email": {
			files:       fstest.MapFS{"email-verification.tmpl": file(verificationTmpl)},
			name:        "email-verification",
			data:        linkData{FirstName: "Dana", Link: "https://example.com/users/verify/abc"},
			wantSubject: "Confirm your address, Dana",
			wantBody:    "Open https://example.com/users/verify/abc to confirm.",
		},
		"ok, picks the named file": {
			files: fstest.MapFS{
				"email-verification.tmpl": file(verificationTmpl),
				"password-reset.tmpl":     file(`{{ define "subject" }}Reset{{ end }}{{ define "body" }}Reset via {{ .Link }}{{ end }}`),
			},
			name:        "password-reset",
			data:        linkData{Link: "https://example.com/users/password/reset/abc"},
			wantSubject: "Reset",
			wantBody:    "Reset via https://example.com/users/password/reset/abc",
		},
		"ok, no html escaping in plain text": {
			files:       fstest.MapFS{"plain.tmpl": file(`{{ define "subject" }}{{ .FirstName }}{{ end }}{{ define "body" }}{{ .Link }}{{ end }}`)},
			name:        "plain",
			data:        linkData{FirstName: "Tom & Jerry", Link: "https://example.com/?a=1&b=2"},
			wantSubject: "Tom & Jerry",
			wantBody:    "https://example.com/?a=1&b=2",
		},
	}

	for name, tc := range okTests {
		t.Run(name, func(t *testing.T) {
			v, err := view.Parse(tc.files, tc.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			assertRender(t, v.Render, email.ElementSubject, tc.data, tc.wantSubject)
			assertRender(t, v.Render, email.ElementBody, tc.data, tc.wantBody)
		})
	}

	failTests := map[string]struct {
		files fstest.MapFS
		name  string
	}{
		"fail, no templates": {
			files: fstest.MapFS{},
			name:  "email-verification",
		},
		"fail, no template for name": {
			files: fstest.MapFS{"email-verification.tmpl": file(verificationTmpl)},
			name:  "password-reset",
		},
		"fail, empty name": {
			files: fstest.MapFS{"email-verification.tmpl": file(verificationTmpl)},
			name:  "",
		},
		"fail, name traverses directories": {
			files: fstest.MapFS{"secret/email.tmpl": file(verificationTmpl)},
			name:  "../secret/email",
		},
		"fail, missing subject": {
			files: fstest.MapFS{"only-body.tmpl": file(`{{ define "body" }}Message{{ end }}`)},
			name:  "only-body",
		},
		"fail, missing body": {
			files: fstest.MapFS{"only-subject.tmpl": file(`{{ define "subject" }}Hello{{ end }}`)},
			name:  "only-subject",
		},
		"fail, invalid syntax": {
			files: fstest.MapFS{"broken.tmpl": file(`{{ define "subject" }}Hello{{ end }}{{ define "body" }}{{ .Link }{{ end }}`)},
			name:  "broken",
		},
	}

	for name, tc := range failTests {
		t.Run(name, func(t *testing.T) {
			_, err := view.Parse(tc.files, tc.name)
			if err == nil {
				t.Fatal("expected error, got <nil>")
			}
		})
	}

	t.Run("fail, missing key in data", func(t *testing.T) {
		v, err := view.Parse(fstest.MapFS{"email-verification.tmpl": file(verificationTmpl)}, "email-verification")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var buf bytes.Buffer
		err = v.Render(&buf, email.ElementBody, map[string]string{"FirstName": "Dana"})
		if err == nil {
			t.Fatal("expected error, got <nil>")
		}
	})
}

func Test_Renderers(t *testing.T) {
	files := fstest.MapFS{
		"email-verification.tmpl": file(verificationTmpl),
	}

	mem, err := view.NewMemRenderer(files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	renderers := map[string]email.Renderer{
		"mem": mem,
		"fs":  view.NewFSRenderer(files),
	}

	data := linkData{FirstName: "Dana", Link: "https://example.com/users/verify/abc"}

	for name, r := range renderers {
		t.Run("ok, "+name+" renders known template", func(t *testing.T) {
			render := func(w io.Writer, el email.TemplateElement, data any) error {
				return r.Render(w, "email-verification", el, data)
			}

			assertRender(t, render, email.ElementSubject, data, "Confirm your address, Dana")
		})

		t.Run("fail, "+name+" unknown template", func(t *testing.T) {
			var buf bytes.Buffer
			err := r.Render(&buf, "password-reset", email.ElementSubject, data)
			if err == nil {
				t.Fatal("expected error, got <nil>")
			}
		})
	}

	t.Run("fail, mem renderer refuses broken templates", func(t *testing.T) {
		_, err := view.NewMemRenderer(fstest.MapFS{
			"email-verification.tmpl": file(verificationTmpl),
			"broken.tmpl":             file(`{{ define "subject" }}no body{{ end }}`),
		})
		if err == nil {
			t.Fatal("expected error, got <nil>")
		}
	})
}

type renderFunc func(w io.Writer, el email.TemplateElement, data any) error

func assertRender(t *testing.T, render renderFunc, el email.TemplateElement, data any, want string) {
	t.Helper()

	var buf bytes.Buffer
	err := render(&buf, el, data)
	if err != nil {
		t.Fatalf("unexpected error rendering %s: %v", el, err)
	}

	got := strings.TrimSpace(buf.String())
	if got != want {
		t.Errorf("unexpected %s: got %q, want %q", el, got, want)
	}
}

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}
