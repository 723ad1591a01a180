package assets_test

import (
	"io/fs"
	"testing"

	"github.com/donatewisely/donatewisely/assets"
	emailview "github.com/donatewisely/donatewisely/internal/email/view"
	"github.com/donatewisely/donatewisely/internal/web/view"
)

func Test_TemplatesParse(t *testing.T) {
	_, err := view.NewMemRenderer(assets.TemplateFS)
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}
}

func Test_EmailsParse(t *testing.T) {
	_, err := emailview.NewMemRenderer(assets.EmailFS)
	if err != nil {
		t.Fatalf("failed to parse email templates: %v", err)
	}
}

func Test_DistFS(t *testing.T) {
	for _, name := range []string{".keep", "css/main.css", "js/app.js"} {
		_, err := fs.Stat(assets.DistFS, name)
		if err != nil {
			t.Errorf("expected %s in dist: %v", name, err)
		}
	}
}
