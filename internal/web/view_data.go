package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/donatewisely/donatewisely/internal"
	"github.com/donatewisely/donatewisely/internal/web/sessions"
	"github.com/gorilla/csrf"
)

// viewData is passed to every view.
type viewData struct {
	Version   string
	CSRFToken string
	CSRFField template.HTML
	User      *sessions.User
	Flashes   []string
	// Partial views render without the layout chrome.
	Partial bool
	Client  ClientConfig
	Success string
	Error   string
	Data    any
}

// page describes a view to render.
type page struct {
	name    string
	status  int
	partial bool
	success string
	error   string
	data    any
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, p page) error {
	vd := viewData{
		Version:   internal.Version(),
		CSRFToken: csrf.Token(r),
		CSRFField: csrf.TemplateField(r),
		Flashes:   s.deps.Sessions.ConsumeFlashes(r.Context()),
		Partial:   p.partial,
		Client:    s.cfg.Client,
		Success:   p.success,
		Error:     p.error,
		Data:      p.data,
	}

	if u, ok := s.deps.Sessions.User(r.Context()); ok {
		vd.User = &u
	}

	var buf bytes.Buffer
	err := s.deps.ViewRenderer.Render(&buf, p.name, vd)
	if err != nil {
		return err
	}

	status := p.status
	if status == 0 {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// viewHandler renders the view with the given name.
func (s *Server) viewHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.writeView(w, r, page{name: name})
		if err != nil {
			s.handleError(w, r, err)
		}
	}
}
