package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/donatewisely/donatewisely/internal/web/sessions"
)

// envelope is the body of every JSON response. Error is a string or a
// validate.FieldError, null on success.
type envelope struct {
	Success bool           `json:"success"`
	Error   any            `json:"error"`
	Data    any            `json:"data,omitempty"`
	User    *sessions.User `json:"user,omitempty"`
	URL     string         `json:"url,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(env)
}

// publicError is an error with a status and a message that is safe to show
// to the client.
type publicError struct {
	status int
	msg    any
	err    error
}

func newPublicError(status int, msg any, err error) error {
	return publicError{
		status: status,
		msg:    msg,
		err:    err,
	}
}

func (e publicError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%d: %v", e.status, e.msg)
	}
	return fmt.Sprintf("%d: %v: %v", e.status, e.msg, e.err)
}

func (e publicError) Unwrap() error {
	return e.err
}

// pageError renders a page instead of an envelope.
type pageError struct {
	page page
	err  error
}

func (e pageError) Error() string {
	return fmt.Sprintf("page %s: %v", e.page.name, e.err)
}

func (e pageError) Unwrap() error {
	return e.err
}
