package web

import (
	"context"
	"net/http"
)

// mapper is a generic HTTP handler that maps requests to target
// function calls and writes the output to the response.
type mapper[IN, OUT any] struct {
	s      *Server
	req    func(*http.Request) (IN, error)
	target func(context.Context, IN) (OUT, error)
	res    func(result[IN, OUT]) error
	fail   func(error) error
}

// result is the result of a successful call. It contains everything a
// response func could need.
type result[IN, OUT any] struct {
	s   *Server
	r   *http.Request
	w   http.ResponseWriter
	in  IN
	out OUT
}

// mapBoth creates a HTTP Handler that:
// 1. Decodes the request body into a value of type IN.
// 2. Calls the target func with that value.
// 3. Writes OUT as data of a successful JSON envelope.
func mapBoth[IN, OUT any](s *Server, targetFunc func(context.Context, IN) (OUT, error)) *mapper[IN, OUT] {
	return &mapper[IN, OUT]{
		s: s,
		req: func(r *http.Request) (IN, error) {
			return decodeForm[IN](s, r)
		},
		target: targetFunc,
		res: func(r result[IN, OUT]) error {
			return writeJSON(r.w, http.StatusOK, envelope{Success: true, Data: r.out})
		},
	}
}

// mapRequest is mapBoth for target funcs that only return an error.
func mapRequest[IN any](s *Server, targetFunc func(context.Context, IN) error) *mapper[IN, struct{}] {
	return &mapper[IN, struct{}]{
		s: s,
		req: func(r *http.Request) (IN, error) {
			return decodeForm[IN](s, r)
		},
		target: func(ctx context.Context, in IN) (struct{}, error) {
			return struct{}{}, targetFunc(ctx, in)
		},
		res: func(r result[IN, struct{}]) error {
			return writeJSON(r.w, http.StatusOK, envelope{Success: true})
		},
	}
}

// mapResponse is mapBoth for target funcs that take no input.
func mapResponse[OUT any](s *Server, targetFunc func(context.Context) (OUT, error)) *mapper[struct{}, OUT] {
	return &mapper[struct{}, OUT]{
		s: s,
		req: func(r *http.Request) (struct{}, error) {
			return struct{}{}, nil
		},
		target: func(ctx context.Context, _ struct{}) (OUT, error) {
			return targetFunc(ctx)
		},
		res: func(r result[struct{}, OUT]) error {
			return writeJSON(r.w, http.StatusOK, envelope{Success: true, Data: r.out})
		},
	}
}

// request overwrites the function that maps the request to the input type.
func (m *mapper[IN, OUT]) request(fn func(r *http.Request) (IN, error)) *mapper[IN, OUT] {
	m.req = fn
	return m
}

// response overwrites the function that writes the output to the response.
func (m *mapper[IN, OUT]) response(fn func(result[IN, OUT]) error) *mapper[IN, OUT] {
	m.res = fn
	return m
}

// onError sets a function that translates errors of the request and target
// funcs, usually into a publicError, before they are handled.
func (m *mapper[IN, OUT]) onError(fn func(error) error) *mapper[IN, OUT] {
	m.fail = fn
	return m
}

func (m *mapper[IN, OUT]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	in, err := m.req(r)
	if err != nil {
		m.handleError(w, r, err)
		return
	}

	out, err := m.target(r.Context(), in)
	if err != nil {
		m.handleError(w, r, err)
		return
	}

	err = m.res(result[IN, OUT]{
		s:   m.s,
		r:   r,
		w:   w,
		in:  in,
		out: out,
	})
	if err != nil {
		m.s.handleError(w, r, err)
	}
}

func (m *mapper[IN, OUT]) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if m.fail != nil {
		err = m.fail(err)
	}

	m.s.handleError(w, r, err)
}
