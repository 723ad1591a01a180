package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/donatewisely/donatewisely/internal/storage"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
)

const (
	// maxBodySize leaves room for the form fields next to the largest image.
	maxBodySize   = storage.MaxImageSize + 1<<20
	maxFormMemory = 8 << 20
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	// Forms carry fields that are not mapped, like the CSRF and captcha tokens.
	d.IgnoreUnknownKeys(true)

	d.RegisterConverter(time.Time{}, func(v string) reflect.Value {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(t)
	})

	d.RegisterConverter(uuid.UUID{}, func(v string) reflect.Value {
		id, err := uuid.Parse(v)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(id)
	})

	return d
}

// body is a middleware that reads the request body into r.PostForm,
// whether it was sent as a urlencoded form, a multipart form or JSON.
func (s *Server) body(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		}

		err := parseBody(r)
		if err != nil {
			s.handleError(w, r, newPublicError(http.StatusBadRequest, "Invalid request body", err))
			return
		}

		next.ServeHTTP(w, r)

		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	})
}

func parseBody(r *http.Request) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		vals, err := jsonValues(r.Body)
		if err != nil {
			return err
		}

		r.PostForm = vals
		r.Form = make(url.Values, len(vals))
		for k, v := range vals {
			r.Form[k] = v
		}
		for k, v := range r.URL.Query() {
			r.Form[k] = append(r.Form[k], v...)
		}

		return nil
	case "multipart/form-data":
		return r.ParseMultipartForm(maxFormMemory)
	default:
		return r.ParseForm()
	}
}

// jsonValues flattens a JSON object into form values.
func jsonValues(body io.Reader) (url.Values, error) {
	obj := map[string]any{}
	err := json.NewDecoder(body).Decode(&obj)
	if errors.Is(err, io.EOF) {
		return url.Values{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode json body: %w", err)
	}

	vals := make(url.Values, len(obj))
	for key, v := range obj {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				vals.Add(key, jsonString(item))
			}
			continue
		}

		if v != nil {
			vals.Set(key, jsonString(v))
		}
	}

	return vals, nil
}

func jsonString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// decodeForm decodes the body of r into a value of type IN.
func decodeForm[IN any](s *Server, r *http.Request) (IN, error) {
	var in IN
	err := s.decoder.Decode(&in, r.PostForm)
	return in, decodeError(err)
}

func decodeError(err error) error {
	if err == nil {
		return nil
	}

	var multiErr schema.MultiError
	if errors.As(err, &multiErr) {
		var invalidInput errorz.InvalidInput
		for key, e := range multiErr {
			invalidInput = append(invalidInput, errorz.Keyed{
				Key: key,
				Err: e,
			})
		}

		return invalidInput
	}

	return err
}
