// Package validate checks request input against per-endpoint schemas and
// reports the first failing rule.
package validate

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultMessage is reported when a failing check has no message of its own.
const DefaultMessage = "Invalid value"

// Location is the part of the request a parameter is read from.
type Location string

const (
	LocationBody   Location = "body"
	LocationParams Location = "params"
	LocationQuery  Location = "query"
)

// FieldError describes the first rule that failed.
type FieldError struct {
	Value    string   `json:"value"`
	Msg      string   `json:"msg"`
	Param    string   `json:"param"`
	Location Location `json:"location"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Location, e.Param, e.Msg)
}

// Input holds the parts of a request rules can read from.
type Input struct {
	Body   url.Values
	Params map[string]string
	Query  url.Values
}

func (in Input) lookup(loc Location, param string) string {
	switch loc {
	case LocationBody:
		return in.Body.Get(param)
	case LocationParams:
		return in.Params[param]
	case LocationQuery:
		return in.Query.Get(param)
	default:
		return ""
	}
}

// fields runs the checks that map onto a validator tag.
var fields = validator.New()

type check struct {
	msg string
	ok  func(v string) bool
}

func tagCheck(tag string) check {
	return check{ok: func(v string) bool {
		return fields.Var(v, tag) == nil
	}}
}

// Rule is a list of checks on a single parameter. Rules are values, every
// method returns a new Rule and leaves the receiver untouched.
type Rule struct {
	param    string
	location Location
	optional bool
	secret   bool
	checks   []check
}

// Body creates a rule for a field in the request body.
func Body(param string) Rule {
	return Rule{param: param, location: LocationBody}
}

// Param creates a rule for a path parameter.
func Param(param string) Rule {
	return Rule{param: param, location: LocationParams}
}

// Query creates a rule for a query string parameter.
func Query(param string) Rule {
	return Rule{param: param, location: LocationQuery}
}

func (r Rule) with(c check) Rule {
	r.checks = append(slices.Clone(r.checks), c)
	return r
}

// WithMessage replaces the message of the most recently added check.
func (r Rule) WithMessage(msg string) Rule {
	if len(r.checks) == 0 {
		return r
	}

	r.checks = slices.Clone(r.checks)
	r.checks[len(r.checks)-1].msg = msg
	return r
}

// Optional skips all checks when the parameter is empty.
func (r Rule) Optional() Rule {
	r.optional = true
	return r
}

// Secret leaves the value out of the FieldError.
func (r Rule) Secret() Rule {
	r.secret = true
	return r
}

func (r Rule) NotEmpty() Rule {
	return r.with(check{ok: func(v string) bool {
		return fields.Var(strings.TrimSpace(v), "required") == nil
	}})
}

func (r Rule) Email() Rule {
	return r.with(tagCheck("required,email,max=254"))
}

// MinLen requires at least n characters.
func (r Rule) MinLen(n int) Rule {
	return r.with(tagCheck("min=" + strconv.Itoa(n)))
}

// MaxLen allows at most n characters.
func (r Rule) MaxLen(n int) Rule {
	return r.with(tagCheck("max=" + strconv.Itoa(n)))
}

// OneOf requires one of the allowed values, which can't contain spaces.
func (r Rule) OneOf(allowed ...string) Rule {
	return r.with(tagCheck("oneof=" + strings.Join(allowed, " ")))
}

// URL requires an absolute http or https URL.
func (r Rule) URL() Rule {
	return r.with(tagCheck("required,http_url"))
}

// Date requires a calendar date formatted as YYYY-MM-DD.
func (r Rule) Date() Rule {
	return r.with(tagCheck("datetime=" + time.DateOnly))
}

// Decimal requires a non-negative decimal number.
func (r Rule) Decimal() Rule {
	return r.with(tagCheck("numeric,excludes=-"))
}

func (r Rule) validate(in Input) *FieldError {
	v := in.lookup(r.location, r.param)
	if r.optional && v == "" {
		return nil
	}

	for _, c := range r.checks {
		if c.ok(v) {
			continue
		}

		msg := c.msg
		if msg == "" {
			msg = DefaultMessage
		}

		if r.secret {
			v = ""
		}

		return &FieldError{
			Value:    v,
			Msg:      msg,
			Param:    r.param,
			Location: r.location,
		}
	}

	return nil
}

// Schema is the list of rules for an endpoint, evaluated in order.
type Schema []Rule

// ParamNames returns the names of the path parameters the schema reads.
func (s Schema) ParamNames() []string {
	var names []string
	for _, r := range s {
		if r.location == LocationParams && !slices.Contains(names, r.param) {
			names = append(names, r.param)
		}
	}

	return names
}

// Validate returns a FieldError for the first failing check, or nil.
func (s Schema) Validate(in Input) error {
	for _, r := range s {
		if fErr := r.validate(in); fErr != nil {
			return *fErr
		}
	}

	return nil
}
