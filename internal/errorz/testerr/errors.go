package testerr

import "errors"

// Err is the error returned by failing test dependencies.
var Err = errors.New("test error")
