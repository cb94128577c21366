package script

import "errors"

var (
	ErrNotCallable = errors.New("script: attribute is not callable")
	ErrBadResult   = errors.New("script: function did not return a number")
	ErrScript      = errors.New("script: lua error")
	ErrClosed      = errors.New("script: runtime closed")
)
