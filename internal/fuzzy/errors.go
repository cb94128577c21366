package fuzzy

import "errors"

var (
	// ErrNotReady indicates a malformed or incomplete inference definition.
	ErrNotReady = errors.New("fuzzy: engine not ready")

	// ErrTooManyInputs indicates a definition with more inputs than a
	// controller can feed (heading error, its difference and speed).
	ErrTooManyInputs = errors.New("fuzzy: more than 3 input variables")
)
