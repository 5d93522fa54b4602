package errors

import "errors"

// Remote store errors.
var (
	ErrPermissionDenied = errors.New("remote permission denied")
	ErrMalformedRecord  = errors.New("malformed remote record")
)
