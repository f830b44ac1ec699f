package diseasesh

import "errors"

// Sentinel error kinds for upstream calls.
var (
	ErrUpstream          = errors.New("upstream request failed")
	ErrNotFound          = errors.New("country not found")
	ErrDecode            = errors.New("decode upstream response")
	ErrMalformedResponse = errors.New("malformed upstream response")
)
