package obslog

import "errors"

// Sentinel kinds for observation-log errors.
var (
	ErrMalformedLog = errors.New("malformed observation log")
)
