package signalfeed

import "errors"

// Sentinel kinds for signal-feed errors.
var (
	ErrMissingInput  = errors.New("missing input file")
	ErrMalformedFeed = errors.New("malformed signal feed")
)
