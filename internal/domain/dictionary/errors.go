package dictionary

import "errors"

// Sentinel kinds for dictionary errors.
var (
	ErrMalformedDictionary = errors.New("malformed dictionary file")
)
