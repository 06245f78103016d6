package quote

import "errors"

// Failure classes for a single symbol's retrieval. Every error leaving
// the feed clients or decoders wraps one of these so callers can switch
// on errors.Is without string matching. A closed market is a verdict,
// not an error.
var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrNoData            = errors.New("no data")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNetwork           = errors.New("network error")
)
