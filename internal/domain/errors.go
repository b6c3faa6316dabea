package domain

import "errors"

// ErrFetchFailure marks a page fetch that failed on the network or returned
// an unusable response.
var ErrFetchFailure = errors.New("photo fetch failed")
