package fusion

import "errors"

// ErrInvalidRRFK is returned when the RRF smoothing constant is not positive.
var ErrInvalidRRFK = errors.New("rrf k must be positive")
