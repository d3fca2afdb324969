package tokenizer

import "errors"

// ErrUnsupportedProcessMethod is returned for an unknown word-processing method.
var ErrUnsupportedProcessMethod = errors.New("unsupported word process method")
