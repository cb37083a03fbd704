package path

import "errors"

// ErrInvalidPath is returned when a path's wire encoding is structurally
// malformed (too many components).
var ErrInvalidPath = errors.New("path: invalid derivation path")
