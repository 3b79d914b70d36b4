package resolve

import "errors"

// Sentinel kinds for override errors.
var (
	ErrInvalidOverride = errors.New("invalid override")
)
