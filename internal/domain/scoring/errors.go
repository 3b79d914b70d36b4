package scoring

import "errors"

// Sentinel kinds for scoring configuration errors.
var (
	ErrUnknownRole    = errors.New("unknown role in weight profile")
	ErrInvalidProfile = errors.New("invalid weight profile")
	ErrInvalidScale   = errors.New("invalid metric scale")
)
