package profile

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownUser = errors.New("unknown user")
	ErrLoadRoster  = errors.New("load roster failed")
)
