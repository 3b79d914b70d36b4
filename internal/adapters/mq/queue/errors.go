package queue

import "errors"

// Sentinel error kinds for this package.
var (
	ErrClosed = errors.New("queue closed")
)
