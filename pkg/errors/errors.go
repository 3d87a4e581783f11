package errors

import "errors"

// Sentinels shared by the storage, dispatcher and API layers.
var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("closed")
)
