package wsclient

import "errors"

// Sentinel errors callers can match with errors.Is. They are wrapped
// with context via fmt.Errorf("%w: ...", ...) at the call site.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrOversize        = errors.New("message exceeds maximum size")
	ErrTransportInit   = errors.New("transport init failed")
)
