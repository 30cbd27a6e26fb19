package detect

import "errors"

// Errors returned by the Manager.
var (
	// ErrUnknownBuffer indicates a buffer that was never opened or is closed.
	ErrUnknownBuffer = errors.New("unknown buffer")

	// ErrBufferAlreadyOpen indicates a second Open for the same identity.
	ErrBufferAlreadyOpen = errors.New("buffer already open")

	// ErrManagerClosed indicates use after Shutdown.
	ErrManagerClosed = errors.New("detector shut down")
)
