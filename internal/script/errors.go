package script

import "errors"

// ErrStateClosed is returned when using a closed State.
var ErrStateClosed = errors.New("script state is closed")
