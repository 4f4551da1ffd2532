package core

import "errors"

// ErrPlayNotFound is returned by storage backends for unknown play ids.
var ErrPlayNotFound = errors.New("play not found")
