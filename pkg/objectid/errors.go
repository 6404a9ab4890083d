package objectid

import "errors"

// ErrInvalidID is returned when a value cannot be interpreted as an ID.
var ErrInvalidID = errors.New("invalid object id")
