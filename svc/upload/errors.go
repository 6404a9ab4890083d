package upload

import "errors"

var (
	ErrInvalidData  = errors.New("invalid base64 data")
	ErrStoreFailure = errors.New("failed to store content")
)
