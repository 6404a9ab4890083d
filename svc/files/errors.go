package files

import "errors"

var (
	ErrMissingName        = errors.New("missing name")
	ErrMissingType        = errors.New("missing type")
	ErrMissingData        = errors.New("missing data")
	ErrParentNotFound     = errors.New("parent not found")
	ErrParentNotAFolder   = errors.New("parent is not a folder")
	ErrNotFound           = errors.New("not found")
	ErrFolderHasNoContent = errors.New("a folder doesn't have content")
	ErrNotAnImage         = errors.New("not an image")
)
