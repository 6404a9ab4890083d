package thumbnail

import "errors"

var (
	ErrMissingFileID = errors.New("missing fileId")
	ErrMissingUserID = errors.New("missing userId")
	ErrFileNotFound  = errors.New("file not found")
	ErrDecodeImage   = errors.New("failed to decode image")
	ErrEncodeImage   = errors.New("failed to encode image")
	ErrImageTooLarge = errors.New("image too large")
	ErrWriteFailed   = errors.New("failed to write rendition")
)
