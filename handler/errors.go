package handler

import "errors"

var (
	// ErrNilResponse indicates a handler returned nil instead of a Response.
	ErrNilResponse = errors.New("handler returned nil response")
	// ErrNilContent indicates a content response was built without a body.
	ErrNilContent = errors.New("content response without body")
)
