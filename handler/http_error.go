package handler

import "net/http"

// HTTPError is an error with a status code and a client facing message.
type HTTPError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

var (
	ErrBadRequest           = HTTPError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrUnauthorized         = HTTPError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrNotFound             = HTTPError{Code: http.StatusNotFound, Message: "Not found"}
	ErrUnsupportedMediaType = HTTPError{Code: http.StatusUnsupportedMediaType, Message: "Unsupported media type"}
	ErrRequestTooLarge      = HTTPError{Code: http.StatusRequestEntityTooLarge, Message: "Request too large"}
	ErrTooManyRequests      = HTTPError{Code: http.StatusTooManyRequests, Message: "Too many requests"}
	ErrInternalServerError  = HTTPError{Code: http.StatusInternalServerError, Message: "Internal server error"}
)
