package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/filevault/pkg/binder"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/requestid"
	"github.com/dmitrymomot/filevault/svc/auth"
	"github.com/dmitrymomot/filevault/svc/files"
	"github.com/dmitrymomot/filevault/svc/upload"
)

// errorMappings translates domain sentinels into responses. First match wins.
var errorMappings = []struct {
	err     error
	status  int
	message string
}{
	{auth.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{auth.ErrMissingEmail, http.StatusBadRequest, "Missing email"},
	{auth.ErrMissingPassword, http.StatusBadRequest, "Missing password"},
	{auth.ErrEmailAlreadyExists, http.StatusBadRequest, "Already exist"},
	{files.ErrMissingName, http.StatusBadRequest, "Missing name"},
	{files.ErrMissingType, http.StatusBadRequest, "Missing type"},
	{files.ErrMissingData, http.StatusBadRequest, "Missing data"},
	{files.ErrParentNotFound, http.StatusBadRequest, "Parent not found"},
	{files.ErrParentNotAFolder, http.StatusBadRequest, "Parent is not a folder"},
	{files.ErrNotFound, http.StatusNotFound, "Not found"},
	{files.ErrFolderHasNoContent, http.StatusBadRequest, "A folder doesn't have content"},
	{files.ErrNotAnImage, http.StatusBadRequest, "Not an image"},
	{upload.ErrInvalidData, http.StatusBadRequest, "Invalid data"},
	{binder.ErrBodyTooLarge, http.StatusRequestEntityTooLarge, "Request too large"},
	{binder.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "Unsupported media type"},
	{binder.ErrMissingContentType, http.StatusBadRequest, "Missing content type"},
	{binder.ErrFailedToParseJSON, http.StatusBadRequest, "Invalid JSON"},
	{binder.ErrFailedToParseQuery, http.StatusBadRequest, "Invalid query"},
	{binder.ErrFailedToParsePath, http.StatusBadRequest, "Invalid path"},
}

// classifyError returns the status and client message for err.
func classifyError(err error) (int, string) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, httpErr.Message
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	return ErrInternalServerError.Code, ErrInternalServerError.Message
}

// NewErrorHandler writes {"error": message} responses. Client errors are
// logged at warn level, server errors at error level with the cause.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx Context, err error) {
		status, message := classifyError(err)
		r := ctx.Request()

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request error",
			slog.String("request_id", requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		if renderErr := JSONError(status, message).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error", logger.Error(renderErr))
		}
	}
}
