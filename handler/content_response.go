package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/filevault/svc/files"
)

type contentResponse struct {
	content *files.Content
}

// Content streams a node body and closes it.
func Content(c *files.Content) Response {
	return contentResponse{content: c}
}

func (c contentResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if c.content == nil || c.content.Body == nil {
		return ErrNilContent
	}
	defer c.content.Body.Close()

	h := w.Header()
	h.Set("Content-Type", c.content.ContentType)
	if c.content.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(c.content.Size, 10))
	}
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return nil
	}
	// The status line is already out; a copy failure can only abort the body.
	_, _ = io.Copy(w, c.content.Body)
	return nil
}
