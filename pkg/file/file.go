package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Storage is durable byte storage addressed by flat keys.
type Storage interface {
	// EnsureDir makes sure the storage root can accept writes.
	EnsureDir(ctx context.Context) error
	// WriteFile stores data under key, replacing any previous content.
	WriteFile(ctx context.Context, key string, data []byte) error
	// Open returns a reader over the content stored under key.
	// A missing key yields ErrFileNotFound.
	Open(ctx context.Context, key string) (*Object, error)
	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// Object is an open stored blob. Callers must close Body.
type Object struct {
	Body io.ReadCloser
	Size int64
}

// sniffLen is how much content DetectContentType inspects.
const sniffLen = 3 * 1024

// DefaultContentType is used when nothing better can be inferred.
const DefaultContentType = "application/octet-stream"

// ContentTypeByName infers a content type from the file name extension.
func ContentTypeByName(name string) string {
	return mime.TypeByExtension(filepath.Ext(name))
}

// DetectContentType picks a content type for name, sniffing head when the
// extension is unknown.
func DetectContentType(name string, head []byte) string {
	if ct := ContentTypeByName(name); ct != "" {
		return ct
	}
	if len(head) == 0 {
		return DefaultContentType
	}
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return mimetype.Detect(head).String()
}

// Peek reads up to the sniff length from obj without consuming it and
// returns the prefix it saw.
func Peek(obj *Object) ([]byte, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(obj.Body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	head = head[:n]
	obj.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), obj.Body), obj.Body}
	return head, nil
}

// RenditionKey is the storage key of a resized rendition of key.
func RenditionKey(key string, width int) string {
	return fmt.Sprintf("%s_%d", key, width)
}
