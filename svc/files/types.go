package files

import (
	"io"

	"github.com/dmitrymomot/filevault/pkg/objectid"
)

// NodeType is the kind of a file node.
type NodeType string

const (
	TypeFolder NodeType = "folder"
	TypeFile   NodeType = "file"
	TypeImage  NodeType = "image"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}
	return false
}

// HasContent reports whether nodes of type t carry stored bytes.
func (t NodeType) HasContent() bool {
	return t == TypeFile || t == TypeImage
}

// PageSize is the fixed window of List.
const PageSize = 20

// RenditionWidths are the widths thumbnails are generated at.
var RenditionWidths = []int{100, 250, 500}

// IsRenditionWidth reports whether w is a generated thumbnail width.
func IsRenditionWidth(w int) bool {
	for _, rw := range RenditionWidths {
		if rw == w {
			return true
		}
	}
	return false
}

// Node is a file, folder or image record. LocalPath is the storage key and
// is never serialized to clients.
type Node struct {
	ID        objectid.ID `json:"id" bson:"_id"`
	UserID    objectid.ID `json:"userId" bson:"userId"`
	Name      string      `json:"name" bson:"name"`
	Type      NodeType    `json:"type" bson:"type"`
	IsPublic  bool        `json:"isPublic" bson:"isPublic"`
	ParentID  objectid.ID `json:"parentId" bson:"parentId"`
	LocalPath string      `json:"-" bson:"localPath,omitempty"`
}

// CreateNodeInput carries the fields of a new node. ParentID is the external
// id form; empty and "0" mean the root. Data is base64 encoded content and
// is required for files and images.
type CreateNodeInput struct {
	Name     string
	Type     NodeType
	ParentID string
	IsPublic bool
	Data     string
}

// Content is an open node body. Callers must close Body.
type Content struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Stats are the collection totals.
type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}
