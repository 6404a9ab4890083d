// Package files is the file hierarchy manager.
//
// Nodes are folders, files or images owned by a user and linked to a parent
// folder (or the root). Byte content for files and images is persisted by an
// Uploader and read back from a ContentStorage; folders carry metadata only.
//
// Every operation except ReadContent requires a session token. ReadContent
// accepts anonymous callers for public nodes and answers ErrNotFound for
// private nodes the caller does not own, so absent and forbidden look the same.
package files
