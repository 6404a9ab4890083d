// Package objectid provides the identifier type shared by users, file nodes
// and job payloads.
//
// An ID wraps a MongoDB ObjectID. The zero value is the root reference used by
// top-level file nodes, so it doubles as "no parent". Every boundary that
// accepts an identifier from the outside world goes through Parse, which
// makes "is this a valid reference" an explicit step instead of an ad hoc
// string check at each call site.
//
// # Usage
//
//	id, err := objectid.Parse(r.PathValue("id"))
//	if err != nil {
//		// not a valid reference, treat as not found
//	}
//
//	if parent.IsZero() {
//		// top-level node
//	}
//
// # JSON
//
// The zero ID is encoded as the number 0 and any other ID as its hex string.
// Decoding accepts 0, "0", "", null and 24-character hex strings.
package objectid
