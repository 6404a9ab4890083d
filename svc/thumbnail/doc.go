// Package thumbnail generates fixed width renditions of uploaded images.
//
// Jobs carry a Payload naming the image node and its owner. The handler
// loads the node, decodes the original and writes one rendition per width
// in files.RenditionWidths beside it using file.RenditionKey. Generation is
// deterministic, so retried jobs overwrite earlier renditions with identical
// bytes.
package thumbnail
