package auth

import (
	"encoding/base64"
	"strings"
)

// ParseBasicAuth decodes an Authorization header of the form
// "Basic base64(email:password)". Anything else is ErrUnauthorized.
func ParseBasicAuth(header string) (email, password string, err error) {
	const prefix = "basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", ErrUnauthorized
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", ErrUnauthorized
	}
	email, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", ErrUnauthorized
	}
	return email, password, nil
}
