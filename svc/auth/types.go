package auth

import (
	"strings"

	"github.com/dmitrymomot/filevault/pkg/objectid"
)

// User is a registered account. PasswordHash is a bcrypt digest.
type User struct {
	ID           objectid.ID `json:"id" bson:"_id"`
	Email        string      `json:"email" bson:"email"`
	PasswordHash []byte      `json:"-" bson:"password"`
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
