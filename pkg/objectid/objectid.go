package objectid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ID is an opaque, store-assigned identifier.
type ID struct {
	oid bson.ObjectID
}

// Root is the zero ID. File nodes with this parent live at the top level.
var Root = ID{}

// New returns a fresh, non-zero ID.
func New() ID {
	return ID{oid: bson.NewObjectID()}
}

// FromObjectID wraps a driver ObjectID.
func FromObjectID(oid bson.ObjectID) ID {
	return ID{oid: oid}
}

// Parse converts the external representation into an ID.
// "0" and the empty string resolve to Root.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return Root, nil
	}
	oid, err := bson.ObjectIDFromHex(s)
	if err != nil {
		return Root, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID{oid: oid}, nil
}

// MustParse is like Parse but panics on invalid input. Intended for tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether id is the root reference.
func (id ID) IsZero() bool {
	return id.oid.IsZero()
}

// Valid reports whether id references a stored entity.
func (id ID) Valid() bool {
	return !id.oid.IsZero()
}

// ObjectID returns the driver representation.
func (id ID) ObjectID() bson.ObjectID {
	return id.oid
}

// String returns the hex form, or "0" for Root.
func (id ID) String() string {
	if id.IsZero() {
		return "0"
	}
	return id.oid.Hex()
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("0"), nil
	}
	return json.Marshal(id.oid.Hex())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "0", `""`:
		*id = Root
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, data)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalBSONValue stores Root as the int32 0 and any other ID as an ObjectID,
// so root-level nodes can be filtered with {parentId: 0}.
func (id ID) MarshalBSONValue() (byte, []byte, error) {
	if id.IsZero() {
		t, data, err := bson.MarshalValue(int32(0))
		return byte(t), data, err
	}
	t, data, err := bson.MarshalValue(id.oid)
	return byte(t), data, err
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (id *ID) UnmarshalBSONValue(t byte, data []byte) error {
	raw := bson.RawValue{Type: bson.Type(t), Value: data}
	switch bson.Type(t) {
	case bson.TypeObjectID:
		*id = ID{oid: raw.ObjectID()}
		return nil
	case bson.TypeInt32, bson.TypeInt64, bson.TypeNull, bson.TypeUndefined:
		*id = Root
		return nil
	case bson.TypeString:
		parsed, err := Parse(raw.StringValue())
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		return fmt.Errorf("%w: unsupported bson type %s", ErrInvalidID, bson.Type(t))
	}
}
