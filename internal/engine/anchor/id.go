package anchor

import (
	"fmt"

	"github.com/google/uuid"
)

// ID identifies an anchor for the lifetime of a document. IDs are random
// version 4 UUIDs, so documents never need a shared allocator.
type ID uuid.UUID

// NewID returns a fresh random ID.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses the canonical string form of an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("parse anchor id %q: %w", s, err)
	}
	return ID(u), nil
}

// String returns the canonical UUID form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
