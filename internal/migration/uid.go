// Package migration holds the identity and record types that make repeated
// runs idempotent: a node that already carries a record for a UID is never
// attempted again for that UID.
package migration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Well-known UID field names.
const (
	FieldMigratorName          = "migrator_name"
	FieldMigratorVersion       = "migrator_version"
	FieldMigratorObjectVersion = "migrator_object_version"
	FieldName                  = "name"
	FieldVersion               = "version"
)

// UID identifies one migration attempt-class on one node. It is an
// immutable value: two UIDs built from the same fields compare equal with ==
// and can be used as map keys, regardless of the order the fields were given.
type UID struct {
	// canon is the canonical JSON object encoding of the fields, keys sorted.
	canon string
}

// NewUID builds a UID from the given fields.
func NewUID(fields map[string]string) UID {
	if len(fields) == 0 {
		return UID{}
	}
	// encoding/json writes map keys in sorted order.
	b, err := json.Marshal(fields)
	if err != nil {
		// map[string]string always marshals.
		panic(fmt.Sprintf("migration: encoding uid: %v", err))
	}
	return UID{canon: string(b)}
}

// IsZero reports whether the UID carries no fields.
func (u UID) IsZero() bool {
	return u.canon == ""
}

// Fields returns a copy of the UID's fields.
func (u UID) Fields() map[string]string {
	out := map[string]string{}
	if u.IsZero() {
		return out
	}
	_ = json.Unmarshal([]byte(u.canon), &out)
	return out
}

// Equal reports value equality.
func (u UID) Equal(o UID) bool {
	return u.canon == o.canon
}

// String returns the canonical encoding.
func (u UID) String() string {
	if u.IsZero() {
		return "{}"
	}
	return u.canon
}

// MarshalJSON encodes the UID as a flat JSON object.
func (u UID) MarshalJSON() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalJSON accepts any flat JSON object. Non-string scalar values are
// normalised to their string form so that a persisted `"migrator_version": 1`
// and a computed "1" produce the same UID.
func (u *UID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*u = UID{}
		return nil
	}
	raw := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decoding migration uid: %w", err)
	}
	fields := make(map[string]string, len(raw))
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		switch v := raw[k].(type) {
		case nil:
			continue
		case string:
			fields[k] = v
		case json.Number:
			fields[k] = v.String()
		case bool:
			fields[k] = fmt.Sprint(v)
		default:
			return fmt.Errorf("decoding migration uid: field %q is not a scalar", k)
		}
	}
	*u = NewUID(fields)
	return nil
}
