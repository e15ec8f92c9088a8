package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NullableID distinguishes an absent JSON field (Set false) from an
// explicit null (Set true, Value nil) and a concrete id.
type NullableID struct {
	Set   bool
	Value *int64
}

func (n *NullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("%w: id must be an integer or null", ErrInvalidInput)
	}
	n.Value = &id
	return nil
}

// Equal reports whether the supplied value matches current.
func (n NullableID) Equal(current *int64) bool {
	if n.Value == nil || current == nil {
		return n.Value == nil && current == nil
	}
	return *n.Value == *current
}
