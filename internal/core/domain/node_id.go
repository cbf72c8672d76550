package domain

import (
	"strings"
	"unique"
)

// NodeID is the stable identifier of a node in the content graph.
// It wraps a unique.Handle[string] so that the many repeated references to the
// same path across edges, reports, and cache metadata share one allocation.
type NodeID struct {
	h unique.Handle[string]
}

// NewNodeID creates a NodeID from a source path or logical name.
// Windows separators are normalized so identifiers are stable across platforms.
func NewNodeID(s string) NodeID {
	return NodeID{
		h: unique.Make(strings.ReplaceAll(s, "\\", "/")),
	}
}

// String returns the underlying identifier.
func (id NodeID) String() string {
	var zero unique.Handle[string]
	if id.h == zero {
		return ""
	}
	return id.h.Value()
}

// IsZero reports whether the identifier was never initialized.
func (id NodeID) IsZero() bool {
	var zero unique.Handle[string]
	return id.h == zero
}

// Compare orders identifiers lexically. It is used wherever a deterministic
// iteration order is required.
func (id NodeID) Compare(other NodeID) int {
	return strings.Compare(id.String(), other.String())
}

// MarshalText implements encoding.TextMarshaler.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(text []byte) error {
	*id = NewNodeID(string(text))
	return nil
}

// NodeIDs converts a list of strings into identifiers.
func NodeIDs(names ...string) []NodeID {
	ids := make([]NodeID, len(names))
	for i, n := range names {
		ids[i] = NewNodeID(n)
	}
	return ids
}
