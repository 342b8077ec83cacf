package graph

import (
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// NodeID identifies a node. It is derived from the node's path in the
// script so that re-evaluating the same source yields the same IDs.
type NodeID [8]byte

// ZeroID is the unset NodeID.
var ZeroID NodeID

// NewNodeID hashes path into a NodeID.
func NewNodeID(path string) NodeID {
	var id NodeID
	sum := xxhash.Sum64String(path)
	for i := range id {
		id[i] = byte(sum >> (56 - 8*i))
	}
	return id
}

func (id NodeID) String() string { return hex.EncodeToString(id[:]) }

// Short returns the first 12 hex digits, enough for messages.
func (id NodeID) Short() string { return id.String()[:12] }

func (id NodeID) IsZero() bool { return id == ZeroID }

// SourceRef points back into the script a node came from.
type SourceRef struct {
	Line int    `json:"line"`
	Form string `json:"form,omitempty"`
}

// Vec3 is a plain triple in millimetres or degrees.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) IsZero() bool { return v == Vec3{} }

func (v Vec3) String() string { return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z) }
