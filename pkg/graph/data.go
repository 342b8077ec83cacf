package graph

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// CuboidData is an axis-aligned box in its own frame. Size is the full
// edge length per axis in mm; Center is where the box sits before any
// enclosing placement is applied.
type CuboidData struct {
	Size     Vec3  `json:"size"`
	Center   Vec3  `json:"center"`
	Rotation *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees about Center
}

func (CuboidData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) Lisp form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping (assembly, subassembly).
// Created by the (assembly ...) Lisp form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
