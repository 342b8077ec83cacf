// Package kernel defines the abstract geometry kernel used for preview
// meshes. The exchange file is built from exact B-rep records; the kernel
// only tessellates the same boxes for viewing and STL export.
package kernel

import "github.com/deadsy/sdfx/sdf"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box returns a box of the given size centered on the origin.
	Box(x, y, z float64) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees
	Transform(s Solid, m sdf.M44) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
