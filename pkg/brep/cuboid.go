package brep

import (
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/stepforge/pkg/step"
)

// Cuboid corner order, as produced by primitive.Box.Corners:
//
//	0 (-x,-y,-z)  1 (+x,-y,-z)  2 (+x,+y,-z)  3 (-x,+y,-z)
//	4 (-x,-y,+z)  5 (+x,-y,+z)  6 (+x,+y,+z)  7 (-x,+y,+z)
//
// CuboidEdges lists the 12 edges: bottom ring, top ring, then verticals.
var CuboidEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// CuboidFace is one side of a cuboid: its corner loop (counter-clockwise
// seen from outside) and which corner pair gives the plane's x axis.
type CuboidFace struct {
	Name  string
	Loop  [4]int
	RefAt [2]int
}

// CuboidFaces lists the six sides in output order.
var CuboidFaces = [6]CuboidFace{
	{Name: "bottom", Loop: [4]int{0, 3, 2, 1}, RefAt: [2]int{0, 1}},
	{Name: "top", Loop: [4]int{4, 5, 6, 7}, RefAt: [2]int{0, 1}},
	{Name: "back", Loop: [4]int{0, 1, 5, 4}, RefAt: [2]int{0, 1}},
	{Name: "front", Loop: [4]int{2, 3, 7, 6}, RefAt: [2]int{0, 1}},
	{Name: "left", Loop: [4]int{3, 0, 4, 7}, RefAt: [2]int{0, 3}},
	{Name: "right", Loop: [4]int{1, 2, 6, 5}, RefAt: [2]int{0, 3}},
}

// CuboidPolyhedron describes the cuboid with the given corners. Face
// normals are derived from the corner loops, so they are the six
// axis-aligned unit vectors for an unrotated box and follow the box when it
// is rotated. Mirrored corners, as produced by a negative size on an odd
// number of axes, get their loops reversed so every face still points out.
func CuboidPolyhedron(corners [8]v3.Vec) Polyhedron {
	p := Polyhedron{
		Vertices: corners[:],
		Edges:    CuboidEdges[:],
	}
	mirrored := mirroredCorners(corners)
	for _, f := range CuboidFaces {
		loop := append([]int(nil), f.Loop[:]...)
		if mirrored {
			slices.Reverse(loop)
		}
		ref, _ := normalize(corners[f.RefAt[1]].Sub(corners[f.RefAt[0]]))
		p.Faces = append(p.Faces, PolyFace{Loop: loop, RefDirection: ref})
	}
	return p
}

// mirroredCorners reports whether the corner axes 0->1, 0->3, 0->4 form a
// left-handed frame.
func mirroredCorners(c [8]v3.Vec) bool {
	x := c[1].Sub(c[0])
	y := c[3].Sub(c[0])
	z := c[4].Sub(c[0])
	return x.Cross(y).Dot(z) < 0
}

// BuildCuboid adds a cuboid solid: 8 vertices, 12 edges, 6 faces, one
// closed shell and the solid.
func BuildCuboid(repo *step.Repository, name string, corners [8]v3.Vec) (*Solid, error) {
	return BuildSolid(repo, name, CuboidPolyhedron(corners))
}
