package brep

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/stepforge/pkg/step"
)

const (
	// unitTolerance bounds |len-1| for plane directions and |n.r| for
	// their orthogonality.
	unitTolerance = 1e-9
	// windingTolerance bounds 1 - cos(angle) between the loop normal and
	// the plane normal.
	windingTolerance = 1e-6
)

// loopStep is one edge of a face loop with the direction it is traversed.
type loopStep struct {
	edge    step.Ref[*step.EdgeCurve]
	forward bool
	from    step.Ref[*step.VertexPoint] // vertex the traversal starts at
}

// CreatePlanarFace adds an ADVANCED_FACE on a PLANE bounded by edges.
//
// The edges must be listed in traversal order around the face. Each edge's
// ORIENTED_EDGE sense is derived from how it connects to its neighbours, so
// an edge shared by two faces is written forward in one and reversed in the
// other. The loop must close and wind counter-clockwise seen from the tip
// of normal. origin, normal and refDirection position the plane; normal and
// refDirection must be orthogonal unit vectors.
//
// Records are added in the order ORIENTED_EDGE..., EDGE_LOOP,
// FACE_OUTER_BOUND, CARTESIAN_POINT, DIRECTION (normal), DIRECTION
// (reference), AXIS2_PLACEMENT_3D, PLANE, ADVANCED_FACE. Nothing is added
// when an error is returned.
func CreatePlanarFace(repo *step.Repository, edges []step.Ref[*step.EdgeCurve], origin, normal, refDirection v3.Vec) (step.Ref[*step.AdvancedFace], error) {
	var zero step.Ref[*step.AdvancedFace]
	if err := checkPlane(normal, refDirection); err != nil {
		return zero, err
	}
	loop, err := orientLoop(repo, edges)
	if err != nil {
		return zero, err
	}
	if err := checkWinding(repo, loop, normal); err != nil {
		return zero, err
	}

	oriented := make([]step.Ref[*step.OrientedEdge], len(loop))
	for i, s := range loop {
		oriented[i] = step.Add(repo, &step.OrientedEdge{Edge: s.edge, Orientation: s.forward})
	}
	edgeLoop := step.Add(repo, &step.EdgeLoop{Edges: oriented})
	bound := step.Add(repo, &step.FaceOuterBound{Bound: edgeLoop, Orientation: true})

	loc := step.Add(repo, &step.CartesianPoint{X: origin.X, Y: origin.Y, Z: origin.Z})
	axis := step.Add(repo, &step.Direction{X: normal.X, Y: normal.Y, Z: normal.Z})
	ref := step.Add(repo, &step.Direction{X: refDirection.X, Y: refDirection.Y, Z: refDirection.Z})
	placement := step.Add(repo, &step.Axis2Placement3D{Location: loc, Axis: axis, RefDirection: ref})
	plane := step.Add(repo, &step.Plane{Position: placement})

	return step.Add(repo, &step.AdvancedFace{
		Bounds:    []step.Ref[*step.FaceOuterBound]{bound},
		Surface:   plane,
		SameSense: true,
	}), nil
}

func checkPlane(normal, refDirection v3.Vec) error {
	if n := normal.Length(); math.Abs(n-1) > unitTolerance {
		return &InvalidPlaneError{Reason: fmt.Sprintf("normal %v has length %g", normal, n)}
	}
	if r := refDirection.Length(); math.Abs(r-1) > unitTolerance {
		return &InvalidPlaneError{Reason: fmt.Sprintf("reference direction %v has length %g", refDirection, r)}
	}
	if d := normal.Dot(refDirection); math.Abs(d) > unitTolerance {
		return &InvalidPlaneError{Reason: fmt.Sprintf("reference direction %v is not orthogonal to normal %v", refDirection, normal)}
	}
	return nil
}

// orientLoop walks edges in order and decides for each whether it is
// traversed start-to-end. The first edge's sense is fixed by whichever of
// its vertices the second edge touches. Vertices are matched by reference,
// so distinct vertices at equal coordinates do not connect.
func orientLoop(repo *step.Repository, edges []step.Ref[*step.EdgeCurve]) ([]loopStep, error) {
	n := len(edges)
	if n < 3 {
		return nil, &NonClosedLoopError{Index: 0, Len: n}
	}
	starts := make([]step.Ref[*step.VertexPoint], n)
	ends := make([]step.Ref[*step.VertexPoint], n)
	for i, e := range edges {
		s, t, err := edgeEnds(repo, e)
		if err != nil {
			return nil, err
		}
		starts[i], ends[i] = s, t
	}

	loop := make([]loopStep, n)
	var first, cur step.Ref[*step.VertexPoint]
	switch {
	case ends[0] == starts[1] || ends[0] == ends[1]:
		loop[0] = loopStep{edge: edges[0], forward: true, from: starts[0]}
		first, cur = starts[0], ends[0]
	case starts[0] == starts[1] || starts[0] == ends[1]:
		loop[0] = loopStep{edge: edges[0], forward: false, from: ends[0]}
		first, cur = ends[0], starts[0]
	default:
		return nil, &NonClosedLoopError{Index: 0, Len: n}
	}

	for i := 1; i < n; i++ {
		switch cur {
		case starts[i]:
			loop[i] = loopStep{edge: edges[i], forward: true, from: starts[i]}
			cur = ends[i]
		case ends[i]:
			loop[i] = loopStep{edge: edges[i], forward: false, from: ends[i]}
			cur = starts[i]
		default:
			return nil, &NonClosedLoopError{Index: i, Len: n}
		}
	}
	if cur != first {
		return nil, &NonClosedLoopError{Index: n - 1, Len: n}
	}
	return loop, nil
}

// checkWinding compares the Newell normal of the loop's vertices with the
// plane normal.
func checkWinding(repo *step.Repository, loop []loopStep, normal v3.Vec) error {
	pts := make([]v3.Vec, len(loop))
	for i, s := range loop {
		p, err := VertexPosition(repo, s.from)
		if err != nil {
			return err
		}
		pts[i] = p
	}
	got, ok := unitNormal(pts)
	if !ok {
		return &FaceOrientationError{Face: -1, Want: normal, Reason: "loop encloses no area"}
	}
	if got.Dot(normal) < 1-windingTolerance {
		return &FaceOrientationError{Face: -1, Want: normal, Got: got}
	}
	return nil
}

// newellNormal returns the area-weighted normal of a polygon. Its length is
// twice the polygon area; it points along the right-hand rule of the
// vertex order.
func newellNormal(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, cur := range pts {
		next := pts[(i+1)%len(pts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// unitNormal normalizes the Newell normal. It reports false for polygons
// with no area.
func unitNormal(pts []v3.Vec) (v3.Vec, bool) {
	return normalize(newellNormal(pts))
}

func normalize(v v3.Vec) (v3.Vec, bool) {
	l := v.Length()
	if l == 0 {
		return v3.Vec{}, false
	}
	return v3.Vec{X: v.X / l, Y: v.Y / l, Z: v.Z / l}, true
}
