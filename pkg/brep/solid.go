package brep

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/stepforge/pkg/step"
)

// PolyFace is one planar side of a polyhedron.
type PolyFace struct {
	// Loop lists vertex indices counter-clockwise seen from outside.
	Loop []int
	// Normal is the outward unit normal. Zero derives it from Loop.
	Normal v3.Vec
	// RefDirection is the plane's x axis, projected into the plane before
	// use. Zero derives it from the first loop edge.
	RefDirection v3.Vec
	// Origin places the plane. Nil uses the centroid of the loop.
	Origin *v3.Vec
}

// Polyhedron describes a closed convex polyhedron by its vertices and
// faces.
type Polyhedron struct {
	Vertices []v3.Vec
	// Edges lists the edges as vertex index pairs, fixing their order and
	// direction in the file. Nil derives them from the face loops in order
	// of first use.
	Edges [][2]int
	Faces []PolyFace
}

// Solid is the result of BuildSolid: the MANIFOLD_SOLID_BREP and the
// references of everything it was built from.
type Solid struct {
	Ref      step.Ref[*step.ManifoldSolidBrep]
	Shell    step.Ref[*step.ClosedShell]
	Vertices []step.Ref[*step.VertexPoint]
	Edges    []step.Ref[*step.EdgeCurve]
	Faces    []step.Ref[*step.AdvancedFace]
}

// edgeKey identifies an undirected edge.
type edgeKey struct{ lower, upper int }

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// BuildSolid adds the vertices, edges and faces of p, a CLOSED_SHELL over
// the faces and a MANIFOLD_SOLID_BREP named name.
//
// The topology is checked before anything is added: every edge must be
// traversed exactly once in each direction by the face loops. Coincident
// edge endpoints then fail with *DegenerateEdgeError, and a face that does
// not point away from the vertex centroid fails with *FaceOrientationError.
func BuildSolid(repo *step.Repository, name string, p Polyhedron) (*Solid, error) {
	if err := checkIndices(p); err != nil {
		return nil, err
	}
	if err := checkClosed(p); err != nil {
		return nil, err
	}
	edges, err := edgeList(p)
	if err != nil {
		return nil, err
	}
	s := &Solid{}
	s.Vertices = CreateVertices(repo, p.Vertices)

	s.Edges, err = CreateLineEdges(repo, lo.Map(edges, func(e [2]int, _ int) EdgePair {
		return EdgePair{Start: s.Vertices[e[0]], End: s.Vertices[e[1]]}
	}))
	if err != nil {
		return nil, err
	}
	planes, err := facePlanes(p)
	if err != nil {
		return nil, err
	}
	byKey := make(map[edgeKey]step.Ref[*step.EdgeCurve], len(edges))
	for i, e := range edges {
		byKey[keyOf(e[0], e[1])] = s.Edges[i]
	}

	for i, f := range p.Faces {
		loop := make([]step.Ref[*step.EdgeCurve], len(f.Loop))
		for j, a := range f.Loop {
			loop[j] = byKey[keyOf(a, f.Loop[(j+1)%len(f.Loop)])]
		}
		pl := planes[i]
		face, err := CreatePlanarFace(repo, loop, pl.origin, pl.normal, pl.refDirection)
		if err != nil {
			var fo *FaceOrientationError
			if errors.As(err, &fo) {
				fo.Face = i
			}
			return nil, err
		}
		s.Faces = append(s.Faces, face)
	}

	s.Shell = step.Add(repo, &step.ClosedShell{Faces: s.Faces})
	s.Ref = step.Add(repo, &step.ManifoldSolidBrep{Name: name, Outer: s.Shell})
	return s, nil
}

func checkIndices(p Polyhedron) error {
	if len(p.Vertices) < 4 {
		return &InvalidPolyhedronError{Reason: fmt.Sprintf("%d vertices, need at least 4", len(p.Vertices))}
	}
	if len(p.Faces) < 4 {
		return &InvalidPolyhedronError{Reason: fmt.Sprintf("%d faces, need at least 4", len(p.Faces))}
	}
	inRange := func(i int) bool { return i >= 0 && i < len(p.Vertices) }
	for i, f := range p.Faces {
		if len(f.Loop) < 3 {
			return &InvalidPolyhedronError{Reason: fmt.Sprintf("face %d has %d vertices, need at least 3", i, len(f.Loop))}
		}
		if len(lo.Uniq(f.Loop)) != len(f.Loop) {
			return &InvalidPolyhedronError{Reason: fmt.Sprintf("face %d repeats a vertex", i)}
		}
		for _, v := range f.Loop {
			if !inRange(v) {
				return &InvalidPolyhedronError{Reason: fmt.Sprintf("face %d references vertex %d of %d", i, v, len(p.Vertices))}
			}
		}
	}
	for i, e := range p.Edges {
		if !inRange(e[0]) || !inRange(e[1]) || e[0] == e[1] {
			return &InvalidPolyhedronError{Reason: fmt.Sprintf("edge %d (%d-%d) is invalid", i, e[0], e[1])}
		}
	}
	return nil
}

// checkClosed verifies that the face loops use every edge once in each
// direction, which makes the shell closed and consistently oriented.
func checkClosed(p Polyhedron) error {
	directed := make(map[[2]int]int)
	var order []edgeKey
	seen := make(map[edgeKey]bool)
	for _, f := range p.Faces {
		for j, a := range f.Loop {
			b := f.Loop[(j+1)%len(f.Loop)]
			directed[[2]int{a, b}]++
			if k := keyOf(a, b); !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	for _, k := range order {
		fwd, rev := directed[[2]int{k.lower, k.upper}], directed[[2]int{k.upper, k.lower}]
		if fwd != 1 || rev != 1 {
			return &OpenShellError{A: k.lower, B: k.upper, Forward: fwd, Reverse: rev}
		}
	}
	return nil
}

// edgeList returns p.Edges, or the edges derived from the face loops. A
// given list must match the loops exactly.
func edgeList(p Polyhedron) ([][2]int, error) {
	var derived [][2]int
	seen := make(map[edgeKey]bool)
	for _, f := range p.Faces {
		for j, a := range f.Loop {
			b := f.Loop[(j+1)%len(f.Loop)]
			if k := keyOf(a, b); !seen[k] {
				seen[k] = true
				derived = append(derived, [2]int{a, b})
			}
		}
	}
	if p.Edges == nil {
		return derived, nil
	}

	given := make(map[edgeKey]bool, len(p.Edges))
	for _, e := range p.Edges {
		k := keyOf(e[0], e[1])
		if given[k] {
			return nil, &InvalidPolyhedronError{Reason: fmt.Sprintf("edge %d-%d listed twice", e[0], e[1])}
		}
		if !seen[k] {
			return nil, &InvalidPolyhedronError{Reason: fmt.Sprintf("edge %d-%d bounds no face", e[0], e[1])}
		}
		given[k] = true
	}
	for _, e := range derived {
		if !given[keyOf(e[0], e[1])] {
			return nil, &InvalidPolyhedronError{Reason: fmt.Sprintf("edge %d-%d is not listed", e[0], e[1])}
		}
	}
	return p.Edges, nil
}

type facePlane struct {
	origin, normal, refDirection v3.Vec
}

// facePlanes resolves the plane of every face, deriving what was left zero,
// and checks that each face points away from the solid's centroid.
func facePlanes(p Polyhedron) ([]facePlane, error) {
	center := centroid(p.Vertices)
	planes := make([]facePlane, len(p.Faces))
	for i, f := range p.Faces {
		pts := lo.Map(f.Loop, func(v int, _ int) v3.Vec { return p.Vertices[v] })
		faceCenter := centroid(pts)

		normal := f.Normal
		if normal == (v3.Vec{}) {
			n, ok := unitNormal(pts)
			if !ok {
				return nil, &FaceOrientationError{Face: i, Reason: "loop encloses no area"}
			}
			normal = n
		}
		if faceCenter.Sub(center).Dot(normal) <= 0 {
			return nil, &FaceOrientationError{Face: i, Want: normal, Reason: fmt.Sprintf("normal %v points into the solid", normal)}
		}

		// Given or derived, the reference direction is projected into the plane.
		r := f.RefDirection
		if r == (v3.Vec{}) {
			r = pts[1].Sub(pts[0])
		}
		ref, ok := normalize(r.Sub(normal.MulScalar(r.Dot(normal))))
		if !ok {
			return nil, &InvalidPlaneError{Reason: fmt.Sprintf("face %d: reference direction is parallel to the normal", i)}
		}

		origin := faceCenter
		if f.Origin != nil {
			origin = *f.Origin
		}
		planes[i] = facePlane{origin: origin, normal: normal, refDirection: ref}
	}
	return planes, nil
}

func centroid(pts []v3.Vec) v3.Vec {
	var c v3.Vec
	for _, p := range pts {
		c = c.Add(p)
	}
	n := float64(len(pts))
	return v3.Vec{X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}
