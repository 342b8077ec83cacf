package brep

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/stepforge/pkg/step"
)

// CreateVertex adds a CARTESIAN_POINT and the VERTEX_POINT on it.
func CreateVertex(repo *step.Repository, x, y, z float64) step.Ref[*step.VertexPoint] {
	p := step.Add(repo, &step.CartesianPoint{X: x, Y: y, Z: z})
	return step.Add(repo, &step.VertexPoint{Point: p})
}

// CreateVertices creates one vertex per coordinate, in order. Coincident
// coordinates produce distinct vertices.
func CreateVertices(repo *step.Repository, coords []v3.Vec) []step.Ref[*step.VertexPoint] {
	return lo.Map(coords, func(c v3.Vec, _ int) step.Ref[*step.VertexPoint] {
		return CreateVertex(repo, c.X, c.Y, c.Z)
	})
}

// VertexPosition resolves a vertex and its point.
func VertexPosition(repo *step.Repository, ref step.Ref[*step.VertexPoint]) (v3.Vec, error) {
	v, ok := ref.Resolve(repo)
	if !ok {
		return v3.Vec{}, &UnresolvedReferenceError{Kind: "VERTEX_POINT", ID: ref.ID()}
	}
	p, ok := v.Point.Resolve(repo)
	if !ok {
		return v3.Vec{}, &UnresolvedReferenceError{Kind: "CARTESIAN_POINT", ID: v.Point.ID()}
	}
	return v3.Vec{X: p.X, Y: p.Y, Z: p.Z}, nil
}
