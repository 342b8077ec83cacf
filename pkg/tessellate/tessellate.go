// Package tessellate turns a design graph into preview triangle meshes
// using a geometry kernel. One mesh is produced per placed primitive.
package tessellate

import (
	"fmt"

	"github.com/chazu/stepforge/pkg/graph"
	"github.com/chazu/stepforge/pkg/kernel"
)

// Tessellate flattens the design graph and meshes every placed primitive
// with the provided geometry kernel. The graph is not mutated.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	placed, err := graph.Flatten(g)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	meshes := make([]*kernel.Mesh, 0, len(placed))
	for _, p := range placed {
		mesh, err := Placed(k, p)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Placed meshes a single placed primitive.
func Placed(k kernel.Kernel, p graph.Placed) (*kernel.Mesh, error) {
	if !(p.Size.X > 0 && p.Size.Y > 0 && p.Size.Z > 0) {
		return nil, fmt.Errorf("tessellate: %s: size %s must be positive", p.Name, p.Size)
	}

	solid := k.Transform(k.Box(p.Size.X, p.Size.Y, p.Size.Z), p.Frame)
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", p.Name, err)
	}
	mesh.PartName = p.Name
	return mesh, nil
}
