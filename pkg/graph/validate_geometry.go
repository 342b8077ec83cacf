package graph

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateDimensions(g)...)
	errs = append(errs, validateFiniteTransforms(g)...)
	warnings = append(warnings, validateEmptyContainers(g)...)

	return errs, warnings
}

// validateDimensions checks that every cuboid has positive, finite X, Y, Z
// and a finite center.
func validateDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		cd, ok := node.Data.(CuboidData)
		if !ok {
			continue
		}

		for _, axis := range []struct {
			name string
			v    float64
		}{{"X", cd.Size.X}, {"Y", cd.Size.Y}, {"Z", cd.Size.Z}} {
			if !(axis.v > 0) || math.IsInf(axis.v, 0) {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("cuboid dimension %s is %.4f, must be positive", axis.name, axis.v),
					Severity: SeverityError,
				})
			}
		}
		if !finite(cd.Center) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("cuboid center %s is not finite", cd.Center),
				Severity: SeverityError,
			})
		}
		if cd.Rotation != nil && !finite(*cd.Rotation) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("cuboid rotation %s is not finite", *cd.Rotation),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateFiniteTransforms rejects placements that would move geometry to
// NaN or infinity.
func validateFiniteTransforms(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		td, ok := node.Data.(TransformData)
		if !ok {
			continue
		}
		if td.Translation != nil && !finite(*td.Translation) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("translation %s is not finite", *td.Translation),
				Severity: SeverityError,
			})
		}
		if td.Rotation != nil && !finite(*td.Rotation) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("rotation %s is not finite", *td.Rotation),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateEmptyContainers warns about placements and assemblies that hold
// nothing; they contribute no solid to the export.
func validateEmptyContainers(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		if node.Kind == NodePrimitive || len(node.Children) > 0 {
			continue
		}
		name := node.Name
		if name == "" {
			name = node.ID.Short()
		}
		warnings = append(warnings, ValidationWarning{
			NodeID:  node.ID,
			Message: fmt.Sprintf("%s %q has no children", node.Kind, name),
		})
	}

	return warnings
}

func finite(v Vec3) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
