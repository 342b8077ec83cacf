// Package primitive turns cube parameters into the eight corner points a
// cuboid solid is built from.
package primitive

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gopkg.in/yaml.v3"
)

// DefaultSize is the edge length used for every axis not given.
const DefaultSize = 2.0

// Size is a cube size: a single number for all axes or up to three
// numbers. Missing entries take DefaultSize.
type Size []float64

// UnmarshalYAML accepts a scalar or a sequence.
func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("size: %w", err)
		}
		*s = Size{v, v, v}
		return nil
	case yaml.SequenceNode:
		var vs []float64
		if err := node.Decode(&vs); err != nil {
			return fmt.Errorf("size: %w", err)
		}
		if len(vs) > 3 {
			return fmt.Errorf("size: %d entries, want at most 3", len(vs))
		}
		*s = Size(vs)
		return nil
	default:
		return fmt.Errorf("size: line %d: want a number or a list", node.Line)
	}
}

// Vec expands s to three axes.
func (s Size) Vec() v3.Vec {
	get := func(i int) float64 {
		if i < len(s) {
			return s[i]
		}
		return DefaultSize
	}
	return v3.Vec{X: get(0), Y: get(1), Z: get(2)}
}

// CubeOperation is one cube as written in a design file.
type CubeOperation struct {
	Name     string    `yaml:"name"`
	Size     Size      `yaml:"size"`
	Center   []float64 `yaml:"center"`
	Rotation []float64 `yaml:"rotation"` // degrees about X, Y, Z
}

// Box is a normalized cube: center, per-axis size and rotation in radians
// applied X first, then Y, then Z, about the center.
type Box struct {
	Center   v3.Vec
	Size     v3.Vec
	Rotation v3.Vec
}

// Box validates op and normalizes it. A negative size is taken by its
// magnitude, so corner 0 is always the minimum corner before rotation.
func (op CubeOperation) Box() (Box, error) {
	b := Box{Size: op.Size.Vec()}
	for _, v := range []float64{b.Size.X, b.Size.Y, b.Size.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Box{}, fmt.Errorf("primitive: size %v is not finite", op.Size)
		}
	}
	b.Size = v3.Vec{X: math.Abs(b.Size.X), Y: math.Abs(b.Size.Y), Z: math.Abs(b.Size.Z)}
	switch len(op.Center) {
	case 0:
	case 3:
		b.Center = v3.Vec{X: op.Center[0], Y: op.Center[1], Z: op.Center[2]}
	default:
		return Box{}, fmt.Errorf("primitive: center has %d entries, want 3", len(op.Center))
	}
	switch len(op.Rotation) {
	case 0:
	case 3:
		b.Rotation = v3.Vec{
			X: sdf.DtoR(op.Rotation[0]),
			Y: sdf.DtoR(op.Rotation[1]),
			Z: sdf.DtoR(op.Rotation[2]),
		}
	default:
		return Box{}, fmt.Errorf("primitive: rotation has %d entries, want 3", len(op.Rotation))
	}
	return b, nil
}

var cornerSigns = [8][3]float64{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// Corners returns the eight corners in the order
//
//	0 (-,-,-) 1 (+,-,-) 2 (+,+,-) 3 (-,+,-)
//	4 (-,-,+) 5 (+,-,+) 6 (+,+,+) 7 (-,+,+)
//
// Without rotation the coordinates are exact: center ± size/2.
func (b Box) Corners() [8]v3.Vec {
	if b.Rotation == (v3.Vec{}) {
		h := b.Size.MulScalar(0.5)
		var out [8]v3.Vec
		for i, s := range cornerSigns {
			out[i] = v3.Vec{
				X: b.Center.X + s[0]*h.X,
				Y: b.Center.Y + s[1]*h.Y,
				Z: b.Center.Z + s[2]*h.Z,
			}
		}
		return out
	}

	return Corners(b.Size, sdf.Translate3d(b.Center).Mul(Rotation(b.Rotation)))
}

// Rotation returns the matrix rotating by r.X about X, then r.Y about Y,
// then r.Z about Z. Angles are in radians.
func Rotation(r v3.Vec) sdf.M44 {
	return sdf.RotateZ(r.Z).Mul(sdf.RotateY(r.Y)).Mul(sdf.RotateX(r.X))
}

// Corners returns the corners of a box of the given size centered on the
// origin of frame m, in the same order as Box.Corners.
func Corners(size v3.Vec, m sdf.M44) [8]v3.Vec {
	h := size.MulScalar(0.5)
	var out [8]v3.Vec
	for i, s := range cornerSigns {
		out[i] = m.MulPosition(v3.Vec{X: s[0] * h.X, Y: s[1] * h.Y, Z: s[2] * h.Z})
	}
	return out
}

// Decode reads a YAML stream of cube operations, one per document.
// Documents without a name are called "cube", "cube-2", "cube-3", ...
func Decode(r io.Reader) ([]CubeOperation, error) {
	dec := yaml.NewDecoder(r)
	var ops []CubeOperation
	for {
		var op CubeOperation
		err := dec.Decode(&op)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("primitive: decode document %d: %w", len(ops)+1, err)
		}
		if op.Name == "" {
			op.Name = "cube"
			if len(ops) > 0 {
				op.Name = fmt.Sprintf("cube-%d", len(ops)+1)
			}
		}
		ops = append(ops, op)
	}
	return ops, nil
}
