package graph

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/stepforge/pkg/primitive"
)

// Placed is a primitive positioned in world space.
type Placed struct {
	Node *Node
	// Name is unique within one Flatten result. A primitive reached twice
	// through shared subtrees is suffixed "-2", "-3", ...
	Name string
	Size Vec3
	// Frame maps the box's own frame, centered on its middle, to world
	// coordinates.
	Frame sdf.M44
}

// Center returns the world position of the box center.
func (p Placed) Center() v3.Vec {
	return p.Frame.MulPosition(v3.Vec{})
}

// Corners returns the eight world-space corners in primitive.Box order.
func (p Placed) Corners() [8]v3.Vec {
	return primitive.Corners(v3.Vec{X: p.Size.X, Y: p.Size.Y, Z: p.Size.Z}, p.Frame)
}

// frameStack accumulates placements during graph traversal. Each entry is
// the composition of every placement above it.
type frameStack struct {
	frames []sdf.M44
}

func newFrameStack() *frameStack {
	return &frameStack{frames: []sdf.M44{sdf.Identity3d()}}
}

func (fs *frameStack) top() sdf.M44 {
	return fs.frames[len(fs.frames)-1]
}

func (fs *frameStack) push(m sdf.M44) {
	fs.frames = append(fs.frames, fs.top().Mul(m))
}

func (fs *frameStack) pop() {
	if len(fs.frames) > 1 {
		fs.frames = fs.frames[:len(fs.frames)-1]
	}
}

// placement converts a translation and a rotation in degrees into a frame
// that rotates first, then translates.
func placement(translation, rotation *Vec3) sdf.M44 {
	m := sdf.Identity3d()
	if translation != nil {
		m = sdf.Translate3d(v3.Vec{X: translation.X, Y: translation.Y, Z: translation.Z})
	}
	if rotation != nil && !rotation.IsZero() {
		m = m.Mul(primitive.Rotation(v3.Vec{
			X: sdf.DtoR(rotation.X),
			Y: sdf.DtoR(rotation.Y),
			Z: sdf.DtoR(rotation.Z),
		}))
	}
	return m
}

type flattener struct {
	g        *DesignGraph
	frames   *frameStack
	visiting map[NodeID]bool
	seen     map[string]int
	out      []Placed
}

// Flatten walks the graph from its roots and returns every primitive in
// world space, in traversal order. A graph without roots yields all of its
// primitives in name order, unplaced. The graph is not mutated.
func Flatten(g *DesignGraph) ([]Placed, error) {
	if g == nil {
		return nil, nil
	}
	f := &flattener{
		g:        g,
		frames:   newFrameStack(),
		visiting: make(map[NodeID]bool),
		seen:     make(map[string]int),
	}

	if len(g.Roots) == 0 {
		for _, n := range g.Primitives() {
			if err := f.walk(n); err != nil {
				return nil, err
			}
		}
		return f.out, nil
	}

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			return nil, fmt.Errorf("graph: root %s does not exist", rootID.Short())
		}
		if err := f.walk(root); err != nil {
			return nil, fmt.Errorf("graph: flatten root %s: %w", rootID.Short(), err)
		}
	}
	return f.out, nil
}

func (f *flattener) walk(n *Node) error {
	if f.visiting[n.ID] {
		return fmt.Errorf("cycle through node %s", n.ID.Short())
	}
	f.visiting[n.ID] = true
	defer delete(f.visiting, n.ID)

	switch n.Kind {
	case NodePrimitive:
		return f.primitive(n)

	case NodeTransform:
		td, ok := n.Data.(TransformData)
		if !ok {
			return fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		f.frames.push(placement(td.Translation, td.Rotation))
		defer f.frames.pop()
		return f.children(n)

	case NodeGroup:
		return f.children(n)

	default:
		return fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func (f *flattener) children(n *Node) error {
	for _, cid := range n.Children {
		child := f.g.Get(cid)
		if child == nil {
			return fmt.Errorf("node %s: child %s does not exist", n.ID.Short(), cid.Short())
		}
		if err := f.walk(child); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattener) primitive(n *Node) error {
	cd, ok := n.Data.(CuboidData)
	if !ok {
		return fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	name := n.Name
	if name == "" {
		name = n.ID.Short()
	}
	f.seen[name]++
	if k := f.seen[name]; k > 1 {
		name = fmt.Sprintf("%s-%d", name, k)
	}

	f.out = append(f.out, Placed{
		Node:  n,
		Name:  name,
		Size:  cd.Size,
		Frame: f.frames.top().Mul(placement(&cd.Center, cd.Rotation)),
	})
	return nil
}
